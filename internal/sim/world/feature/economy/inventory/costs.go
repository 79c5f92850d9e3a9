package inventory

import (
	"fmt"

	"tilecraft.ai/internal/sim/world/terrain/grid"
)

type Price struct {
	Resource Resource
	Amount   uint
}

// Costs prices each buildable kind in a single resource.
type Costs map[grid.EntityKind]Price

// DefaultCosts charges one wood for every buildable kind, including rock walls.
func DefaultCosts() Costs {
	return Costs{
		grid.Wall: {Resource: Wood, Amount: 1},
		grid.Rock: {Resource: Wood, Amount: 1},
	}
}

func (c Costs) For(kind grid.EntityKind) (Price, bool) {
	p, ok := c[kind]
	return p, ok
}

// ParseCosts reads a tuning map like {"WALL": {"wood": 1}}.
func ParseCosts(raw map[string]map[string]uint) (Costs, error) {
	if len(raw) == 0 {
		return DefaultCosts(), nil
	}
	out := Costs{}
	for kindName, price := range raw {
		kind, ok := grid.ParseEntityKind(kindName)
		if !ok || !kind.Placeable() {
			return nil, fmt.Errorf("build cost: %q is not a buildable kind", kindName)
		}
		if len(price) != 1 {
			return nil, fmt.Errorf("build cost %s: want exactly one resource, got %d", kindName, len(price))
		}
		for resName, amount := range price {
			res, ok := ParseResource(resName)
			if !ok {
				return nil, fmt.Errorf("build cost %s: unknown resource %q", kindName, resName)
			}
			out[kind] = Price{Resource: res, Amount: amount}
		}
	}
	return out, nil
}
