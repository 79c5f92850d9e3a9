package inventory

import (
	"fmt"
	"strings"

	"tilecraft.ai/internal/sim/world/terrain/grid"
)

type Resource uint8

const (
	Wood Resource = iota + 1
	Stone
)

func (r Resource) String() string {
	switch r {
	case Wood:
		return "wood"
	case Stone:
		return "stone"
	default:
		return "unknown"
	}
}

func ParseResource(s string) (Resource, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wood":
		return Wood, true
	case "stone":
		return Stone, true
	}
	return 0, false
}

func (r Resource) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Resource) UnmarshalText(b []byte) error {
	v, ok := ParseResource(string(b))
	if !ok {
		return fmt.Errorf("unknown resource %q", b)
	}
	*r = v
	return nil
}

// ErrInsufficient is returned by Debit when the balance cannot cover the amount.
var ErrInsufficient = grid.ErrInsufficient

// Snapshot is a read-only copy of the ledger for renderers and the save endpoint.
type Snapshot struct {
	Wood  uint `json:"wood"`
	Stone uint `json:"stone"`
}

// Ledger holds the player's two resource counters. Owned by the world loop.
type Ledger struct {
	wood  uint
	stone uint
}

func New() *Ledger { return &Ledger{} }

func FromSnapshot(s Snapshot) *Ledger {
	return &Ledger{wood: s.Wood, stone: s.Stone}
}

func (l *Ledger) counter(r Resource) *uint {
	switch r {
	case Wood:
		return &l.wood
	case Stone:
		return &l.stone
	}
	return nil
}

func (l *Ledger) Balance(r Resource) uint {
	if c := l.counter(r); c != nil {
		return *c
	}
	return 0
}

func (l *Ledger) Credit(r Resource, amount uint) {
	if c := l.counter(r); c != nil {
		*c += amount
	}
}

// Debit is all-or-nothing: on failure the balance is unchanged.
func (l *Ledger) Debit(r Resource, amount uint) error {
	c := l.counter(r)
	if c == nil || amount > *c {
		return ErrInsufficient
	}
	*c -= amount
	return nil
}

func (l *Ledger) CreditYield(y grid.Yield) {
	l.wood += y.Wood
	l.stone += y.Stone
}

func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Wood: l.wood, Stone: l.stone}
}
