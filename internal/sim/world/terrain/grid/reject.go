package grid

import (
	"errors"
	"strings"
)

type Reason string

const (
	ReasonOccupied       Reason = "OCCUPIED"
	ReasonAquatic        Reason = "AQUATIC"
	ReasonTooClose       Reason = "TOO_CLOSE"
	ReasonOutOfRange     Reason = "OUT_OF_RANGE"
	ReasonVoid           Reason = "VOID"
	ReasonEmpty          Reason = "EMPTY"
	ReasonNotHarvestable Reason = "NOT_HARVESTABLE"
	ReasonUnbuildable    Reason = "UNBUILDABLE"
	ReasonInsufficient   Reason = "INSUFFICIENT"
)

// Rejection is a recoverable policy violation. The rejected operation had no effect.
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string {
	return "rejected: " + strings.ToLower(strings.ReplaceAll(string(r.Reason), "_", " "))
}

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

var (
	ErrOccupied       = &Rejection{Reason: ReasonOccupied}
	ErrAquatic        = &Rejection{Reason: ReasonAquatic}
	ErrTooClose       = &Rejection{Reason: ReasonTooClose}
	ErrOutOfRange     = &Rejection{Reason: ReasonOutOfRange}
	ErrVoid           = &Rejection{Reason: ReasonVoid}
	ErrEmpty          = &Rejection{Reason: ReasonEmpty}
	ErrNotHarvestable = &Rejection{Reason: ReasonNotHarvestable}
	ErrUnbuildable    = &Rejection{Reason: ReasonUnbuildable}
	ErrInsufficient   = &Rejection{Reason: ReasonInsufficient}
)

// ReasonOf extracts the rejection reason, if err is one.
func ReasonOf(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}
