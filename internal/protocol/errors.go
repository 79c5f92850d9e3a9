package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy   = "E_WORLD_BUSY"
	ErrRateLimited = "E_RATE_LIMITED"

	// Rule/action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrBlocked       = "E_BLOCKED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrWorldBusy:       {},
	ErrRateLimited:     {},
	ErrBadRequest:      {},
	ErrNoResource:      {},
	ErrInvalidTarget:   {},
	ErrBlocked:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeForReason maps a grid/ledger rejection reason onto a wire error code.
func CodeForReason(reason string) string {
	switch reason {
	case "OCCUPIED", "AQUATIC", "TOO_CLOSE", "OUT_OF_RANGE":
		return ErrBlocked
	case "VOID", "EMPTY", "NOT_HARVESTABLE", "UNBUILDABLE":
		return ErrInvalidTarget
	case "INSUFFICIENT":
		return ErrNoResource
	case "":
		return ""
	default:
		return ErrInternal
	}
}
