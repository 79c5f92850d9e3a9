package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeInput parses one client message into PointerMsg, MoveMsg, SelectMsg or SaveMsg.
func DecodeInput(b []byte) (any, error) {
	base, err := DecodeBase(b)
	if err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if base.ProtocolVersion != Version {
		return nil, fmt.Errorf("bad protocol_version %q", base.ProtocolVersion)
	}
	switch base.Type {
	case TypePointer:
		return decodeAs[PointerMsg](base.Type, b)
	case TypeMove:
		return decodeAs[MoveMsg](base.Type, b)
	case TypeSelect:
		return decodeAs[SelectMsg](base.Type, b)
	case TypeSave:
		return decodeAs[SaveMsg](base.Type, b)
	}
	return nil, fmt.Errorf("unsupported message type %q", base.Type)
}

func decodeAs[T any](typ string, b []byte) (any, error) {
	var m T
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", typ, err)
	}
	return m, nil
}
