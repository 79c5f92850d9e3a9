package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"

	// client -> server
	TypePointer = "POINTER"
	TypeMove    = "MOVE"
	TypeSelect  = "SELECT"
	TypeSave    = "SAVE"

	// server -> client
	TypeTiles     = "TILES"
	TypeCreatures = "CREATURES"
	TypeMutation  = "MUTATION"
	TypeNotice    = "NOTICE"
	TypeStatus    = "STATUS"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
