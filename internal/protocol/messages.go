package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	SessionID       string          `json:"session_id"`
	WorldID         string          `json:"world_id"`
	WorldParams     WorldParams     `json:"world_params"`
	Spawn           Point           `json:"spawn"`
	Inventory       Inventory       `json:"inventory"`
	Selected        string          `json:"selected"`
	Palette         []string        `json:"palette"`
	Costs           map[string]Cost `json:"costs,omitempty"`
}

type WorldParams struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	TileSize   int     `json:"tile_size"`
	TickRateHz int     `json:"tick_rate_hz"`
	Seed       int64   `json:"seed"`
	Clearance  float64 `json:"clearance"`
	MaxReach   float64 `json:"max_reach,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TileRef struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Inventory struct {
	Wood  uint `json:"wood"`
	Stone uint `json:"stone"`
}

type Cost struct {
	Resource string `json:"resource"`
	Amount   uint   `json:"amount"`
}

// POINTER (client -> server): a pointer-down in world space.
type PointerMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Button          string  `json:"button"` // "primary" | "secondary"
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
}

// MOVE (client -> server): the player position as resolved by the client's physics.
type MoveMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
}

// SELECT (client -> server): cycle the build selection, or pick one explicitly.
type SelectMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Kind            string `json:"kind,omitempty"`
}

// SAVE (client -> server)
type SaveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// TILES (server -> client): one row of the tile stream.
type TilesMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Row             int       `json:"row"`
	Tiles           []TileObs `json:"tiles"`
}

type TileObs struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Terrain  string `json:"terrain"`
	Occupant string `json:"occupant,omitempty"`
	EntityID uint64 `json:"entity_id,omitempty"`
}

// CREATURES (server -> client)
type CreaturesMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Creatures       []CreatureObs `json:"creatures"`
}

type CreatureObs struct {
	ID  uint64 `json:"id"`
	Pos Point  `json:"pos"`
	Vel Point  `json:"vel"`
}

const (
	OpRemoved = "REMOVED"
	OpPlaced  = "PLACED"
)

// MUTATION (server -> client): an applied destroy or build.
type MutationMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Tick            uint64    `json:"tick"`
	Op              string    `json:"op"`
	EntityID        uint64    `json:"entity_id"`
	Kind            string    `json:"kind"`
	Tile            TileRef   `json:"tile"`
	By              string    `json:"by,omitempty"`
	Inventory       Inventory `json:"inventory"`
}

// NOTICE (server -> client): why a request changed nothing.
type NoticeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Reason          string `json:"reason,omitempty"`
	Message         string `json:"message"`
}

const (
	SavePending = "PENDING"
	SaveOK      = "OK"
	SaveFailed  = "FAILED"
)

// STATUS (server -> client): save progress and the current build selection.
type StatusMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Save            string    `json:"save,omitempty"`
	SaveID          int64     `json:"save_id,omitempty"`
	Message         string    `json:"message,omitempty"`
	Selected        string    `json:"selected,omitempty"`
	Inventory       Inventory `json:"inventory"`
}

// SaveRequest is the body of POST /api/save. Missing counters decode as zero.
type SaveRequest struct {
	Wood  uint `json:"wood"`
	Stone uint `json:"stone"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SaveID  int64  `json:"saveId,omitempty"`
}
