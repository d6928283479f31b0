package proto

// Inbound message types.
const (
	TypeName           = "name"
	TypeJoin           = "join"
	TypeMove           = "move"
	TypeRematchRequest = "rematch_request"
	TypeRematchAccept  = "rematch_accept"
	TypeRematchDecline = "rematch_decline"
)

// Outbound message types.
const (
	TypeStart           = "start"
	TypeRematchStart    = "rematch_start"
	TypeWait            = "wait"
	TypeNames           = "names"
	TypeWin             = "win"
	TypeOpponentLeftWin = "opponent_left_win"
)

// ClientToServerMessage represents a message from the client to the server.
// Move coordinates are pointers so an absent field is distinguishable from a
// move at 0.
type ClientToServerMessage struct {
	Type      string `json:"type" validate:"required"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	X         *int   `json:"x,omitempty" validate:"required_if=Type move"`
	Y         *int   `json:"y,omitempty" validate:"required_if=Type move"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type      string         `json:"type"`
	Player    int            `json:"player,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Names     map[int]string `json:"names,omitempty"`
	X         *int           `json:"x,omitempty"`
	Y         *int           `json:"y,omitempty"`
}

// Start builds a start (or rematch_start) message for one participant.
func Start(msgType string, player int, sessionID string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: msgType, Player: player, SessionID: sessionID}
}

// Names builds the display-name announcement sent to both participants.
func Names(name1, name2 string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeNames, Names: map[int]string{1: name1, 2: name2}}
}

// Move builds the broadcast for an accepted move.
func Move(x, y, player int) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeMove, Player: player, X: &x, Y: &y}
}

// Win builds the broadcast naming the winning role.
func Win(player int) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeWin, Player: player}
}
