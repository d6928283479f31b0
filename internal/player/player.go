package player

import "gomoku-backend/pkg/proto"

// Participant binds one live connection's identity to its notify capability.
// Match and matchmaker only ever see this interface, never the transport.
type Participant interface {
	// SessionID is the opaque client-durable identifier echoed back in start messages.
	SessionID() string
	// Name is the display name, "Anonymous" when the client sent none.
	Name() string
	// Notify queues an event for delivery. Fire-and-forget: sends to a dead
	// peer are dropped, never propagated.
	Notify(msg *proto.ServerToClientMessage)
	// Open reports whether the underlying connection is still live.
	Open() bool
}
