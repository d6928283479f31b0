package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gomoku-backend/internal/client"
	"gomoku-backend/internal/match"
	"gomoku-backend/internal/player"
	"gomoku-backend/internal/session"
	"gomoku-backend/internal/validator"
	"gomoku-backend/pkg/proto"
)

// ServeClient owns one connection end to end: it starts the write pump,
// processes inbound messages strictly in arrival order and resolves the
// disconnect when the read loop ends. Messages for different matches are
// handled concurrently by the other connections' loops; per-match ordering
// is the match's own lock's problem.
func (h *Hub) ServeClient(ctx context.Context, c *client.Client) {
	go c.WritePump()

	defer func() {
		c.Close()
		h.disconnect(ctx, c)
	}()

	for {
		data, err := c.Read()
		if err != nil {
			slog.Info("connection closed", "client.id", c.ID, "error", err)
			return
		}
		h.route(ctx, c, data)
	}
}

// route dispatches one inbound message. Malformed or invalid messages are
// dropped without an error event; the protocol has none.
func (h *Hub) route(ctx context.Context, c *client.Client, data []byte) {
	ctx, span := tracer.Start(ctx, "hub.route", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("dropping malformed message", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed message")
		return
	}
	if err := validator.GetValidator().Struct(msg); err != nil {
		slog.Warn("dropping invalid message", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", msg.Type))

	switch msg.Type {
	case proto.TypeName, proto.TypeJoin:
		h.handleJoin(ctx, c, &msg)
	case proto.TypeMove:
		h.handleMove(ctx, c, &msg)
	case proto.TypeRematchRequest:
		h.handleRematch(ctx, c, (*match.Match).RequestRematch)
	case proto.TypeRematchAccept:
		h.handleRematch(ctx, c, (*match.Match).AcceptRematch)
	case proto.TypeRematchDecline:
		h.handleRematch(ctx, c, (*match.Match).DeclineRematch)
	default:
		slog.Warn("dropping message of unknown type", "client.id", c.ID, "message.type", msg.Type)
	}
}

// handleJoin resolves the session identifier, then either parks the client
// in the waiting slot or pairs it with the participant already there. The
// earlier joiner takes role 1 and moves first.
func (h *Hub) handleJoin(ctx context.Context, c *client.Client, msg *proto.ClientToServerMessage) {
	ctx, span := tracer.Start(ctx, "hub.handleJoin", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	if h.matchOf(c) != nil || h.matchmaker.Waiting(c) {
		slog.Warn("ignoring join from client already placed", "client.id", c.ID)
		return
	}

	sessionID := session.Resolve(msg.SessionID)
	c.SetIdentity(sessionID, msg.Name)

	if entry, ok := h.registry.Lookup(sessionID); ok {
		// Continuity hint only: the prior match is not restored, the client
		// is paired fresh like anyone else.
		slog.Info("client presented a known session",
			"client.id", c.ID, "prior.match.id", entry.MatchID, "prior.role", entry.Role)
	}

	opponent, paired := h.matchmaker.Join(c)
	if !paired {
		c.Notify(&proto.ServerToClientMessage{Type: proto.TypeWait})
		slog.Info("client waiting for an opponent", "client.id", c.ID)
		return
	}

	h.startMatch(ctx, c, opponent)
}

// startMatch registers a freshly paired match and opens play. A seat whose
// connection died between the matchmaker pop and the registration here was
// missed by its own disconnect cleanup (the slot was already empty, the
// match not yet reachable), so both seats are re-checked once the match is
// registered and a dead one is resolved through the usual disconnect
// transition. HandleDisconnect is idempotent with any cleanup that races
// in after registration.
func (h *Hub) startMatch(ctx context.Context, c *client.Client, opponent player.Participant) {
	matchID := uuid.NewString()
	m := match.New(matchID, opponent, c, h.opts.TurnTimeout)

	h.mu.Lock()
	h.matches[matchID] = m
	if opp, ok := opponent.(*client.Client); ok {
		h.byClient[opp] = m
	}
	h.byClient[c] = m
	h.mu.Unlock()

	h.registry.Bind(opponent.SessionID(), matchID, 1)
	h.registry.Bind(c.SessionID(), matchID, 2)

	if h.matchesCreated != nil {
		h.matchesCreated.Add(ctx, 1)
	}
	if h.activeMatches != nil {
		h.activeMatches.Add(ctx, 1)
	}

	slog.Info("match created", "match.id", matchID, "client.id", c.ID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("match.id", matchID))

	m.Begin(ctx)

	for _, seat := range []player.Participant{opponent, c} {
		if !seat.Open() {
			m.HandleDisconnect(ctx, seat)
		}
	}
}

func (h *Hub) handleMove(ctx context.Context, c *client.Client, msg *proto.ClientToServerMessage) {
	m := h.matchOf(c)
	if m == nil {
		// Stale reference, e.g. a move racing its own disconnect cleanup.
		slog.Warn("move from client without a match", "client.id", c.ID)
		return
	}

	if err := m.SubmitMove(ctx, c, *msg.X, *msg.Y); err != nil {
		// Rejected moves are dropped silently; the client learns nothing
		// happened from the absence of a move broadcast.
		slog.Warn("rejected move", "client.id", c.ID, "match.id", m.ID,
			"x", *msg.X, "y", *msg.Y, "error", err)
	}
}

func (h *Hub) handleRematch(ctx context.Context, c *client.Client, op func(*match.Match, context.Context, player.Participant) error) {
	m := h.matchOf(c)
	if m == nil {
		slog.Warn("rematch message from client without a match", "client.id", c.ID)
		return
	}

	if err := op(m, ctx, c); err != nil {
		slog.Warn("rejected rematch message", "client.id", c.ID, "match.id", m.ID, "error", err)
	}
}

// disconnect clears whatever the client occupied: the waiting slot, so a
// future joiner is not paired with a dead connection, and its match, which
// finishes in the remaining participant's favor.
func (h *Hub) disconnect(ctx context.Context, c *client.Client) {
	ctx, span := tracer.Start(ctx, "hub.disconnect", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	h.matchmaker.Withdraw(c)

	h.mu.Lock()
	m := h.byClient[c]
	delete(h.byClient, c)
	h.mu.Unlock()

	if m != nil {
		m.HandleDisconnect(ctx, c)
	}
}
