package match

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gomoku-backend/internal/game"
	"gomoku-backend/internal/player"
	"gomoku-backend/pkg/proto"
)

var tracer = otel.Tracer("match")

var (
	ErrFinished       = errors.New("match is already finished")
	ErrNotFinished    = errors.New("match is still in progress")
	ErrEvicted        = errors.New("match was evicted")
	ErrNotYourTurn    = errors.New("not this participant's turn")
	ErrNotParticipant = errors.New("participant is not part of this match")
)

// State is the match lifecycle tag. AwaitingSecondPlayer has no representation
// here: an unpaired participant lives in the matchmaker's waiting slot and a
// Match exists only once both seats are filled. Evicted is terminal: the
// gateway has dropped its references and no transition revives the match.
type State uint8

const (
	InProgress State = iota
	Finished
	Evicted
)

// Match owns one game's mutable state. Every transition runs under mu, so
// turn validation and mutation are indivisible and no two moves for the same
// match interleave. Broadcasts are emitted while the lock is held: they are
// queued to both participants before any later message for this match can be
// processed.
type Match struct {
	ID string

	mu         sync.Mutex
	board      game.Board
	turn       game.Mark
	state      State
	seats      [2]player.Participant
	finishedAt time.Time

	// Optional server-side turn enforcement. Zero disables it, leaving
	// timeout handling to the client as the original protocol did.
	turnTimeout time.Duration
	turnSeq     uint64
	timer       *time.Timer
}

// New creates a match with p1 in seat 0 (role 1, moves first) and p2 in
// seat 1 (role 2).
func New(id string, p1, p2 player.Participant, turnTimeout time.Duration) *Match {
	return &Match{
		ID:          id,
		turn:        game.P1,
		state:       InProgress,
		seats:       [2]player.Participant{p1, p2},
		turnTimeout: turnTimeout,
	}
}

// Begin announces the pairing: each participant gets its role and session id
// echo, then both get the display names. Also arms the first turn timer.
func (m *Match) Begin(ctx context.Context) {
	_, span := tracer.Start(ctx, "match.Begin", trace.WithAttributes(
		attribute.String("match.id", m.ID),
	))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, seat := range m.seats {
		seat.Notify(proto.Start(proto.TypeStart, i+1, seat.SessionID()))
	}
	m.notifyAll(proto.Names(m.seats[0].Name(), m.seats[1].Name()))
	m.armTurnTimerLocked()
}

// SubmitMove validates and applies a move for p. A rejected move changes no
// state and emits nothing; the caller decides what to log. On success the
// move broadcast goes out to both seats, then win detection runs on the
// placed stone.
func (m *Match) SubmitMove(ctx context.Context, p player.Participant, x, y int) error {
	_, span := tracer.Start(ctx, "match.SubmitMove", trace.WithAttributes(
		attribute.String("match.id", m.ID),
		attribute.Int("move.x", x),
		attribute.Int("move.y", y),
	))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	role := m.roleOfLocked(p)
	if role == 0 {
		return ErrNotParticipant
	}
	if m.state != InProgress {
		return ErrFinished
	}

	mark := game.Mark(role)
	if m.turn != mark {
		return ErrNotYourTurn
	}
	if err := m.board.Apply(x, y, mark); err != nil {
		return err
	}

	m.turn = game.Other(mark)
	m.notifyAll(proto.Move(x, y, role))

	if game.CheckWin(m.board, x, y, mark) {
		m.finishLocked()
		m.notifyAll(proto.Win(role))
		span.SetAttributes(attribute.Int("match.winner", role))
		return nil
	}

	m.armTurnTimerLocked()
	return nil
}

// RequestRematch forwards a rematch request to the other participant. Only
// meaningful once the match is finished.
func (m *Match) RequestRematch(ctx context.Context, p player.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	role := m.roleOfLocked(p)
	if role == 0 {
		return ErrNotParticipant
	}
	if err := m.rematchStateLocked(); err != nil {
		return err
	}

	m.opponentOfLocked(role).Notify(&proto.ServerToClientMessage{Type: proto.TypeRematchRequest})
	return nil
}

// DeclineRematch forwards a decline to the other participant. The match stays
// finished and is reclaimed later by the gateway's janitor.
func (m *Match) DeclineRematch(ctx context.Context, p player.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	role := m.roleOfLocked(p)
	if role == 0 {
		return ErrNotParticipant
	}
	if err := m.rematchStateLocked(); err != nil {
		return err
	}

	m.opponentOfLocked(role).Notify(&proto.ServerToClientMessage{Type: proto.TypeRematchDecline})
	return nil
}

// AcceptRematch is the only backward transition: Finished -> InProgress with
// a zeroed grid and the turn back on role 1. Seats, roles and names are
// preserved; both participants get a fresh rematch_start and the names again.
func (m *Match) AcceptRematch(ctx context.Context, p player.Participant) error {
	_, span := tracer.Start(ctx, "match.AcceptRematch", trace.WithAttributes(
		attribute.String("match.id", m.ID),
	))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.roleOfLocked(p) == 0 {
		return ErrNotParticipant
	}
	if err := m.rematchStateLocked(); err != nil {
		return err
	}

	m.board = game.Board{}
	m.turn = game.P1
	m.state = InProgress
	m.finishedAt = time.Time{}

	for i, seat := range m.seats {
		seat.Notify(proto.Start(proto.TypeRematchStart, i+1, seat.SessionID()))
	}
	m.notifyAll(proto.Names(m.seats[0].Name(), m.seats[1].Name()))
	m.armTurnTimerLocked()
	return nil
}

// HandleDisconnect resolves a dropped connection: an in-progress match
// finishes and the remaining participant is told it won. Idempotent; a second
// disconnect for an already finished match is a no-op.
func (m *Match) HandleDisconnect(ctx context.Context, p player.Participant) {
	_, span := tracer.Start(ctx, "match.HandleDisconnect", trace.WithAttributes(
		attribute.String("match.id", m.ID),
	))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	role := m.roleOfLocked(p)
	if role == 0 || m.state != InProgress {
		return
	}

	m.finishLocked()
	opponent := m.opponentOfLocked(role)
	if opponent.Open() {
		opponent.Notify(&proto.ServerToClientMessage{Type: proto.TypeOpponentLeftWin})
	}
}

// FinishedAt returns when the match finished; ok is false while the match is
// in progress (including after a rematch reset).
func (m *Match) FinishedAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishedAt, m.state != InProgress
}

// TryEvict retires a finished match whose grace period has lapsed. The state
// change runs under the match lock, so a rematch acceptance and an eviction
// can never both win: once this returns true the match is Evicted and the
// caller can drop its references without stranding a revived game.
func (m *Match) TryEvict(ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Finished || time.Since(m.finishedAt) < ttl {
		return false
	}
	m.state = Evicted
	return true
}

// rematchStateLocked gates the rematch transitions: only a finished match
// that is still routable can negotiate one.
func (m *Match) rematchStateLocked() error {
	switch m.state {
	case InProgress:
		return ErrNotFinished
	case Evicted:
		return ErrEvicted
	}
	return nil
}

func (m *Match) roleOfLocked(p player.Participant) int {
	for i, seat := range m.seats {
		if seat == p {
			return i + 1
		}
	}
	return 0
}

func (m *Match) opponentOfLocked(role int) player.Participant {
	return m.seats[2-role]
}

func (m *Match) notifyAll(msg *proto.ServerToClientMessage) {
	for _, seat := range m.seats {
		seat.Notify(msg)
	}
}

func (m *Match) finishLocked() {
	m.state = Finished
	m.finishedAt = time.Now()
	m.turnSeq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Match) armTurnTimerLocked() {
	if m.turnTimeout <= 0 {
		return
	}
	m.turnSeq++
	seq := m.turnSeq
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.turnTimeout, func() { m.expireTurn(seq) })
}

// expireTurn fires when the participant on turn sat out the whole timeout.
// The seq check discards timers that raced with an accepted move or another
// terminal transition.
func (m *Match) expireTurn(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seq != m.turnSeq || m.state != InProgress {
		return
	}

	winner := int(game.Other(m.turn))
	slog.Info("turn timed out, awarding win to opponent", "match.id", m.ID, "winner", winner)
	m.finishLocked()
	m.notifyAll(proto.Win(winner))
}
