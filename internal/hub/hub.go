package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"gomoku-backend/internal/client"
	"gomoku-backend/internal/match"
	"gomoku-backend/internal/matchmaker"
	"gomoku-backend/internal/session"
)

var (
	tracer = otel.Tracer("hub")
	meter  = otel.Meter("hub")
)

// Options tunes the gateway's server-side enforcement.
type Options struct {
	// TurnTimeout forfeits the turn holder when it expires; zero trusts the
	// client-side countdown instead, as the original protocol did.
	TurnTimeout time.Duration
	// MatchTTL bounds how long a finished match (and its session bindings)
	// survives before the janitor reclaims it.
	MatchTTL time.Duration
}

// Hub is the connection gateway: it pairs joiners through the matchmaker,
// owns the live match table, routes inbound messages to match operations and
// reclaims finished matches.
type Hub struct {
	opts       Options
	matchmaker *matchmaker.Matchmaker
	registry   *session.Registry

	mu       sync.Mutex
	matches  map[string]*match.Match
	byClient map[*client.Client]*match.Match

	matchesCreated metric.Int64Counter
	activeMatches  metric.Int64UpDownCounter
}

func NewHub(opts Options) *Hub {
	matchesCreated, err := meter.Int64Counter("gomoku.matches.created",
		metric.WithDescription("Matches created by the matchmaker"))
	if err != nil {
		slog.Warn("failed to create counter", "error", err)
	}
	activeMatches, err := meter.Int64UpDownCounter("gomoku.matches.active",
		metric.WithDescription("Matches currently held by the gateway"))
	if err != nil {
		slog.Warn("failed to create gauge", "error", err)
	}

	return &Hub{
		opts:           opts,
		matchmaker:     matchmaker.New(),
		registry:       session.NewRegistry(),
		matches:        make(map[string]*match.Match),
		byClient:       make(map[*client.Client]*match.Match),
		matchesCreated: matchesCreated,
		activeMatches:  activeMatches,
	}
}

// Run drives the janitor until ctx is canceled. Finished matches older than
// MatchTTL are evicted together with their session-registry bindings, so the
// match table is bounded even though clients rarely say goodbye.
func (h *Hub) Run(ctx context.Context) {
	interval := h.opts.MatchTTL
	if interval <= 0 {
		slog.Info("match eviction disabled")
		<-ctx.Done()
		return
	}
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.evictFinished(ctx)
		}
	}
}

func (h *Hub) evictFinished(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, m := range h.matches {
		// TryEvict decides under the match lock, so a rematch acceptance
		// racing the sweep either revives the match before eviction or
		// fails with ErrEvicted after it; never both.
		if !m.TryEvict(h.opts.MatchTTL) {
			continue
		}

		delete(h.matches, id)
		for c, cm := range h.byClient {
			if cm == m {
				delete(h.byClient, c)
			}
		}
		h.registry.ReleaseMatch(id)
		if h.activeMatches != nil {
			h.activeMatches.Add(ctx, -1)
		}
		slog.Info("evicted finished match", "match.id", id)
	}
}

// MatchCount reports the number of matches currently held.
func (h *Hub) MatchCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.matches)
}

// Registry exposes the session registry for the HTTP surface.
func (h *Hub) Registry() *session.Registry {
	return h.registry
}

func (h *Hub) matchOf(c *client.Client) *match.Match {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byClient[c]
}
