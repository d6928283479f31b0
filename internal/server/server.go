package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gomoku-backend/internal/client"
	"gomoku-backend/internal/hub"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine   *gin.Engine
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewServer(h *hub.Hub, staticDir string) *Server {
	s := &Server{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/ws", s.handleWebSocket)
	engine.GET("/healthz", s.handleHealth)
	if staticDir != "" {
		engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}
	s.engine = engine

	return s
}

// Engine exposes the router for the http.Server in main.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// handleWebSocket upgrades the connection and hands it to the hub. It does
// not parse any protocol: joining happens via the first inbound message.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upgrade connection")
		return
	}

	cl := client.New(uuid.NewString(), conn)
	span.SetAttributes(attribute.String("client.id", cl.ID))

	// The connection outlives this handler; detach from the request's
	// cancellation but keep its trace context.
	go s.hub.ServeClient(context.WithoutCancel(ctx), cl)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"matches": s.hub.MatchCount(),
	})
}
