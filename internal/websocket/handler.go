package websocket

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"labordash/internal/config"
	"labordash/internal/infrastructure"
)

// Handler upgrades HTTP requests to websocket clients of a hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	cfg      ClientConfig
	logger   *slog.Logger
}

// NewHandler creates the /ws endpoint. An empty allowedOrigins list accepts
// only same-host origins; "*" accepts any.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Handler{
		hub:    hub,
		cfg:    ClientConfigFrom(cfg),
		logger: infrastructure.WithComponent(logger, "websocket.handler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// ServeHTTP upgrades the connection and registers the client with the hub
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	traceID := middleware.GetReqID(ctx)
	if traceID == "" {
		traceID = infrastructure.GetTraceID(infrastructure.EnsureTraceID(ctx))
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), h.cfg, traceID, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
