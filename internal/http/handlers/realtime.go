package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// SSEStream subscribes the connection to the caller's user channel. A second
// stream for the same session replaces the first.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "not authenticated", "code": "unauthorized"}})
		return
	}
	client := h.hub.NewSSEClient(rd.UserID)
	sessionID := rd.SessionID
	if sessionID == uuid.Nil {
		sessionID = client.ID
	}

	h.mu.Lock()
	if existing, ok := h.clients[sessionID]; ok {
		h.hub.CloseClient(existing)
	}
	h.clients[sessionID] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	h.log.Info("SSE stream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())
	m := observability.Current()
	m.SSEClientsInc()
	defer m.SSEClientsDec()

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "user_id", rd.UserID.String(), "client_id", client.ID.String())
}
