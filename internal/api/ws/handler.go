package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/logging"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/monitoring"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // The boundary is a local shell, not the open web
	},
}

// Event channel names for pushed notifications.
const (
	workspaceEventChannel = "workspace.event"
	tabEventChannel       = "tab.event"
)

// pushEvent is an outbound notification frame (no request initiates it).
type pushEvent struct {
	Channel string      `json:"channel"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Handler manages envelope websocket connections.
type Handler struct {
	router  *Router
	bus     *events.Bus
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a websocket handler.
func NewHandler(router *Router, bus *events.Bus, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		router:  router,
		bus:     bus,
		logger:  logger,
		metrics: metrics,
	}
}

// HandleConnection upgrades the connection, attaches the client as an event
// subscriber, and serves envelope requests until the peer goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	h.logger.Info("shell connected", zap.String("conn_id", connID))
	defer h.logger.Info("shell disconnected", zap.String("conn_id", connID))

	if h.metrics != nil {
		h.metrics.ConnectionOpened()
		defer h.metrics.ConnectionClosed()
	}

	// Responses and pushed events interleave on one connection; writes are
	// serialized here.
	var writeMu sync.Mutex
	send := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	unsubWorkspace := h.bus.SubscribeWorkspace(func(evt types.WorkspaceEvent) {
		if err := send(pushEvent{Channel: workspaceEventChannel, Type: evt.Type, Payload: evt.Payload}); err != nil {
			h.logger.Debug("workspace event dropped", zap.Error(err))
		}
	})
	defer unsubWorkspace()

	unsubTab := h.bus.SubscribeTab(func(evt types.TabEvent) {
		if err := send(pushEvent{Channel: tabEventChannel, Type: evt.Type, Payload: evt.Payload}); err != nil {
			h.logger.Debug("tab event dropped", zap.Error(err))
		}
	})
	defer unsubTab()

	for {
		var req types.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		resp := h.router.Dispatch(req)
		if h.metrics != nil {
			h.metrics.RecordRequest(req.Channel, resp.OK)
		}
		if err := send(resp); err != nil {
			h.logger.Warn("websocket write error", zap.Error(err))
			return
		}
	}
}
