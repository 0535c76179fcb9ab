package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/model"
	"github.com/fitsync/session-service/internal/service"
)

// RelayWSHandler handles WebSocket connections for /ws/session/:session_id/:user_id.
type RelayWSHandler struct {
	hub    *service.RelayHub
	sess   *service.SessionService
	logger *zap.Logger
}

// NewRelayWSHandler creates the relay WebSocket handler.
func NewRelayWSHandler(hub *service.RelayHub, sess *service.SessionService, logger *zap.Logger) *RelayWSHandler {
	return &RelayWSHandler{hub: hub, sess: sess, logger: logger}
}

// ServeWS upgrades the request and runs the relay loop for one connection.
// Path: /ws/session/:session_id/:user_id
func (h *RelayWSHandler) ServeWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	userID := c.Param("user_id")
	if sessionID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and user_id required"})
		return
	}

	if _, err := h.sess.Get(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub, subscription := h.hub.Join(sessionID, userID, conn)
	defer subscription.Close()

	go h.writePump(sub)
	h.readPump(sub)
}

// readPump decodes incoming frames and dispatches them. The event switch is
// exhaustive over the union; malformed or unknown frames are answered with a
// failed session.state on the sender's own connection only.
func (h *RelayWSHandler) readPump(sub *service.Subscriber) {
	defer func() {
		_ = sub.Conn.Close()
	}()
	for {
		_, raw, err := sub.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			return
		}
		ev, err := model.DecodeEvent(raw)
		if err != nil {
			h.reply(sub, model.SessionStateEvent{OK: false, Error: err.Error()})
			continue
		}
		switch e := ev.(type) {
		case model.SessionJoinEvent:
			if err := h.sess.Join(e.SessionID, e.UserID, model.RoleParticipant); err != nil {
				h.reply(sub, model.SessionStateEvent{OK: false, Error: "session not found"})
				continue
			}
			h.reply(sub, model.SessionStateEvent{OK: true})
		case model.PlayerControlEvent, model.HRUpdateEvent, model.ZoneUpdateEvent:
			// Pure relay: no validation of action legality, no dedup, no
			// reordering. The frame goes out verbatim.
			h.hub.PublishFrame(sub.SessionID, raw)
		case model.SessionStateEvent:
			// Server-to-client only; ignore echoes.
		}
	}
}

// reply queues an event on the sender's own connection.
func (h *RelayWSHandler) reply(sub *service.Subscriber, ev model.Event) {
	frame, err := model.EncodeEvent(ev)
	if err != nil {
		h.logger.Error("encode reply", zap.Error(err))
		return
	}
	select {
	case sub.Send <- frame:
	default:
		h.logger.Warn("reply dropped, send buffer full", zap.String("user_id", sub.UserID))
	}
}

func (h *RelayWSHandler) writePump(sub *service.Subscriber) {
	defer func() {
		_ = sub.Conn.Close()
	}()
	for data := range sub.Send {
		if err := sub.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
