package service

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/model"
)

// Subscriber is one live connection in a room.
type Subscriber struct {
	SessionID string
	UserID    string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Subscription is the registration handle; closing it unregisters the
// subscriber. Close is safe to call more than once.
type Subscription struct {
	hub  *RelayHub
	sub  *Subscriber
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unregister(s.sub)
	})
}

// room is one fan-out unit. Its mutex serializes membership changes and
// publishes, so delivery within a room is ordered; different rooms never
// contend.
type room struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// RelayHub fans relay events out to session rooms. Delivery is best-effort
// at-most-once: a subscriber with a full send buffer misses the event, a
// disconnected subscriber is simply removed.
type RelayHub struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	upgrader   websocket.Upgrader
	maxMsgSize int64
	sendBuffer int
	log        *zap.Logger
}

// NewRelayHub creates a relay hub.
func NewRelayHub(readBufferSize, writeBufferSize int, maxMessageSize int64, sendBuffer int, log *zap.Logger) *RelayHub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &RelayHub{
		rooms:      make(map[string]*room),
		maxMsgSize: maxMessageSize,
		sendBuffer: sendBuffer,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// TODO: restrict origins once the web client origin is fixed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Join adds a connection to a room and returns the subscriber together with
// its subscription handle.
func (h *RelayHub) Join(sessionID, userID string, conn *websocket.Conn) (*Subscriber, *Subscription) {
	if conn != nil && h.maxMsgSize > 0 {
		conn.SetReadLimit(h.maxMsgSize)
	}
	sub := &Subscriber{
		SessionID: sessionID,
		UserID:    userID,
		Conn:      conn,
		Send:      make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()
	r := h.rooms[sessionID]
	if r == nil {
		r = &room{subs: make(map[*Subscriber]struct{})}
		h.rooms[sessionID] = r
	}
	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()
	h.mu.Unlock()

	h.log.Info("subscriber joined",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID))

	return sub, &Subscription{hub: h, sub: sub}
}

func (h *RelayHub) unregister(sub *Subscriber) {
	h.mu.Lock()
	r := h.rooms[sub.SessionID]
	if r == nil {
		h.mu.Unlock()
		return
	}
	r.mu.Lock()
	_, present := r.subs[sub]
	if present {
		delete(r.subs, sub)
		close(sub.Send)
	}
	if len(r.subs) == 0 {
		delete(h.rooms, sub.SessionID)
	}
	r.mu.Unlock()
	h.mu.Unlock()

	if present {
		h.log.Info("subscriber left",
			zap.String("session_id", sub.SessionID),
			zap.String("user_id", sub.UserID))
	}
}

// Publish encodes the event and delivers it to every subscriber of the room.
// Nobody is excluded, the sender included; senders ignore their own echoes if
// undesired. An empty or unknown room is a silent no-op.
func (h *RelayHub) Publish(sessionID string, ev model.Event) {
	frame, err := model.EncodeEvent(ev)
	if err != nil {
		h.log.Error("encode event", zap.String("kind", string(ev.Kind())), zap.Error(err))
		return
	}
	h.PublishFrame(sessionID, frame)
}

// PublishFrame delivers an already-encoded wire frame to the room. Delivery
// to the room's subscribers is sequential under the room lock, so all
// subscribers observe publishes to one room in the same order.
func (h *RelayHub) PublishFrame(sessionID string, frame []byte) {
	h.mu.RLock()
	r := h.rooms[sessionID]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	for sub := range r.subs {
		select {
		case sub.Send <- frame:
		default:
			h.log.Warn("subscriber send buffer full, dropping event",
				zap.String("session_id", sessionID),
				zap.String("user_id", sub.UserID))
		}
	}
	r.mu.Unlock()
}

// CloseSession drops the whole room: closes every connection and removes all
// subscriptions.
func (h *RelayHub) CloseSession(sessionID string) {
	h.mu.Lock()
	r := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	subs := make([]*Subscriber, 0, len(r.subs))
	for sub := range r.subs {
		subs = append(subs, sub)
		delete(r.subs, sub)
	}
	r.mu.Unlock()

	for _, sub := range subs {
		close(sub.Send)
		if sub.Conn != nil {
			_ = sub.Conn.Close()
		}
	}
	h.log.Info("session room closed", zap.String("session_id", sessionID))
}

// RoomSize returns the number of subscribers in a room.
func (h *RelayHub) RoomSize(sessionID string) int {
	h.mu.RLock()
	r := h.rooms[sessionID]
	h.mu.RUnlock()
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *RelayHub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}
