package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitsync/session-service/internal/errs"
	"github.com/fitsync/session-service/internal/model"
	"github.com/fitsync/session-service/internal/service"
)

// SessionHandler handles the REST API for sessions.
type SessionHandler struct {
	svc       *service.SessionService
	wsBaseURL string
}

// NewSessionHandler creates a session handler. wsBaseURL, when set, prefixes
// the WebSocket URL returned on create (e.g. wss://sync.example.com).
func NewSessionHandler(svc *service.SessionService, wsBaseURL string) *SessionHandler {
	return &SessionHandler{svc: svc, wsBaseURL: wsBaseURL}
}

// CreateSession godoc
// POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	sess, err := h.svc.Create(req.VideoRef, req.Title, req.HostUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session": sess,
		"wsUrl":   h.wsURL(sess.ID, sess.HostUserID),
	})
}

// JoinSession godoc
// POST /sessions/:id/join
func (h *SessionHandler) JoinSession(c *gin.Context) {
	sessionID := c.Param("id")
	var req model.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.svc.Join(sessionID, req.UserID, req.Role); err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join session"})
		return
	}
	c.JSON(http.StatusOK, model.JoinSessionResponse{OK: true})
}

// GetSession godoc
// GET /sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// ListCues godoc
// GET /sessions/:id/cues
func (h *SessionHandler) ListCues(c *gin.Context) {
	cues, err := h.svc.ListCues(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cues"})
		return
	}
	c.JSON(http.StatusOK, cues)
}

func (h *SessionHandler) wsURL(sessionID, userID string) string {
	path := fmt.Sprintf("/ws/session/%s/%s", sessionID, userID)
	if h.wsBaseURL == "" {
		return path
	}
	base := h.wsBaseURL
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}
