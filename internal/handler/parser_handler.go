package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/model"
	"github.com/fitsync/session-service/internal/parser"
	"github.com/fitsync/session-service/internal/service"
	"github.com/fitsync/session-service/internal/zone"
)

// ParserHandler turns video descriptions into persisted cue sheets.
type ParserHandler struct {
	svc             *service.SessionService
	defaultDuration int
	logger          *zap.Logger
}

// NewParserHandler creates the parser handler.
func NewParserHandler(svc *service.SessionService, defaultDuration int, logger *zap.Logger) *ParserHandler {
	if defaultDuration <= 0 {
		defaultDuration = 1800
	}
	return &ParserHandler{svc: svc, defaultDuration: defaultDuration, logger: logger}
}

// ParseDescription godoc
// POST /parser/description
// Parses the description into a cue timeline, atomically replaces the stored
// cue sheet for the video, and returns the cues plus the zone percent bands.
func (h *ParserHandler) ParseDescription(c *gin.Context) {
	var req model.ParseDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	duration := req.Duration
	if duration <= 0 {
		duration = h.defaultDuration
	}

	entries := parser.Parse(req.Description, duration)
	cues, err := h.svc.ReplaceCues(req.VideoRef, entries)
	if err != nil {
		h.logger.Error("replace cues", zap.String("video_ref", req.VideoRef), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store cues"})
		return
	}
	h.logger.Info("cue sheet replaced",
		zap.String("video_ref", req.VideoRef),
		zap.Int("cues", len(cues)))

	c.JSON(http.StatusOK, model.ParseDescriptionResponse{
		Cues:  cues,
		Zones: zone.PercentRanges(),
	})
}
