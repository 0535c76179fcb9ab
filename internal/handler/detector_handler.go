package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/detector"
	"github.com/fitsync/session-service/internal/errs"
	"github.com/fitsync/session-service/internal/model"
	"github.com/fitsync/session-service/internal/service"
)

// DetectorHandler classifies captured frames and pushes the result to the
// frame's session room.
type DetectorHandler struct {
	pool      *service.DetectPool
	hub       *service.RelayHub
	threshold float64
	logger    *zap.Logger
}

// NewDetectorHandler creates the zone-detector handler. threshold only
// controls the low-confidence warning; the best match is always returned.
func NewDetectorHandler(pool *service.DetectPool, hub *service.RelayHub, threshold float64, logger *zap.Logger) *DetectorHandler {
	return &DetectorHandler{pool: pool, hub: hub, threshold: threshold, logger: logger}
}

// DetectZone godoc
// POST /zone-detector/detect
func (h *DetectorHandler) DetectZone(c *gin.Context) {
	var req model.DetectZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if req.SessionID == "" || req.ImageBase64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and imageBase64 are required"})
		return
	}

	// Accept both data URLs (data:image/jpeg;base64,xxx) and raw base64.
	payload := req.ImageBase64
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	imageBytes, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(imageBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image data"})
		return
	}

	res, err := h.pool.Detect(c.Request.Context(), imageBytes, roiFromRequest(&req))
	if err != nil {
		if errors.Is(err, errs.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image data"})
			return
		}
		if errors.Is(err, errs.ErrImageDecode) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "classification failed", "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "zone detection failed"})
		return
	}

	if res.Confidence < h.threshold {
		h.logger.Warn("low confidence detection",
			zap.String("session_id", req.SessionID),
			zap.String("code", string(res.Code)),
			zap.Float64("confidence", res.Confidence))
	}

	h.hub.Publish(req.SessionID, model.ZoneUpdateEvent{
		ZoneCode:   res.Code,
		ZoneName:   res.Name,
		Confidence: res.Confidence,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})

	c.JSON(http.StatusOK, res)
}

// roiFromRequest builds the crop rectangle; a request without roiX and
// roiWidth means "whole frame". Missing roiY/roiHeight default inside the
// detector.
func roiFromRequest(req *model.DetectZoneRequest) *detector.ROI {
	if req.ROIX == nil || req.ROIWidth == nil {
		return nil
	}
	roi := &detector.ROI{X: *req.ROIX, Width: *req.ROIWidth}
	if req.ROIY != nil {
		roi.Y = *req.ROIY
	}
	if req.ROIHeight != nil {
		roi.Height = *req.ROIHeight
	}
	return roi
}
