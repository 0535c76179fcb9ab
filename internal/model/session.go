package model

import (
	"time"

	"github.com/fitsync/session-service/internal/zone"
)

// SessionStatus represents training session state. Status never transitions
// in response to control or telemetry traffic; it is managed externally.
type SessionStatus string

const (
	SessionStatusWaiting   SessionStatus = "waiting"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// MemberRole is host or participant.
type MemberRole string

const (
	RoleHost        MemberRole = "host"
	RoleParticipant MemberRole = "participant"
)

// Session is the API view of a training session (not the GORM entity).
type Session struct {
	ID         string        `json:"id"`
	HostUserID string        `json:"hostUserId"`
	VideoRef   string        `json:"videoRef"`
	Title      string        `json:"title,omitempty"`
	Status     SessionStatus `json:"status"`
	Members    []Member      `json:"members"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Member is a session participant, as returned to API clients.
type Member struct {
	UserID   string     `json:"userId"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// Cue is one timed zone segment of a video, as returned to API clients.
type Cue struct {
	VideoRef     string    `json:"videoRef"`
	SegmentIndex int       `json:"segmentIndex"`
	StartS       int       `json:"startS"`
	EndS         int       `json:"endS"`
	ZoneCode     zone.Code `json:"zoneCode"`
	Label        string    `json:"label,omitempty"`
}

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	VideoRef   string `json:"videoRef" binding:"required"`
	Title      string `json:"title"`
	HostUserID string `json:"hostUserId"`
}

// JoinSessionRequest is the request body for POST /sessions/:id/join.
type JoinSessionRequest struct {
	UserID string     `json:"userId" binding:"required"`
	Role   MemberRole `json:"role"`
}

// JoinSessionResponse is the response for POST /sessions/:id/join.
type JoinSessionResponse struct {
	OK bool `json:"ok"`
}

// ParseDescriptionRequest is the request body for POST /parser/description.
type ParseDescriptionRequest struct {
	VideoRef    string `json:"videoRef" binding:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

// ParseDescriptionResponse carries the materialized cue timeline plus the
// zone percent bands for client display.
type ParseDescriptionResponse struct {
	Cues  []Cue                `json:"cues"`
	Zones map[zone.Code][2]int `json:"zones"`
}

// DetectZoneRequest is the request body for POST /zone-detector/detect.
// ImageBase64 accepts raw base64 or a data URL.
type DetectZoneRequest struct {
	SessionID   string `json:"sessionId"`
	ImageBase64 string `json:"imageBase64"`
	ROIX        *int   `json:"roiX"`
	ROIY        *int   `json:"roiY"`
	ROIWidth    *int   `json:"roiWidth"`
	ROIHeight   *int   `json:"roiHeight"`
}
