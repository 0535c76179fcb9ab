package model

import "time"

// TrainingSession is the session row (GORM). IDs are assigned in code.
type TrainingSession struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	HostUserID string    `gorm:"size:64;not null;index"`
	VideoRef   string    `gorm:"size:64;not null;index"`
	Title      string    `gorm:"size:255"`
	Status     string    `gorm:"size:20;not null;default:waiting"` // waiting, active, completed, cancelled
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Members []SessionMember `gorm:"foreignKey:SessionID"`
}

func (TrainingSession) TableName() string { return "training_sessions" }

// SessionMember is a membership row (GORM). The composite unique index backs
// the idempotent-join contract: at most one row per (session, user).
type SessionMember struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	SessionID string    `gorm:"type:uuid;not null;uniqueIndex:idx_member_session_user"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_member_session_user"`
	Role      string    `gorm:"size:20;not null;default:participant"`
	JoinedAt  time.Time `gorm:"column:joined_at;not null"`
}

func (SessionMember) TableName() string { return "session_members" }

// VideoCue is a persisted cue row (GORM). Cues for a videoRef are replaced
// atomically as a set; segment_index is the cue's rank by start_s.
type VideoCue struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	VideoRef     string `gorm:"size:64;not null;index"`
	SegmentIndex int    `gorm:"not null"`
	StartS       int    `gorm:"column:start_s;not null"`
	EndS         int    `gorm:"column:end_s;not null"`
	ZoneCode     string `gorm:"size:10;not null"`
	Label        string `gorm:"size:255"`
}

func (VideoCue) TableName() string { return "video_cues" }
