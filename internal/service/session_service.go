package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitsync/session-service/internal/errs"
	"github.com/fitsync/session-service/internal/model"
	"github.com/fitsync/session-service/internal/parser"
	"github.com/fitsync/session-service/internal/zone"
)

// defaultHost is used when a create request does not name a host.
const defaultHost = "default-host"

// SessionService manages training session rooms and their cue sheets.
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a session service.
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// Create creates a new session in waiting status. There is no uniqueness
// constraint on videoRef; several sessions may share a video.
func (s *SessionService) Create(videoRef, title, hostUserID string) (*model.Session, error) {
	if hostUserID == "" {
		hostUserID = defaultHost
	}
	ent := &model.TrainingSession{
		ID:         uuid.New().String(),
		HostUserID: hostUserID,
		VideoRef:   videoRef,
		Title:      title,
		Status:     string(model.SessionStatusWaiting),
	}
	if err := s.db.Create(ent).Error; err != nil {
		return nil, err
	}
	return entityToSession(ent), nil
}

// Get returns a session with its members.
func (s *SessionService) Get(sessionID string) (*model.Session, error) {
	var ent model.TrainingSession
	if err := s.db.Preload("Members").Where("id = ?", sessionID).First(&ent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, err
	}
	return entityToSession(&ent), nil
}

// Join records a membership. Idempotent: re-joining the same (session, user)
// refreshes role and joinedAt instead of creating a duplicate row.
func (s *SessionService) Join(sessionID, userID string, role model.MemberRole) error {
	if role == "" {
		role = model.RoleParticipant
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sess model.TrainingSession
		if err := tx.Select("id").Where("id = ?", sessionID).First(&sess).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrSessionNotFound
			}
			return err
		}
		now := time.Now()
		var member model.SessionMember
		err := tx.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&member).Error
		switch {
		case err == nil:
			return tx.Model(&member).Updates(map[string]interface{}{
				"role":      string(role),
				"joined_at": now,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&model.SessionMember{
				ID:        uuid.New().String(),
				SessionID: sessionID,
				UserID:    userID,
				Role:      string(role),
				JoinedAt:  now,
			}).Error
		default:
			return err
		}
	})
}

// ListCues returns the cue sheet for the session's video, ordered by start
// time. An unknown session or a video without cues yields an empty slice,
// not an error.
func (s *SessionService) ListCues(sessionID string) ([]model.Cue, error) {
	var sess model.TrainingSession
	if err := s.db.Select("id", "video_ref").Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.Cue{}, nil
		}
		return nil, err
	}
	var rows []model.VideoCue
	if err := s.db.Where("video_ref = ?", sess.VideoRef).Order("start_s asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	cues := make([]model.Cue, 0, len(rows))
	for _, r := range rows {
		cues = append(cues, cueFromRow(r))
	}
	return cues, nil
}

// ReplaceCues atomically swaps the stored cue sheet for a video: all prior
// cues are deleted and the new set inserted in one transaction, or neither.
func (s *SessionService) ReplaceCues(videoRef string, entries []parser.Entry) ([]model.Cue, error) {
	cues := make([]model.Cue, 0, len(entries))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_ref = ?", videoRef).Delete(&model.VideoCue{}).Error; err != nil {
			return err
		}
		for i, e := range entries {
			row := model.VideoCue{
				ID:           uuid.New().String(),
				VideoRef:     videoRef,
				SegmentIndex: i,
				StartS:       e.StartS,
				EndS:         e.EndS,
				ZoneCode:     string(e.Zone),
				Label:        e.Label,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			cues = append(cues, cueFromRow(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cues, nil
}

func cueFromRow(r model.VideoCue) model.Cue {
	return model.Cue{
		VideoRef:     r.VideoRef,
		SegmentIndex: r.SegmentIndex,
		StartS:       r.StartS,
		EndS:         r.EndS,
		ZoneCode:     zone.Code(r.ZoneCode),
		Label:        r.Label,
	}
}

func entityToSession(ent *model.TrainingSession) *model.Session {
	sess := &model.Session{
		ID:         ent.ID,
		HostUserID: ent.HostUserID,
		VideoRef:   ent.VideoRef,
		Title:      ent.Title,
		Status:     model.SessionStatus(ent.Status),
		Members:    make([]model.Member, 0, len(ent.Members)),
		CreatedAt:  ent.CreatedAt,
	}
	for _, m := range ent.Members {
		sess.Members = append(sess.Members, model.Member{
			UserID:   m.UserID,
			Role:     model.MemberRole(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return sess
}
