package model

import (
	"encoding/json"
	"fmt"

	"github.com/fitsync/session-service/internal/zone"
)

// EventKind tags relay event payloads on the wire.
type EventKind string

const (
	EventSessionJoin   EventKind = "session.join"
	EventSessionState  EventKind = "session.state"
	EventPlayerControl EventKind = "player.control"
	EventHRUpdate      EventKind = "hr.update"
	EventZoneUpdate    EventKind = "zone.update"
)

// Envelope is the wire frame for every relay event: {"event": ..., "data": ...}.
type Envelope struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event is the closed set of relay payload variants.
type Event interface {
	Kind() EventKind
}

// PlayerAction is a player control verb. Controls are absolute (seek carries
// a position, load carries a videoRef), so receivers tolerate reordering.
type PlayerAction string

const (
	ActionPlay  PlayerAction = "play"
	ActionPause PlayerAction = "pause"
	ActionSeek  PlayerAction = "seek"
	ActionLoad  PlayerAction = "load"
)

// SessionJoinEvent is sent by a client to attach its connection to a room.
type SessionJoinEvent struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

func (SessionJoinEvent) Kind() EventKind { return EventSessionJoin }

// SessionStateEvent acknowledges a join (or rejects a malformed frame).
type SessionStateEvent struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (SessionStateEvent) Kind() EventKind { return EventSessionState }

// PlayerControlEvent is a play/pause/seek/load command. Ephemeral: relayed,
// never persisted, never validated for action legality.
type PlayerControlEvent struct {
	SessionID string       `json:"sessionId"`
	Action    PlayerAction `json:"action"`
	Position  *float64     `json:"position,omitempty"` // seconds, required for seek
	VideoRef  string       `json:"videoRef,omitempty"`  // required for load
	IssuedAt  int64        `json:"issuedAt"`            // unix seconds
}

func (PlayerControlEvent) Kind() EventKind { return EventPlayerControl }

// HRUpdateEvent is one heart-rate telemetry sample. Ephemeral.
type HRUpdateEvent struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	BPM       int    `json:"bpm"`
	T         int64  `json:"t"` // unix seconds
	Device    string `json:"device"`
}

func (HRUpdateEvent) Kind() EventKind { return EventHRUpdate }

// ZoneUpdateEvent pushes a detected zone to the room.
type ZoneUpdateEvent struct {
	ZoneCode   zone.Code `json:"zoneCode"`
	ZoneName   string    `json:"zoneName"`
	Confidence float64   `json:"confidence"`
	Timestamp  string    `json:"timestamp"` // RFC 3339
}

func (ZoneUpdateEvent) Kind() EventKind { return EventZoneUpdate }

// DecodeEvent parses a wire frame into its typed variant. The switch is
// exhaustive over EventKind; anything else is an error.
func DecodeEvent(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Event {
	case EventSessionJoin:
		var e SessionJoinEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return e, nil
	case EventSessionState:
		var e SessionStateEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return e, nil
	case EventPlayerControl:
		var e PlayerControlEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return e, nil
	case EventHRUpdate:
		var e HRUpdateEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return e, nil
	case EventZoneUpdate:
		var e ZoneUpdateEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", env.Event)
	}
}

// EncodeEvent wraps a typed variant into its wire frame.
func EncodeEvent(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Kind(), err)
	}
	return json.Marshal(Envelope{Event: e.Kind(), Data: data})
}
