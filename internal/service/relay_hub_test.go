package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/model"
)

func newHub() *RelayHub {
	return NewRelayHub(4096, 4096, 0, 16, zap.NewNop())
}

func drain(sub *Subscriber) [][]byte {
	var out [][]byte
	for {
		select {
		case f, ok := <-sub.Send:
			if !ok {
				return out
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := newHub()
	var subs []*Subscriber
	for i := 0; i < 3; i++ {
		sub, _ := h.Join("s1", fmt.Sprintf("u%d", i), nil)
		subs = append(subs, sub)
	}

	h.Publish("s1", model.HRUpdateEvent{SessionID: "s1", UserID: "u0", BPM: 140, T: 1700000000, Device: "watch"})

	for i, sub := range subs {
		got := drain(sub)
		if len(got) != 1 {
			t.Fatalf("subscriber %d received %d frames, want 1", i, len(got))
		}
		var env model.Envelope
		if err := json.Unmarshal(got[0], &env); err != nil {
			t.Fatalf("subscriber %d frame: %v", i, err)
		}
		if env.Event != model.EventHRUpdate {
			t.Errorf("subscriber %d kind = %s", i, env.Event)
		}
	}
}

func TestPublishSenderNotExcluded(t *testing.T) {
	h := newHub()
	sender, _ := h.Join("s1", "sender", nil)
	h.PublishFrame("s1", []byte(`{"event":"hr.update","data":{}}`))
	if got := drain(sender); len(got) != 1 {
		t.Errorf("sender received %d frames, want 1 (sender is not excluded)", len(got))
	}
}

func TestPublishEmptyRoomIsNoOp(t *testing.T) {
	h := newHub()
	// Unknown room, then a room whose only subscriber has left.
	h.PublishFrame("nope", []byte(`{}`))

	sub, subscription := h.Join("s1", "u1", nil)
	subscription.Close()
	h.PublishFrame("s1", []byte(`{}`))
	if got := drain(sub); len(got) != 0 {
		t.Errorf("closed subscriber received %d frames", len(got))
	}
}

func TestPublishIsNotDuplicated(t *testing.T) {
	h := newHub()
	sub, _ := h.Join("s1", "u1", nil)
	h.PublishFrame("s1", []byte(`a`))
	h.PublishFrame("s2", []byte(`other room`))
	if got := drain(sub); len(got) != 1 {
		t.Errorf("received %d frames, want 1", len(got))
	}
}

func TestPerRoomOrdering(t *testing.T) {
	h := newHub()
	sub, _ := h.Join("s1", "u1", nil)
	want := 16
	for i := 0; i < want; i++ {
		h.PublishFrame("s1", []byte(fmt.Sprintf("%d", i)))
	}
	got := drain(sub)
	if len(got) != want {
		t.Fatalf("received %d frames, want %d", len(got), want)
	}
	for i, f := range got {
		if string(f) != fmt.Sprintf("%d", i) {
			t.Fatalf("frame %d = %s, out of order", i, f)
		}
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	h := newHub()
	_, subscription := h.Join("s1", "u1", nil)
	subscription.Close()
	subscription.Close() // second close must not panic

	if n := h.RoomSize("s1"); n != 0 {
		t.Errorf("room size = %d after close, want 0", n)
	}
}

func TestRoomSize(t *testing.T) {
	h := newHub()
	_, c1 := h.Join("s1", "u1", nil)
	_, _ = h.Join("s1", "u2", nil)
	if n := h.RoomSize("s1"); n != 2 {
		t.Errorf("room size = %d, want 2", n)
	}
	c1.Close()
	if n := h.RoomSize("s1"); n != 1 {
		t.Errorf("room size = %d after one close, want 1", n)
	}
	if n := h.RoomSize("unknown"); n != 0 {
		t.Errorf("unknown room size = %d, want 0", n)
	}
}

func TestSlowSubscriberDropsSilently(t *testing.T) {
	h := NewRelayHub(4096, 4096, 0, 2, zap.NewNop())
	sub, _ := h.Join("s1", "slow", nil)
	for i := 0; i < 10; i++ {
		h.PublishFrame("s1", []byte(`x`))
	}
	// Buffer holds 2; the rest were dropped without error.
	if got := drain(sub); len(got) != 2 {
		t.Errorf("received %d frames, want 2", len(got))
	}
}

func TestCloseSessionDropsRoom(t *testing.T) {
	h := newHub()
	sub, _ := h.Join("s1", "u1", nil)
	h.CloseSession("s1")
	if n := h.RoomSize("s1"); n != 0 {
		t.Errorf("room size = %d after CloseSession, want 0", n)
	}
	if _, ok := <-sub.Send; ok {
		t.Error("send channel still open after CloseSession")
	}
	// Publishing afterwards is a no-op.
	h.PublishFrame("s1", []byte(`x`))
}

func TestRoomsAreIndependent(t *testing.T) {
	h := newHub()
	a, _ := h.Join("room-a", "u1", nil)
	b, _ := h.Join("room-b", "u1", nil)
	h.PublishFrame("room-a", []byte(`a`))
	if got := drain(b); len(got) != 0 {
		t.Errorf("room-b received %d frames from room-a", len(got))
	}
	if got := drain(a); len(got) != 1 {
		t.Errorf("room-a received %d frames, want 1", len(got))
	}
}
