package broadcast

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func testHub() *Hub {
	return NewHub(zerolog.Nop())
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	h := testHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(map[string]any{"amount": 500})

	for _, s := range []*Subscriber{a, b} {
		select {
		case msg := <-s.C:
			var payload map[string]any
			if err := json.Unmarshal(msg, &payload); err != nil {
				t.Fatalf("unmarshal broadcast message: %v", err)
			}
			if payload["amount"] != float64(500) {
				t.Fatalf("unexpected amount: %#v", payload["amount"])
			}
		default:
			t.Fatal("subscriber did not receive the message")
		}
	}
}

func TestLateSubscriberGetsNoBacklog(t *testing.T) {
	h := testHub()
	h.Publish(map[string]any{"amount": 100})

	late := h.Subscribe()
	select {
	case msg := <-late.C:
		t.Fatalf("late subscriber received replayed message: %s", msg)
	default:
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	h := testHub()
	s := h.Subscribe()

	// One more than the buffer; the overflow must be dropped, not block.
	for i := 0; i <= subscriberBuffer; i++ {
		h.Publish(map[string]int{"seq": i})
	}
	if got := len(s.C); got != subscriberBuffer {
		t.Fatalf("expected %d buffered messages, got %d", subscriberBuffer, got)
	}
}

func TestPublishPreservesPerSubscriberOrder(t *testing.T) {
	h := testHub()
	s := h.Subscribe()
	for i := 0; i < 5; i++ {
		h.Publish(map[string]int{"seq": i})
	}
	for i := 0; i < 5; i++ {
		var payload map[string]int
		if err := json.Unmarshal(<-s.C, &payload); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if payload["seq"] != i {
			t.Fatalf("out of order: got seq %d at position %d", payload["seq"], i)
		}
	}
}

func TestUnsubscribeClosesChannelAndStopsDelivery(t *testing.T) {
	h := testHub()
	s := h.Subscribe()
	h.Unsubscribe(s)

	if _, open := <-s.C; open {
		t.Fatal("channel still open after Unsubscribe")
	}
	if h.Len() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", h.Len())
	}
	// Publishing after removal must not panic on the closed channel.
	h.Publish(map[string]int{"seq": 1})
}
