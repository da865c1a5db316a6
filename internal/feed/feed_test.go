package feed

import (
	"bytes"
	"strings"
	"testing"

	"habitsync/internal/models"
)

func TestPublishReachesOnlyThatUser(t *testing.T) {
	b := NewBroker()
	alice, unsubA := b.Subscribe("alice")
	defer unsubA()
	bob, unsubB := b.Subscribe("bob")
	defer unsubB()

	b.Publish("alice", []models.Habit{{ID: "h1", Name: "Read"}})

	select {
	case e := <-alice:
		if e.Type != EventSnapshot || len(e.Habits) != 1 || e.Habits[0].ID != "h1" {
			t.Errorf("unexpected event: %+v", e)
		}
	default:
		t.Fatal("alice did not receive the snapshot")
	}

	select {
	case e := <-bob:
		t.Errorf("bob should not receive alice's snapshot, got %+v", e)
	default:
	}
}

func TestPublishNeverBlocksAndKeepsLatest(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("u")
	defer unsub()

	for i := 0; i < bufferSize*3; i++ {
		b.Publish("u", []models.Habit{{Name: strings.Repeat("x", i+1)}})
	}

	var last Event
	for len(ch) > 0 {
		last = <-ch
	}
	if got := len(last.Habits[0].Name); got != bufferSize*3 {
		t.Errorf("expected latest snapshot to survive, got name length %d", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker()
	_, unsub := b.Subscribe("u")
	if b.SubscriberCount("u") != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	unsub()
	unsub()
	if b.SubscriberCount("u") != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe")
	}
	b.Publish("u", nil)
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvent(&buf, 3, Event{Type: EventSnapshot, Timestamp: "t"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "id: 3\nevent: habits\ndata: {") || !strings.HasSuffix(out, "\n\n") {
		t.Errorf("unexpected framing: %q", out)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("u")

	b.Close()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after Close")
	}
	unsub()
	b.Publish("u", []models.Habit{{ID: "h1"}})
	b.Close()

	late, _ := b.Subscribe("u")
	if _, ok := <-late; ok {
		t.Error("subscribing after Close should yield a closed channel")
	}
	if n := b.SubscriberCount("u"); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}
