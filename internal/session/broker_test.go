package session_test

import (
	"testing"

	"github.com/seantiz/benchtop/internal/session"
)

func TestBrokerSingleSubscriber(t *testing.T) {
	b := session.NewBroker()
	ch, unsub := b.Subscribe("r1")
	defer unsub()

	for _, completed := range []float64{25, 50, 100} {
		b.Publish("r1", session.Event{RunID: "r1", Completed: completed})
	}
	b.Close("r1")

	var got []session.Event
	for ev := range ch {
		got = append(got, ev)
	}

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	want := []float64{25, 50, 100}
	for i, ev := range got {
		if ev.Completed != want[i] {
			t.Errorf("event[%d].Completed = %v, want %v", i, ev.Completed, want[i])
		}
		if ev.RunID != "r1" {
			t.Errorf("event[%d].RunID = %q, want %q", i, ev.RunID, "r1")
		}
	}
}

func TestBrokerMultipleSubscribers(t *testing.T) {
	b := session.NewBroker()
	ch1, unsub1 := b.Subscribe("r1")
	defer unsub1()
	ch2, unsub2 := b.Subscribe("r1")
	defer unsub2()

	b.Publish("r1", session.Event{RunID: "r1", Completed: 42})
	b.Close("r1")

	var got1, got2 []session.Event
	for ev := range ch1 {
		got1 = append(got1, ev)
	}
	for ev := range ch2 {
		got2 = append(got2, ev)
	}

	if len(got1) != 1 || got1[0].Completed != 42 {
		t.Errorf("subscriber 1 got %v, want one event at 42", got1)
	}
	if len(got2) != 1 || got2[0].Completed != 42 {
		t.Errorf("subscriber 2 got %v, want one event at 42", got2)
	}
}

func TestBrokerCloseClosesChannels(t *testing.T) {
	b := session.NewBroker()
	ch, unsub := b.Subscribe("r1")
	defer unsub()

	b.Close("r1")

	_, ok := <-ch
	if ok {
		t.Error("channel should be closed after Close()")
	}
}

func TestBrokerLateSubscriberGetsClosed(t *testing.T) {
	b := session.NewBroker()
	b.Publish("r1", session.Event{RunID: "r1", Completed: 10})
	b.Close("r1")

	// Subscribe after Close — should get a closed channel.
	ch, unsub := b.Subscribe("r1")
	defer unsub()

	_, ok := <-ch
	if ok {
		t.Error("late subscriber should get a closed channel")
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := session.NewBroker()
	ch, unsub := b.Subscribe("r1")
	unsub()

	b.Publish("r1", session.Event{RunID: "r1", Completed: 99})
	b.Close("r1")

	select {
	case ev, ok := <-ch:
		if ok {
			t.Errorf("got unexpected event %v after unsubscribe", ev)
		}
	default:
		// No data — expected.
	}
}

func TestBrokerPublishToUnknownRunIsNoop(t *testing.T) {
	b := session.NewBroker()
	// Should not panic.
	b.Publish("nonexistent", session.Event{})
	b.Close("nonexistent")
}

func TestBrokerLateSubscriberMissesEarlierEvents(t *testing.T) {
	b := session.NewBroker()
	ch1, unsub1 := b.Subscribe("r1")
	defer unsub1()

	b.Publish("r1", session.Event{RunID: "r1", Completed: 10})

	ch2, unsub2 := b.Subscribe("r1")
	defer unsub2()

	b.Publish("r1", session.Event{RunID: "r1", Completed: 20})
	b.Close("r1")

	var got1, got2 []session.Event
	for ev := range ch1 {
		got1 = append(got1, ev)
	}
	for ev := range ch2 {
		got2 = append(got2, ev)
	}

	if len(got1) != 2 {
		t.Errorf("subscriber 1 got %d events, want 2", len(got1))
	}
	if len(got2) != 1 || got2[0].Completed != 20 {
		t.Errorf("late subscriber got %v, want the second event only", got2)
	}
}
