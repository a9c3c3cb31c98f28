package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan LevelChangedEvent, 1)

	unsub := bus.Subscribe(func(e LevelChangedEvent) {
		received <- e
	})
	defer unsub()

	ev := LevelChangedEvent{
		Component: "COMPONENT_NFSPROTO",
		Old:       "NIV_EVENT",
		New:       "NIV_FULL_DEBUG",
		Source:    "api",
		Timestamp: "2026-08-24T10:30:00Z",
	}
	bus.Publish(ev)

	got := <-received
	if got.Component != ev.Component {
		t.Errorf("Expected component %s, got %s", ev.Component, got.Component)
	}
	if got.New != ev.New {
		t.Errorf("Expected new level %s, got %s", ev.New, got.New)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan FacilityChangedEvent, 1)
	received2 := make(chan FacilityChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e FacilityChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e FacilityChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(FacilityChangedEvent{Facility: "FILE", Action: "enabled"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan FacilityChangedEvent, 1)

	unsub := bus.Subscribe(func(e FacilityChangedEvent) {
		received <- e
	})

	bus.Publish(FacilityChangedEvent{Facility: "STDERR", Action: "disabled"})
	<-received

	unsub()

	bus.Publish(FacilityChangedEvent{Facility: "STDOUT", Action: "enabled"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	levelReceived := make(chan bool, 1)
	facilityReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ LevelChangedEvent) {
		levelReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ FacilityChangedEvent) {
		facilityReceived <- true
	})
	defer unsub2()

	bus.Publish(LevelChangedEvent{Component: "COMPONENT_ALL"})
	<-levelReceived

	select {
	case <-facilityReceived:
		t.Fatal("Facility subscriber should not receive level events")
	case <-time.After(10 * time.Millisecond):
		// Expected - no cross-type delivery
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(int) {})
	// Unknown handler types get a no-op unsubscriber.
	unsub()
	if unsub == nil {
		t.Fatal("Subscribe should never return nil")
	}
}
