package event_test

import (
	"errors"
	"testing"
	"time"

	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/stretchr/testify/assert"
)

func TestEventManager(t *testing.T) {
	t.Run("registers event listener and sends event", func(st *testing.T) {
		eventManager := event.NewEventManager()

		listener := make(chan event.Event)

		eventManager.RegisterListener(event.OutcomeRecordedType, listener)

		eventManager.Send(event.Event{
			Type:    "a-different-type",
			Payload: struct{}{},
		})

		eventManager.Send(event.Event{
			Type:    event.OutcomeRecordedType,
			Payload: true,
		})

		result := <-listener

		assert.Equal(st, event.OutcomeRecordedType, result.Type)
		assert.Equal(st, true, result.Payload)
	})

	t.Run("removes event listener", func(st *testing.T) {
		eventManager := event.NewEventManager()

		listener := make(chan event.Event, 1)

		id := eventManager.RegisterListener(event.SweepResultType, listener)

		removedID := eventManager.RemoveListener(id)

		assert.Equal(st, id, removedID)

		eventManager.Send(event.Event{Type: event.SweepResultType})

		select {
		case <-listener:
			st.Error("received event after listener was removed")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("reports fatal error event", func(st *testing.T) {
		eventManager := event.NewEventManager()

		listener := make(chan event.Event)

		eventManager.RegisterListener(event.FatalErrorEventType, listener)

		eventManager.Send(event.Event{
			Type:    "a-different-type",
			Payload: struct{}{},
		})

		eventManager.ReportFatalError(errors.New("fatal test error"))

		result := <-listener

		assert.Equal(st, event.FatalErrorEventType, result.Type)
		assert.EqualError(st, result.Payload.(error), "fatal test error")
	})

	t.Run("reports error event", func(st *testing.T) {
		eventManager := event.NewEventManager()

		listener := make(chan event.Event)

		eventManager.RegisterListener(event.ErrorEventType, listener)

		eventManager.ReportError(errors.New("test error"))

		result := <-listener

		assert.Equal(st, event.ErrorEventType, result.Type)
	})

	t.Run("delivers events in send order", func(st *testing.T) {
		eventManager := event.NewEventManager()

		listener := make(chan event.Event)

		id := eventManager.RegisterListener(event.SweepResultType, listener)

		defer eventManager.RemoveListener(id)

		for i := 0; i < 500; i++ {
			eventManager.Send(event.Event{Type: event.SweepResultType, Payload: i})
		}

		for i := 0; i < 500; i++ {
			result := <-listener
			assert.Equal(st, i, result.Payload)
		}
	})

	t.Run("does not block sender when listener stops reading", func(st *testing.T) {
		eventManager := event.NewEventManager()

		listener := make(chan event.Event)

		id := eventManager.RegisterListener(event.SweepResultType, listener)

		sent := make(chan struct{})

		go func() {
			for i := 0; i < event.QueueSize*2; i++ {
				eventManager.Send(event.Event{Type: event.SweepResultType, Payload: i})
			}

			close(sent)
		}()

		select {
		case <-sent:
		case <-time.After(2 * time.Second):
			st.Fatal("send blocked on an unread listener")
		}

		removed := make(chan struct{})

		go func() {
			eventManager.RemoveListener(id)
			close(removed)
		}()

		select {
		case <-removed:
		case <-time.After(2 * time.Second):
			st.Fatal("remove blocked on pending delivery")
		}

		select {
		case <-listener:
			st.Error("received event after listener was removed")
		case <-time.After(50 * time.Millisecond):
		}
	})
}

