package event

import (
	"sync"

	"github.com/robgonnella/fleetprobe/internal/logger"
)

// QueueSize number of undelivered events held per listener before new
// events for that listener are dropped
const QueueSize = 1024

type listener struct {
	eventType EventType
	ch        chan Event
	queue     chan Event
	done      chan struct{}
	stopped   chan struct{}
}

// forward delivers queued events to the listener channel in send order.
// Once done is closed it hands over what the channel can take without
// blocking and exits.
func (l *listener) forward() {
	defer close(l.stopped)

	for {
		select {
		case <-l.done:
			l.flush()
			return
		case evt := <-l.queue:
			select {
			case l.ch <- evt:
			case <-l.done:
				select {
				case l.ch <- evt:
					l.flush()
				default:
				}

				return
			}
		}
	}
}

func (l *listener) flush() {
	for {
		select {
		case evt := <-l.queue:
			select {
			case l.ch <- evt:
			default:
				return
			}
		default:
			return
		}
	}
}

// EventManager implements the Manager interface
type EventManager struct {
	listeners map[int]*listener
	nextID    int
	mux       sync.RWMutex
	log       logger.Logger
}

// NewEventManager returns a new instance of EventManager
func NewEventManager() *EventManager {
	return &EventManager{
		listeners: map[int]*listener{},
		log:       logger.New(),
	}
}

// RegisterListener registers a channel to receive events of eventType and
// returns the listener id
func (m *EventManager) RegisterListener(eventType EventType, ch chan Event) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.nextID++

	l := &listener{
		eventType: eventType,
		ch:        ch,
		queue:     make(chan Event, QueueSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	m.listeners[m.nextID] = l

	go l.forward()

	return m.nextID
}

// RemoveListener unregisters a listener and returns its id. Queued events
// are handed to the channel only while it has room, and nothing is
// delivered once RemoveListener returns.
func (m *EventManager) RemoveListener(id int) int {
	m.mux.Lock()
	l, ok := m.listeners[id]
	delete(m.listeners, id)
	m.mux.Unlock()

	if ok {
		close(l.done)
		<-l.stopped
	}

	return id
}

// Send queues event for every listener of its type without blocking the
// sender
func (m *EventManager) Send(event Event) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	for id, l := range m.listeners {
		if l.eventType != event.Type {
			continue
		}

		select {
		case l.queue <- event:
		default:
			m.log.Debug().
				Int("listener", id).
				Str("type", string(event.Type)).
				Msg("listener queue full, dropping event")
		}
	}
}

// ReportFatalError sends a FatalErrorEventType event
func (m *EventManager) ReportFatalError(err error) {
	m.Send(Event{Type: FatalErrorEventType, Payload: err})
}

// ReportError sends an ErrorEventType event
func (m *EventManager) ReportError(err error) {
	m.Send(Event{Type: ErrorEventType, Payload: err})
}
