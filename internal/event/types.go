package event

// EventType identifies the kind of an Event
type EventType string

const (
	// SweepResultType payload discovery.ScanResult for every probed port
	SweepResultType EventType = "sweep-result"
	// SweepCompleteType payload *core.SweepReport
	SweepCompleteType EventType = "sweep-complete"
	// OutcomeRecordedType payload *status.Outcome after it is persisted
	OutcomeRecordedType EventType = "outcome-recorded"
	// ErrorEventType payload error
	ErrorEventType EventType = "error"
	// FatalErrorEventType payload error
	FatalErrorEventType EventType = "fatal-error"
)

// Event data structure representing any event we may want to react to
type Event struct {
	Type    EventType
	Payload any
}
