package history

import (
	"fmt"
	"time"

	"github.com/robgonnella/fleetprobe/internal/exception"
)

// Window a half-open time range [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate returns ErrInvalidWindow unless End is after Start
func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf(
			"%w: end %s is not after start %s",
			exception.ErrInvalidWindow,
			w.End.Format(time.RFC3339),
			w.Start.Format(time.RFC3339),
		)
	}

	return nil
}

// Contains reports whether ts falls inside the window
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// NewWindow computes a window from optional start and end times and a
// number of days:
//   - start and end: used as given, days must be 0
//   - start and days: end is start plus days
//   - end and days: start is end minus days
//   - days only: the days leading up to now
//   - nothing: everything before now
func NewWindow(start, end *time.Time, days int, now time.Time) (Window, error) {
	if days < 0 {
		return Window{}, fmt.Errorf("%w: days cannot be negative", exception.ErrInvalidWindow)
	}

	span := time.Duration(days) * 24 * time.Hour

	var w Window

	switch {
	case start != nil && end != nil:
		if days != 0 {
			return Window{}, fmt.Errorf(
				"%w: days cannot be combined with start and end",
				exception.ErrInvalidWindow,
			)
		}

		w = Window{Start: *start, End: *end}
	case start != nil:
		w = Window{Start: *start, End: now}

		if days > 0 {
			w.End = start.Add(span)
		}
	case end != nil:
		w = Window{Start: time.Unix(0, 0), End: *end}

		if days > 0 {
			w.Start = end.Add(-span)
		}
	case days > 0:
		w = Window{Start: now.Add(-span), End: now}
	default:
		w = Window{Start: time.Unix(0, 0), End: now}
	}

	if err := w.Validate(); err != nil {
		return Window{}, err
	}

	return w, nil
}
