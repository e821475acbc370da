package commands

import (
	"io"

	"github.com/robgonnella/fleetprobe/internal/event"
)

// follow prints events of eventType as they arrive. The returned function
// unregisters the listener, prints what was already delivered and returns
// once nothing more will be written to out.
func follow(
	events event.Manager,
	eventType event.EventType,
	out io.Writer,
	print func(out io.Writer, evt event.Event),
) func() {
	listener := make(chan event.Event, 100)
	done := make(chan struct{})
	finished := make(chan struct{})

	id := events.RegisterListener(eventType, listener)

	go func() {
		defer close(finished)

		for {
			select {
			case <-done:
				for {
					select {
					case evt := <-listener:
						print(out, evt)
					default:
						return
					}
				}
			case evt := <-listener:
				print(out, evt)
			}
		}
	}()

	return func() {
		events.RemoveListener(id)
		close(done)
		<-finished
	}
}
