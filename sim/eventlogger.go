package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints every event before the engine handles
// it. Attach it to an engine with AcceptHook.
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	if named, ok := evt.Handler().(Named); ok {
		h.logger.Printf("%.10f, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), named.Name())
	} else {
		h.logger.Printf("%.10f, %s", evt.Time(), reflect.TypeOf(evt))
	}
}
