package logging

import (
	"github.com/rs/zerolog"

	"github.com/example/cheatgen/internal/events"
)

// EventHandler returns a bus subscriber that writes each event at debug level.
func EventHandler(logger zerolog.Logger) func(events.Event) {
	return func(e events.Event) {
		logger.Debug().
			Uint64("seq", e.Seq).
			Str("event", string(e.Kind)).
			Str("subject", e.Subject).
			Msg(e.Detail)
	}
}
