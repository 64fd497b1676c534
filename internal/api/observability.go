package api

import "github.com/rs/zerolog"

// CallEvent records metadata about one backend request.
type CallEvent struct {
	Operation string
	LatencyMs int64
	Status    int
	Success   bool
	Err       string
}

// Observer receives events about backend calls for logging.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes backend call events through a zerolog logger.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates an Observer logging to the given logger.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ev := o.log.Debug()
	if !event.Success {
		ev = o.log.Warn().Str("error", event.Err)
	}
	ev.Str("op", event.Operation).
		Int("status", event.Status).
		Int64("latency_ms", event.LatencyMs).
		Msg("backend call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
