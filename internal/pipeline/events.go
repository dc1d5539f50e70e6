// Package pipeline defines the progress events the lint driver emits while
// working through files. Consumers (the terminal UI, plain loggers) receive
// them through a Sink; the driver never blocks on a nil sink.
package pipeline

import "time"

// Stage describes a per-file lint phase.
type Stage string

const (
	// StageLoad is reading and normalizing the file.
	StageLoad Stage = "load"
	// StageParse is parsing the SDL text.
	StageParse Stage = "parse"
	// StageLint is running the rules.
	StageLint Stage = "lint"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished cleanly.
	StatusDone Status = "done"
	// StatusError indicates the file finished with error diagnostics.
	StatusError Status = "error"
	// StatusCached indicates the result was rehydrated from the disk cache.
	StatusCached Status = "cached"
)

// Event reports progress for one file (or for the run as a whole when File
// is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// Emit sends an event when the sink is non-nil.
func Emit(sink Sink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
