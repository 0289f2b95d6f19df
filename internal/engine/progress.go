package engine

import "time"

// Stage is a phase of one document check, in execution order.
type Stage string

const (
	StageLoad     Stage = "load"
	StageScan     Stage = "scan"
	StageValidate Stage = "validate"
	StageContrast Stage = "contrast"
	StageEmit     Stage = "emit"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress of one file; File is empty for run-wide events.
type Event struct {
	File     string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
	Problems int // diagnostics of a finished pass
}

// Final reports whether no more events follow for the file.
func (ev Event) Final() bool {
	return ev.Status == StatusDone || ev.Status == StatusError
}

// ProgressSink consumes events. CheckFiles calls it from several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into Ch; a nil channel drops them.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

func emitProgress(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
