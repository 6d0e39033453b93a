package main

import (
	"signbridge/notify"
	"signbridge/render"
)

// EventSink abstracts the display layer so the core packages never talk to
// Bubble Tea directly.
type EventSink interface {
	RecordingStarted()
	RecordingTick(elapsed string)
	RecordingStopped()
	BusyChanged(visible bool, inflight int)
	NoticesChanged(notices []notify.Notice)
	ResultRendered(view render.ResultsView)
}

// tuiSink forwards events to the running TUI program.
type tuiSink struct{}

func (tuiSink) RecordingStarted() { tuiSend(RecordingStartMsg{}) }

func (tuiSink) RecordingTick(elapsed string) { tuiSend(RecordingTickMsg{Elapsed: elapsed}) }

func (tuiSink) RecordingStopped() { tuiSend(RecordingStopMsg{}) }

func (tuiSink) BusyChanged(visible bool, inflight int) {
	tuiSend(BusyMsg{Visible: visible, InFlight: inflight})
}

func (tuiSink) NoticesChanged(notices []notify.Notice) {
	tuiSend(NoticesMsg{Notices: notices})
}

func (tuiSink) ResultRendered(view render.ResultsView) {
	tuiSend(ResultMsg{View: view})
}
