package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"signbridge/log"
	"signbridge/recorder"
	"signbridge/upload"
)

type submitter interface {
	Submit(ctx context.Context, sub upload.Submission)
}

// Dispatcher maps user actions to submissions. Blank input is the user
// backing out, not an error, so it goes nowhere silently. Each accepted
// action runs on its own goroutine; nothing here blocks the UI loop.
type Dispatcher struct {
	uploads  submitter
	recorder *recorder.Controller
	notifier upload.Notifier
}

func NewDispatcher(uploads submitter, rec *recorder.Controller, notifier upload.Notifier) *Dispatcher {
	return &Dispatcher{uploads: uploads, recorder: rec, notifier: notifier}
}

// SubmitText sends typed text for translation. Blank or whitespace-only
// text is dropped without a request or a notification.
func (d *Dispatcher) SubmitText(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	go d.uploads.Submit(ctx, upload.TextSubmission{Text: text})
}

// SubmitFile sends a chosen audio file. An empty path means nothing was
// chosen and is dropped silently; a path that cannot be opened is reported.
func (d *Dispatcher) SubmitFile(ctx context.Context, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("opening audio file: %v", err)
		d.notifier.Notify("Could not open audio file: " + filepath.Base(path))
		return
	}
	go func() {
		defer f.Close()
		d.uploads.Submit(ctx, upload.FileSubmission{
			Name:   filepath.Base(path),
			Reader: f,
		})
	}()
}

// ToggleRecording starts a capture session, or stops the one underway.
func (d *Dispatcher) ToggleRecording(ctx context.Context) {
	if d.recorder.State() == recorder.StateRecording {
		go func() {
			if err := d.recorder.Stop(ctx); err != nil {
				log.Errorf("stopping recording: %v", err)
			}
		}()
		return
	}
	go func() {
		err := d.recorder.Start(ctx)
		if err != nil && !errors.Is(err, recorder.ErrBusy) {
			// Permission denials already notified by the controller.
			log.Errorf("starting recording: %v", err)
		}
	}()
}
