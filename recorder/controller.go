// Package recorder drives the live microphone capture session: permission,
// chunk accumulation, the elapsed-time display, and hand-off of the
// finalized audio to the upload layer.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signbridge/audio"
	"signbridge/encoder"
	"signbridge/log"
	"signbridge/upload"
)

// State is the capture session phase.
type State int

const (
	StateIdle State = iota
	StateRequestingPermission
	StateRecording
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingPermission:
		return "requesting-permission"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// ErrBusy is returned by Start while a session is already underway.
var ErrBusy = errors.New("recording session already in progress")

const permissionDeniedMsg = "Microphone access denied. Check your audio permissions."

// EventSink receives session lifecycle events for display.
type EventSink interface {
	RecordingStarted()
	RecordingTick(elapsed string)
	RecordingStopped()
}

// Uploader receives the finalized recording.
type Uploader interface {
	Submit(ctx context.Context, sub upload.Submission)
}

// Notifier receives user-facing error messages.
type Notifier interface {
	Notify(text string)
}

// Controller owns one capture device and runs at most one session at a
// time. Start and Stop are safe to call from any goroutine.
type Controller struct {
	device     audio.CaptureDevice
	uploader   Uploader
	notifier   Notifier
	sink       EventSink
	format     string
	sampleRate int

	mu     sync.Mutex
	state  State
	chunks [][]byte
	origin time.Time
	timer  *sessionTimer
}

func NewController(device audio.CaptureDevice, uploader Uploader, notifier Notifier, sink EventSink, format string, sampleRate int) *Controller {
	return &Controller{
		device:     device,
		uploader:   uploader,
		notifier:   notifier,
		sink:       sink,
		format:     format,
		sampleRate: sampleRate,
	}
}

// State returns the current session phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a capture session. It requests the device, and on denial
// notifies the user and returns to idle without creating a session. Returns
// ErrBusy if a session is already underway.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateRequestingPermission
	c.chunks = nil
	c.mu.Unlock()

	c.device.SetCallback(c.onChunk)
	if err := c.device.Start(); err != nil {
		c.device.ClearCallback()
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		log.Errorf("capture start: %v", err)
		c.notifier.Notify(permissionDeniedMsg)
		return fmt.Errorf("starting capture: %w", err)
	}

	c.mu.Lock()
	c.state = StateRecording
	c.origin = time.Now()
	c.timer = startSessionTimer(c.origin, c.sink.RecordingTick)
	c.mu.Unlock()

	log.Info("recording started on " + c.device.DeviceName())
	c.sink.RecordingStarted()
	return nil
}

// Stop ends the session: the timer is cancelled, the device released, and
// the accumulated chunks are encoded and handed to the uploader. The
// display resets immediately; the upload settles on its own. Calling Stop
// outside a recording session is a no-op.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return nil
	}
	c.state = StateStopping
	timer := c.timer
	c.timer = nil
	c.mu.Unlock()

	timer.Stop()
	// Blocks until the device confirms; chunk delivery is drained by then.
	c.device.Stop()
	c.device.ClearCallback()

	c.mu.Lock()
	chunks := c.chunks
	elapsed := time.Since(c.origin)
	c.state = StateIdle
	c.mu.Unlock()

	c.sink.RecordingStopped()
	log.Info(fmt.Sprintf("recording stopped after %s, %d chunks", FormatElapsed(elapsed), len(chunks)))

	sub, err := c.finalize(chunks)
	if err != nil {
		log.Errorf("encoding recording: %v", err)
		c.notifier.Notify("Error processing recording. Please try again.")
		return err
	}
	c.uploader.Submit(ctx, sub)
	return nil
}

// onChunk runs on the capture thread. Chunks arriving while the session is
// winding down still belong to it; only idle-state delivery is discarded.
func (c *Controller) onChunk(pcm []byte, frames uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		return
	}
	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	c.chunks = append(c.chunks, buf)
}

func (c *Controller) finalize(chunks [][]byte) (upload.Submission, error) {
	enc, err := encoder.New(c.format, c.sampleRate)
	if err != nil {
		return nil, err
	}
	for _, chunk := range chunks {
		if err := enc.EncodeChunk(chunk); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return upload.RecordingSubmission{
		Bytes:    enc.Bytes(),
		MimeType: enc.MimeType(),
	}, nil
}
