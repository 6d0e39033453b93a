package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// DefaultRecordingMime labels recorded uploads whose capture layer did not
// declare a container; it matches what the backend's converter expects by
// default.
const DefaultRecordingMime = "audio/webm"

// A Submission is one unit of user input bound for the backend. Exactly one
// variant exists per user action; it is consumed once by Client.Submit and
// then discarded.
type Submission interface {
	Route() string
	writeForm(w *multipart.Writer) error
	failureMessage() string
}

// TextSubmission carries typed English text.
type TextSubmission struct {
	Text string
}

func (s TextSubmission) Route() string { return "/process_text" }

func (s TextSubmission) writeForm(w *multipart.Writer) error {
	return w.WriteField("text", s.Text)
}

func (s TextSubmission) failureMessage() string {
	return "Error translating text. Please try again."
}

// FileSubmission carries a user-chosen audio file.
type FileSubmission struct {
	Name   string
	Reader io.Reader
}

func (s FileSubmission) Route() string { return "/process_audio" }

func (s FileSubmission) writeForm(w *multipart.Writer) error {
	name := s.Name
	if name == "" {
		name = "audio"
	}
	part, err := w.CreateFormFile("audio", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, s.Reader); err != nil {
		return fmt.Errorf("reading audio file: %w", err)
	}
	return nil
}

func (s FileSubmission) failureMessage() string {
	return "Error processing audio file. Please try again."
}

// RecordingSubmission carries the finalized bytes of one capture session.
type RecordingSubmission struct {
	Bytes    []byte
	MimeType string
}

func (s RecordingSubmission) Route() string { return "/record_audio" }

func (s RecordingSubmission) writeForm(w *multipart.Writer) error {
	mime := s.MimeType
	if mime == "" {
		mime = DefaultRecordingMime
	}
	ext := "webm"
	if i := strings.LastIndex(mime, "/"); i >= 0 && i+1 < len(mime) {
		ext = mime[i+1:]
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="audio"; filename="recording.%s"`, ext))
	hdr.Set("Content-Type", mime)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return err
	}
	_, err = part.Write(s.Bytes)
	return err
}

func (s RecordingSubmission) failureMessage() string {
	return "Error processing recording. Please try again."
}
