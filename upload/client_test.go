package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureRenderer struct {
	mu       sync.Mutex
	payloads []ResultPayload
}

func (r *captureRenderer) Render(p ResultPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
}

func (r *captureRenderer) rendered() []ResultPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ResultPayload(nil), r.payloads...)
}

type captureNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *captureNotifier) Notify(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

func (n *captureNotifier) notices() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

func successJSON(english, isl, video string) string {
	return fmt.Sprintf(`{"status":"success","english_text":%q,"isl_text":%q,"video_path":%q}`,
		english, isl, video)
}

func TestSubmitTextSuccess(t *testing.T) {
	var requests int
	var gotPath, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotText = r.FormValue("text")
		io.WriteString(w, successJSON("hello world", "HELLO WORLD", "signs/hello.mp4"))
	}))
	defer srv.Close()

	render := &captureRenderer{}
	notify := &captureNotifier{}
	client := NewClient(srv.URL, 5*time.Second, NewIndicator(nil), render, notify)

	client.Submit(context.Background(), TextSubmission{Text: "hello world"})

	if requests != 1 {
		t.Fatalf("requests = %d, want 1", requests)
	}
	if gotPath != "/process_text" {
		t.Errorf("path = %q, want /process_text", gotPath)
	}
	if gotText != "hello world" {
		t.Errorf("text field = %q, want %q", gotText, "hello world")
	}
	got := render.rendered()
	if len(got) != 1 {
		t.Fatalf("rendered %d payloads, want 1", len(got))
	}
	if got[0].ISLText != "HELLO WORLD" || got[0].VideoPath != "signs/hello.mp4" {
		t.Errorf("unexpected payload: %+v", got[0])
	}
	if len(notify.notices()) != 0 {
		t.Errorf("unexpected notifications: %v", notify.notices())
	}
}

func TestSubmitFileForm(t *testing.T) {
	content := []byte("RIFF....WAVEfake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/process_audio" {
			t.Errorf("path = %q, want /process_audio", r.URL.Path)
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "clip.wav" {
			t.Errorf("filename = %q, want clip.wav", hdr.Filename)
		}
		data, _ := io.ReadAll(f)
		if !bytes.Equal(data, content) {
			t.Errorf("file bytes do not round-trip")
		}
		io.WriteString(w, successJSON("ok", "OK", ""))
	}))
	defer srv.Close()

	render := &captureRenderer{}
	notify := &captureNotifier{}
	client := NewClient(srv.URL, 5*time.Second, NewIndicator(nil), render, notify)

	client.Submit(context.Background(), FileSubmission{
		Name:   "clip.wav",
		Reader: bytes.NewReader(content),
	})

	if len(render.rendered()) != 1 {
		t.Fatalf("rendered %d payloads, want 1", len(render.rendered()))
	}
}

func TestSubmitRecordingMime(t *testing.T) {
	cases := []struct {
		name     string
		mime     string
		wantMime string
		wantFile string
	}{
		{"declared wav", "audio/wav", "audio/wav", "recording.wav"},
		{"declared flac", "audio/flac", "audio/flac", "recording.flac"},
		{"default", "", "audio/webm", "recording.webm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/record_audio" {
					t.Errorf("path = %q, want /record_audio", r.URL.Path)
				}
				_, hdr, err := r.FormFile("audio")
				if err != nil {
					t.Fatalf("form file: %v", err)
				}
				if ct := hdr.Header.Get("Content-Type"); ct != tc.wantMime {
					t.Errorf("part content-type = %q, want %q", ct, tc.wantMime)
				}
				if hdr.Filename != tc.wantFile {
					t.Errorf("filename = %q, want %q", hdr.Filename, tc.wantFile)
				}
				io.WriteString(w, successJSON("ok", "OK", ""))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second, NewIndicator(nil),
				&captureRenderer{}, &captureNotifier{})
			client.Submit(context.Background(), RecordingSubmission{
				Bytes:    []byte{1, 2, 3},
				MimeType: tc.mime,
			})
		})
	}
}

func TestSubmitServerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"error","message":"no speech detected"}`)
	}))
	defer srv.Close()

	render := &captureRenderer{}
	notify := &captureNotifier{}
	busy := NewIndicator(nil)
	client := NewClient(srv.URL, 5*time.Second, busy, render, notify)

	client.Submit(context.Background(), TextSubmission{Text: "hi"})

	if len(render.rendered()) != 0 {
		t.Errorf("rejected result must not render, got %v", render.rendered())
	}
	got := notify.notices()
	if len(got) != 1 || !strings.Contains(got[0], "translating text") {
		t.Errorf("notices = %v, want one text failure message", got)
	}
	if busy.Visible() {
		t.Error("busy indicator still visible after settle")
	}
}

func TestSubmitHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	render := &captureRenderer{}
	notify := &captureNotifier{}
	client := NewClient(srv.URL, 5*time.Second, NewIndicator(nil), render, notify)

	client.Submit(context.Background(), RecordingSubmission{Bytes: []byte{0}})

	if len(render.rendered()) != 0 {
		t.Error("error response must not render")
	}
	got := notify.notices()
	if len(got) != 1 || !strings.Contains(got[0], "recording") {
		t.Errorf("notices = %v, want one recording failure message", got)
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	render := &captureRenderer{}
	notify := &captureNotifier{}
	busy := NewIndicator(nil)
	client := NewClient(srv.URL, time.Second, busy, render, notify)

	client.Submit(context.Background(), FileSubmission{
		Name:   "a.wav",
		Reader: bytes.NewReader([]byte{1}),
	})

	if len(render.rendered()) != 0 {
		t.Error("transport failure must not render")
	}
	if len(notify.notices()) != 1 {
		t.Errorf("notices = %v, want exactly one", notify.notices())
	}
	if busy.Visible() {
		t.Error("busy indicator still visible after transport failure")
	}
}

func TestBusyVisibleDuringExchange(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		io.WriteString(w, successJSON("ok", "OK", ""))
	}))
	defer srv.Close()

	busy := NewIndicator(nil)
	client := NewClient(srv.URL, 5*time.Second, busy, &captureRenderer{}, &captureNotifier{})

	if busy.Visible() {
		t.Fatal("busy before any submission")
	}
	done := make(chan struct{})
	go func() {
		client.Submit(context.Background(), TextSubmission{Text: "hi"})
		close(done)
	}()

	<-entered
	if !busy.Visible() {
		t.Error("busy not visible while request in flight")
	}
	close(release)
	<-done
	if busy.Visible() {
		t.Error("busy still visible after settle")
	}
}

func TestOverlappingSubmissionsSettleIndependently(t *testing.T) {
	entered := make(chan struct{}, 2)
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		if r.URL.Path == "/process_text" {
			<-releaseFirst
		} else {
			<-releaseSecond
		}
		io.WriteString(w, successJSON("ok", "OK", ""))
	}))
	defer srv.Close()

	changes := make(chan int, 16)
	busy := NewIndicator(func(_ bool, n int) { changes <- n })
	client := NewClient(srv.URL, 5*time.Second, busy, &captureRenderer{}, &captureNotifier{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		client.Submit(context.Background(), TextSubmission{Text: "hi"})
	}()
	go func() {
		defer wg.Done()
		client.Submit(context.Background(), RecordingSubmission{Bytes: []byte{0}})
	}()

	<-entered
	<-entered
	if got := busy.InFlight(); got != 2 {
		t.Fatalf("in flight = %d, want 2", got)
	}

	close(releaseFirst)
	waitForCount(t, changes, 1)
	if !busy.Visible() {
		t.Error("busy cleared while second submission still in flight")
	}

	close(releaseSecond)
	waitForCount(t, changes, 0)
	wg.Wait()
	if busy.Visible() {
		t.Error("busy still visible after both settled")
	}
}

func waitForCount(t *testing.T, changes <-chan int, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-changes:
			if n == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for in-flight count %d", want)
		}
	}
}

func TestTokenReleaseIdempotent(t *testing.T) {
	busy := NewIndicator(nil)
	a := busy.Acquire()
	b := busy.Acquire()
	if got := busy.InFlight(); got != 2 {
		t.Fatalf("in flight = %d, want 2", got)
	}
	a.Release()
	a.Release()
	a.Release()
	if got := busy.InFlight(); got != 1 {
		t.Errorf("in flight after repeated release = %d, want 1", got)
	}
	b.Release()
	if busy.Visible() {
		t.Error("busy visible with zero in flight")
	}
}
