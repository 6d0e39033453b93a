package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"signbridge/log"
)

// Renderer receives successful results.
type Renderer interface {
	Render(ResultPayload)
}

// Notifier receives user-facing error messages.
type Notifier interface {
	Notify(text string)
}

// Client posts submissions to the translation backend. One Submit call makes
// exactly one request; there are no retries. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *TracedClient
	busy    *Indicator
	render  Renderer
	notify  Notifier
}

func NewClient(baseURL string, timeout time.Duration, busy *Indicator, render Renderer, notify Notifier) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewTracedClient(timeout),
		busy:    busy,
		render:  render,
		notify:  notify,
	}
}

// Warm pre-opens a connection to the backend.
func (c *Client) Warm(ctx context.Context) {
	c.http.Warm(ctx, c.baseURL+"/")
}

// Submit sends one submission and routes the outcome: a success payload goes
// to the renderer, anything else becomes a notification. The busy indicator
// covers the whole exchange and is released no matter how it ends.
func (c *Client) Submit(ctx context.Context, sub Submission) {
	token := c.busy.Acquire()
	defer token.Release()

	payload, err := c.post(ctx, sub)
	if err != nil {
		log.Errorf("upload %s: %v", sub.Route(), err)
		c.notify.Notify(sub.failureMessage())
		return
	}
	if payload.Status != StatusSuccess {
		log.Errorf("upload %s: server rejected: status=%q message=%q",
			sub.Route(), payload.Status, payload.Message)
		c.notify.Notify(sub.failureMessage())
		return
	}

	log.Result(payload.EnglishText, payload.ISLText, payload.VideoPath)
	c.render.Render(*payload)
}

func (c *Client) post(ctx context.Context, sub Submission) (*ResultPayload, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := sub.writeForm(form); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}
	bodyKB := float64(body.Len()) / 1024

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sub.Route(), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, metrics, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	log.Upload(log.UploadMetrics{
		Route:      sub.Route(),
		BodyKB:     bodyKB,
		ConnWaitMs: float64(metrics.ConnWait.Microseconds()) / 1000,
		DNSMs:      float64(metrics.DNS.Microseconds()) / 1000,
		TLSMs:      float64(metrics.TLS.Microseconds()) / 1000,
		TTFBMs:     float64(metrics.TTFB.Microseconds()) / 1000,
		TotalMs:    float64(metrics.Total.Microseconds()) / 1000,
		ConnReused: metrics.ConnReused,
	})

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, truncate(data, 200))
	}

	var payload ResultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
