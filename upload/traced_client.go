package upload

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptrace"
	"time"
)

// NetworkMetrics breaks one HTTP exchange into its connection phases.
// Durations are zero for phases the exchange skipped, e.g. DNS and TLS on a
// reused connection.
type NetworkMetrics struct {
	ConnWait   time.Duration
	DNS        time.Duration
	TLS        time.Duration
	TTFB       time.Duration
	Total      time.Duration
	ConnReused bool
}

// TracedClient wraps an http.Client with an httptrace hook so every upload
// reports where its time went.
type TracedClient struct {
	client *http.Client
}

func NewTracedClient(timeout time.Duration) *TracedClient {
	return &TracedClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do executes the request and returns the response together with per-phase
// timings. The caller owns the response body.
func (c *TracedClient) Do(req *http.Request) (*http.Response, NetworkMetrics, error) {
	var (
		m         NetworkMetrics
		start     = time.Now()
		dnsStart  time.Time
		tlsStart  time.Time
		connStart time.Time
	)

	trace := &httptrace.ClientTrace{
		GetConn: func(string) {
			connStart = time.Now()
		},
		GotConn: func(info httptrace.GotConnInfo) {
			m.ConnReused = info.Reused
			if !connStart.IsZero() {
				m.ConnWait = time.Since(connStart)
			}
		},
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			if !dnsStart.IsZero() {
				m.DNS = time.Since(dnsStart)
			}
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			if !tlsStart.IsZero() {
				m.TLS = time.Since(tlsStart)
			}
		},
		GotFirstResponseByte: func() {
			m.TTFB = time.Since(start)
		},
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	resp, err := c.client.Do(req)
	m.Total = time.Since(start)
	return resp, m, err
}

// Warm opens a connection to the server ahead of the first real upload so
// the user's first submission does not pay the handshake cost. Failures are
// ignored; the first upload will simply connect cold.
func (c *TracedClient) Warm(ctx context.Context, baseURL string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
