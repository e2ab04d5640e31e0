// Package heartbeat delivers success notifications to an external
// uptime collector.
package heartbeat

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DeliveryError means the liveness check itself succeeded but the
// collector could not be notified. Callers must not confuse it with a
// check failure.
type DeliveryError struct {
	URL string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("heartbeat: notify %s: %v", e.URL, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Sink pushes one fire-and-forget HTTP GET per successful check cycle.
type Sink struct {
	url    string
	client *http.Client
}

func NewSink(url string, timeout time.Duration) *Sink {
	return &Sink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *Sink) Notify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return &DeliveryError{URL: s.url, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return &DeliveryError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{URL: s.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return nil
}
