package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Every client role converges the same way: poll the status endpoint on a
// fixed interval and replace local state wholesale with each response.
// There is no sequencing token and no partial merge, so missed polls and
// out-of-order arrivals are harmless; the last response wins.

const (
	pollAttempts  = 3
	pollRetryWait = 250 * time.Millisecond
)

// apiError is a definitive server answer. Retrying the same request
// cannot change it, so it surfaces immediately.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	if e.message != "" {
		return e.message
	}

	return fmt.Sprintf("server returned %d", e.status)
}

// Poller fetches a game's status on a fixed interval. Transient failures
// (network errors, 5xx) are retried a bounded number of times per fetch
// before the failure surfaces.
type Poller struct {
	client   *http.Client
	url      string
	hostID   string
	interval time.Duration
}

func newPoller(server, code, hostID string, interval time.Duration) *Poller {
	return &Poller{
		client: &http.Client{
			Timeout: timeout,
		},
		// Codes travel upper-cased; the server treats them case-insensitively.
		url:      strings.TrimSuffix(server, "/") + "/api/games/" + strings.ToUpper(strings.TrimSpace(code)),
		hostID:   hostID,
		interval: interval,
	}
}

func (p *Poller) fetch(ctx context.Context) (StatusView, error) {
	var lastErr error

	for attempt := 0; attempt < pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return StatusView{}, ctx.Err()
			case <-time.After(pollRetryWait * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return StatusView{}, err
		}

		if p.hostID != "" {
			req.Header.Set(hostHeader, p.hostID)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err

			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &apiError{status: resp.StatusCode}

			continue
		}

		if resp.StatusCode != http.StatusOK {
			var body errorResponse
			_ = json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()

			return StatusView{}, &apiError{
				status:  resp.StatusCode,
				message: body.Error,
			}
		}

		var view StatusView
		err = json.NewDecoder(resp.Body).Decode(&view)
		resp.Body.Close()
		if err != nil {
			lastErr = err

			continue
		}

		return view, nil
	}

	return StatusView{}, lastErr
}

// Run polls until the context is cancelled, handing each snapshot to
// apply. It returns on cancellation, on a definitive server answer, or
// once a fetch exhausts its retries.
func (p *Poller) Run(ctx context.Context, apply func(StatusView)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		view, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		apply(view)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
