package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func statusHandler(t *testing.T, view StatusView) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			t.Errorf("encoding view: %v", err)
		}
	}
}

func TestPollerFetch(t *testing.T) {
	want := StatusView{
		Code:   "ABCD",
		Mode:   ModeAuto,
		Status: StatusWaiting,
	}

	var sawHeader atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/games/ABCD" {
			t.Errorf("path = %q, want /api/games/ABCD", r.URL.Path)
		}
		if r.Header.Get(hostHeader) == "host-credential" {
			sawHeader.Store(true)
		}
		statusHandler(t, want)(w, r)
	}))
	defer srv.Close()

	// Codes are upper-cased client-side before transmission.
	poller := newPoller(srv.URL, "abcd", "host-credential", time.Second)

	view, err := poller.fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch() error: %v", err)
	}

	if view.Code != want.Code || view.Status != want.Status {
		t.Errorf("fetch() = %+v, want %+v", view, want)
	}
	if !sawHeader.Load() {
		t.Error("fetch() did not forward the host credential header")
	}
}

func TestPollerRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		statusHandler(t, StatusView{Code: "ABCD", Status: StatusPlaying})(w, r)
	}))
	defer srv.Close()

	poller := newPoller(srv.URL, "ABCD", "", time.Second)

	view, err := poller.fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch() error after retries: %v", err)
	}
	if view.Status != StatusPlaying {
		t.Errorf("fetch() status = %q, want %q", view.Status, StatusPlaying)
	}
	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

func TestPollerSurfacesClientErrorsImmediately(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "game not found"})
	}))
	defer srv.Close()

	poller := newPoller(srv.URL, "ZZZZ", "", time.Second)

	_, err := poller.fetch(context.Background())

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("fetch() error = %v, want apiError", err)
	}
	if apiErr.status != http.StatusNotFound || apiErr.Error() != "game not found" {
		t.Errorf("apiError = %d/%q, want 404/game not found", apiErr.status, apiErr.Error())
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want no retry on 4xx", calls.Load())
	}
}

func TestPollerGivesUpAfterBoundedRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	poller := newPoller(srv.URL, "ABCD", "", time.Second)

	if _, err := poller.fetch(context.Background()); err == nil {
		t.Fatal("fetch() error = nil against a failing server")
	}
	if calls.Load() != pollAttempts {
		t.Errorf("server calls = %d, want %d", calls.Load(), pollAttempts)
	}
}

// Run replaces the local snapshot wholesale on every poll; the last
// response wins with no merging.
func TestPollerRunReplacesState(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		score := int(calls.Add(1)) * 10
		statusHandler(t, StatusView{Code: "ABCD", Status: StatusPlaying, Score: score})(w, r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	poller := newPoller(srv.URL, "ABCD", "", 10*time.Millisecond)

	var last atomic.Int32
	done := make(chan error, 1)

	go func() {
		done <- poller.Run(ctx, func(view StatusView) {
			last.Store(int32(view.Score))
			if view.Score >= 30 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}

	if last.Load() < 30 {
		t.Errorf("last snapshot score = %d, want the latest response to win", last.Load())
	}
}
