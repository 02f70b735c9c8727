package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// hostHeader carries the host credential out-of-band on every request
// that needs it. It is never part of any response body except creation.
const hostHeader = "X-Host-Id"

type createGameRequest struct {
	Mode Mode `json:"mode"`
}

type guessRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logf(cfg, "ERROR: Writing response: %v", err)
	}
}

// writeGameError maps the failure taxonomy onto HTTP statuses. 4xx means
// the request itself is wrong and retrying without changes is pointless.
func writeGameError(cfg *Config, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ErrInvalidPhase):
		status = http.StatusConflict
	case errors.Is(err, ErrEmptyQuestionSet):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrGenerationExhausted):
		status = http.StatusServiceUnavailable
	}

	writeJSON(cfg, w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)

		return false
	}

	return true
}

func serveCreateGame(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req createGameRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if req.Mode != ModeAuto && req.Mode != ModeHostControlled {
			http.Error(w, "invalid mode", http.StatusBadRequest)

			return
		}

		created, err := store.Create(req.Mode)
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusCreated, created)

		logf(cfg, "GAMES: Created %s game %s for %s in %s",
			req.Mode,
			created.Code,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveGameStatus(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		view, err := store.Get(p.ByName("code"), r.Header.Get(hostHeader))
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, view)
	}
}

func serveAddQuestion(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		var question Question
		if !decodeBody(w, r, &question) {
			return
		}

		question.Text = strings.TrimSpace(question.Text)

		if question.Text == "" || len(question.Answers) == 0 {
			http.Error(w, "question needs text and at least one answer", http.StatusBadRequest)

			return
		}

		for i := range question.Answers {
			question.Answers[i].Text = strings.TrimSpace(question.Answers[i].Text)

			if question.Answers[i].Text == "" || question.Answers[i].Weight < 0 {
				http.Error(w, "answers need text and a non-negative weight", http.StatusBadRequest)

				return
			}
		}

		view, err := store.AddQuestion(p.ByName("code"), r.Header.Get(hostHeader), question)
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, view)

		logf(cfg, "GAMES: Added question %d to %s", view.TotalQuestions, view.Code)
	}
}

func serveStartGame(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		view, err := store.Start(p.ByName("code"), r.Header.Get(hostHeader))
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, view)

		logf(cfg, "GAMES: Started game %s with %d questions", view.Code, view.TotalQuestions)
	}
}

func serveAdvanceGame(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		view, err := store.Advance(p.ByName("code"), r.Header.Get(hostHeader))
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, view)

		logf(cfg, "GAMES: Advanced game %s to %s", view.Code, view.Status)
	}
}

func serveGuess(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		var req guessRequest
		if !decodeBody(w, r, &req) {
			return
		}

		response, err := store.Guess(p.ByName("code"), req.Text)
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		writeJSON(cfg, w, http.StatusOK, response)

		logf(cfg, "GAMES: Guess %q on %s from %s (correct: %t)",
			req.Text,
			response.Status.Code,
			realIP(r),
			response.Correct,
		)
	}
}

// serveGameQR generates a PNG QR code of a game's join URL using go-qrcode.
func serveGameQR(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		// Confirm the game exists before handing out a join code for it.
		view, err := store.Get(p.ByName("code"), "")
		if err != nil {
			writeGameError(cfg, w, err)

			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/game/" + view.Code

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerFeudGame sets up the game API:
//   - POST $prefix/api/games                  → create session
//   - GET  $prefix/api/games/:code            → role-scoped status
//   - POST $prefix/api/games/:code/questions  → add question (host)
//   - POST $prefix/api/games/:code/start      → start (host)
//   - POST $prefix/api/games/:code/next       → advance (host)
//   - POST $prefix/api/games/:code/guess      → submit guess
//   - GET  $prefix/api/games/:code/qr         → PNG QR code of the join URL
func registerFeudGame(ctx context.Context, cfg *Config, mux *httprouter.Router) *Store {
	store := newStore(cfg)

	if store.idleTimeout > 0 {
		go store.reaperLoop(ctx, cfg)
	}

	mux.POST(cfg.prefix+"/api/games", serveCreateGame(cfg, store))
	mux.GET(cfg.prefix+"/api/games/:code", serveGameStatus(cfg, store))
	mux.POST(cfg.prefix+"/api/games/:code/questions", serveAddQuestion(cfg, store))
	mux.POST(cfg.prefix+"/api/games/:code/start", serveStartGame(cfg, store))
	mux.POST(cfg.prefix+"/api/games/:code/next", serveAdvanceGame(cfg, store))
	mux.POST(cfg.prefix+"/api/games/:code/guess", serveGuess(cfg, store))
	mux.GET(cfg.prefix+"/api/games/:code/qr", serveGameQR(cfg, store))

	return store
}
