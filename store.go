/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// Join code alphabet skips characters players misread (0/O, 1/I/L).
	codeChars    = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 4
	codeAttempts = 100
)

// Registry is the storage seam for live sessions. The state machine never
// talks to it directly; swapping the in-memory map for a keyed or
// transactional store only touches this interface.
type Registry interface {
	// Load returns the session for a code, if present.
	Load(code string) (*Session, bool)

	// Register stores a new session, failing if the code is taken.
	// The check and the insert are a single atomic step.
	Register(code string, s *Session) bool

	// Delete removes a session.
	Delete(code string)

	// Codes lists the codes of all live sessions.
	Codes() []string
}

type memoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{
		sessions: make(map[string]*Session),
	}
}

func (r *memoryRegistry) Load(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[code]

	return s, ok
}

func (r *memoryRegistry) Register(code string, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[code]; exists {
		return false
	}

	r.sessions[code] = s

	return true
}

func (r *memoryRegistry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, code)
}

func (r *memoryRegistry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.sessions))
	for code := range r.sessions {
		codes = append(codes, code)
	}

	return codes
}

// Store owns all session mutation. Each operation is atomic with respect
// to a single session: the session mutex is held from validation through
// projection, so no caller ever observes a torn state, and concurrent
// guesses against one question are linearized.
type Store struct {
	registry    Registry
	norm        Normalizer
	maxStrikes  int
	idleTimeout time.Duration
}

func newStore(cfg *Config) *Store {
	return &Store{
		registry: newMemoryRegistry(),
		norm: Normalizer{
			StripPunctuation: cfg.stripPunctuation,
		},
		maxStrikes:  cfg.maxStrikes,
		idleTimeout: cfg.sessionTimeout,
	}
}

// newGameCode draws random codes until one is free, with a bounded number
// of attempts. With a 4-char alphabet of 31 this fails only when the code
// space is effectively saturated.
func (st *Store) newGameCode(s *Session) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		buf := make([]byte, codeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeChars[int(buf[i])%len(codeChars)]
		}
		code := string(out)

		s.code = code
		if st.registry.Register(code, s) {
			return code, nil
		}
	}

	return "", ErrGenerationExhausted
}

// Create makes a new waiting session and returns the join code and host
// credential. The credential is returned here and nowhere else.
func (st *Store) Create(mode Mode) (CreateResponse, error) {
	hostID := uuid.NewString()

	s := newSession("", hostID, mode, st.maxStrikes)

	code, err := st.newGameCode(s)
	if err != nil {
		return CreateResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return CreateResponse{
		Code:   code,
		HostID: hostID,
		Status: project(s, true),
	}, nil
}

func (st *Store) lookup(code string) (*Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	s, ok := st.registry.Load(code)
	if !ok {
		return nil, ErrNotFound
	}

	return s, nil
}

// Get returns the status view for any caller. Presenting the host
// credential widens the view; the read itself has no side effects.
func (st *Store) Get(code, credential string) (StatusView, error) {
	s, err := st.lookup(code)
	if err != nil {
		return StatusView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()

	return project(s, credential != "" && credential == s.hostID), nil
}

// hostOp runs a host-only mutation under the session mutex. The credential
// check happens before the mutation, so unauthorized calls never have a
// side effect.
func (st *Store) hostOp(code, credential string, op func(*Session) error) (StatusView, error) {
	s, err := st.lookup(code)
	if err != nil {
		return StatusView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()

	if credential == "" || credential != s.hostID {
		return StatusView{}, ErrUnauthorized
	}

	if err := op(s); err != nil {
		return StatusView{}, err
	}

	return project(s, true), nil
}

// AddQuestion appends a question while the session is waiting.
func (st *Store) AddQuestion(code, credential string, q Question) (StatusView, error) {
	return st.hostOp(code, credential, func(s *Session) error {
		return s.addQuestionLocked(q)
	})
}

// Start moves a waiting session into play.
func (st *Store) Start(code, credential string) (StatusView, error) {
	return st.hostOp(code, credential, func(s *Session) error {
		return s.startLocked()
	})
}

// Advance moves a host-controlled session to its next question.
func (st *Store) Advance(code, credential string) (StatusView, error) {
	return st.hostOp(code, credential, func(s *Session) error {
		return s.hostAdvanceLocked()
	})
}

// Guess adjudicates a player guess and returns the outcome together with
// the post-guess status, all under one lock acquisition.
func (st *Store) Guess(code, text string) (GuessResponse, error) {
	s, err := st.lookup(code)
	if err != nil {
		return GuessResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()

	result, err := s.guessLocked(text, st.norm)
	if err != nil {
		return GuessResponse{}, err
	}

	return GuessResponse{
		Correct:   result.Correct,
		Answer:    result.Answer,
		Message:   result.Message,
		Score:     s.score,
		Strikes:   s.strikes,
		Advanced:  result.Advanced,
		Completed: result.Completed,
		Status:    project(s, false),
	}, nil
}

// reaperLoop periodically removes sessions idle longer than the timeout.
func (st *Store) reaperLoop(ctx context.Context, cfg *Config) {
	ticker := time.NewTicker(st.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-st.idleTimeout)

			for _, code := range st.registry.Codes() {
				s, ok := st.registry.Load(code)
				if !ok {
					continue
				}

				s.mu.Lock()
				last := s.lastActive
				s.mu.Unlock()

				if last.Before(cutoff) {
					st.registry.Delete(code)
					logf(cfg, "GAMES: Ended idle game %s", code)
				}
			}
		}
	}
}
