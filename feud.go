// Feud
//
// A host creates a game session and receives a short join code plus a host
// credential. While the session is waiting, the host enters survey questions,
// each with a list of weighted answers. Once started, players submit free-text
// guesses against the current question; correct guesses reveal an answer and
// add its weight to the shared score, wrong guesses add a strike. A shared
// display polls the same status endpoint and renders the board.
//
// Features:
// - Sessions keyed by 4-char join codes, crypto/rand with collision check
// - Host credential required on setup and pacing commands, never echoed back
// - Two pacing modes: auto (advance on board clear or max strikes) and
//   host-controlled (host advances explicitly)
// - Guesses matched by exact normalized text against unrevealed answers only
// - Every command returns the full role-scoped status, so clients reconcile
//   in a single round trip; no push channel, clients poll
// - Idle sessions reaped after a configurable timeout
// - In-browser QR code to share the join URL, backed by go-qrcode

package main

import (
	"errors"
	"sync"
	"time"
)

// Mode controls how a session advances between questions.
type Mode string

const (
	// ModeAuto advances as soon as a question's board is cleared or the
	// strike limit is reached.
	ModeAuto Mode = "auto"

	// ModeHostControlled waits for an explicit advance command from the
	// host, regardless of board state.
	ModeHostControlled Mode = "host-controlled"
)

// Status is the lifecycle phase of a session. Transitions only move
// forward: waiting, then playing, then completed.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusPlaying   Status = "playing"
	StatusCompleted Status = "completed"
)

var (
	ErrNotFound            = errors.New("game not found")
	ErrUnauthorized        = errors.New("not the host")
	ErrInvalidPhase        = errors.New("not allowed in the current game phase")
	ErrEmptyQuestionSet    = errors.New("cannot start a game with no questions")
	ErrGenerationExhausted = errors.New("unable to generate a unique game code")
)

// Answer is a single survey answer and the points awarded for finding it.
type Answer struct {
	Text   string `json:"text"`
	Weight int    `json:"weight"`
}

// Question is an ordered list of answers behind one survey prompt.
type Question struct {
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Session holds the full server-side state of one game. All access goes
// through its mutex; the store locks before calling any *Locked method.
type Session struct {
	mu sync.Mutex

	code       string
	mode       Mode
	status     Status
	hostID     string
	questions  []Question
	current    int // index into questions; -1 while waiting
	score      int
	strikes    int
	maxStrikes int
	revealed   map[int]bool // answer indices of the current question

	createdAt  time.Time
	lastActive time.Time
}

func newSession(code, hostID string, mode Mode, maxStrikes int) *Session {
	now := time.Now()
	return &Session{
		code:       code,
		mode:       mode,
		status:     StatusWaiting,
		hostID:     hostID,
		current:    -1,
		maxStrikes: maxStrikes,
		revealed:   make(map[int]bool),
		createdAt:  now,
		lastActive: now,
	}
}

// GuessResult reports the outcome of a single guess.
type GuessResult struct {
	Correct         bool
	Answer          *Answer
	Message         string
	Advanced        bool
	Completed       bool
	AlreadyRevealed bool
}

func (s *Session) currentQuestionLocked() *Question {
	if s.current < 0 || s.current >= len(s.questions) {
		return nil
	}
	return &s.questions[s.current]
}

func (s *Session) addQuestionLocked(q Question) error {
	if s.status != StatusWaiting {
		return ErrInvalidPhase
	}

	s.questions = append(s.questions, q)

	return nil
}

func (s *Session) startLocked() error {
	if s.status != StatusWaiting {
		return ErrInvalidPhase
	}
	if len(s.questions) == 0 {
		return ErrEmptyQuestionSet
	}

	s.status = StatusPlaying
	s.current = 0
	s.score = 0
	s.strikes = 0
	s.revealed = make(map[int]bool)

	return nil
}

// advanceLocked moves to the next question, resetting per-question state.
// It is the single advancement path, shared by the host's explicit command
// and by auto mode's implicit advance on board clear or max strikes. The
// current index stays on the final question once the session completes.
func (s *Session) advanceLocked() {
	s.strikes = 0
	s.revealed = make(map[int]bool)

	if s.current+1 >= len(s.questions) {
		s.status = StatusCompleted
		return
	}

	s.current++
}

// hostAdvanceLocked handles the explicit advance command. Rejected in auto
// mode, where advancement is implicit.
func (s *Session) hostAdvanceLocked() error {
	if s.status != StatusPlaying || s.mode != ModeHostControlled {
		return ErrInvalidPhase
	}

	s.advanceLocked()

	return nil
}

// guessLocked adjudicates one guess against the current question.
func (s *Session) guessLocked(text string, norm Normalizer) (GuessResult, error) {
	if s.status != StatusPlaying {
		return GuessResult{}, ErrInvalidPhase
	}

	question := s.currentQuestionLocked()

	index, ok := norm.FindMatch(text, question.Answers)
	if !ok {
		return s.missLocked("Strike!"), nil
	}

	// A guess naming an answer that is already on the board is a miss,
	// never rewarded twice. It costs no strike either, so repeating a
	// found answer changes nothing.
	if s.revealed[index] {
		return GuessResult{
			Correct:         false,
			Message:         "Already revealed!",
			AlreadyRevealed: true,
		}, nil
	}

	answer := question.Answers[index]
	s.revealed[index] = true
	s.score += answer.Weight

	result := GuessResult{
		Correct: true,
		Answer:  &answer,
	}

	if len(s.revealed) == len(question.Answers) && s.mode == ModeAuto {
		s.advanceLocked()
		result.Advanced = true
	}

	result.Completed = s.status == StatusCompleted

	return result, nil
}

func (s *Session) missLocked(message string) GuessResult {
	if s.strikes < s.maxStrikes {
		s.strikes++
	}

	result := GuessResult{
		Correct: false,
		Message: message,
	}

	if s.strikes == s.maxStrikes && s.mode == ModeAuto {
		s.advanceLocked()
		result.Advanced = true
		result.Message = "Max strikes! Moving on..."
	}

	result.Completed = s.status == StatusCompleted

	return result
}
