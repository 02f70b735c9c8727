package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProjectWaiting(t *testing.T) {
	s := newSession("ABCD", "host-credential", ModeAuto, 3)

	if err := s.addQuestionLocked(groceriesQuestion()); err != nil {
		t.Fatalf("addQuestionLocked() error: %v", err)
	}

	view := project(s, false)

	if view.Status != StatusWaiting {
		t.Errorf("status = %q, want %q", view.Status, StatusWaiting)
	}
	if view.CurrentIndex != nil {
		t.Errorf("current_index = %d while waiting, want null", *view.CurrentIndex)
	}
	if view.Question != nil {
		t.Error("question exposed while waiting, want null")
	}
	if view.TotalQuestions != 1 {
		t.Errorf("total_questions = %d, want 1", view.TotalQuestions)
	}
}

func TestProjectRedactsUnrevealedForPlayers(t *testing.T) {
	s := playingSession(t, ModeHostControlled, colorsQuestion())

	if _, err := s.guessLocked("red", testNorm); err != nil {
		t.Fatalf("guessLocked() error: %v", err)
	}

	view := project(s, false)

	if view.IsHost {
		t.Error("is_host = true for player view")
	}
	if view.TotalAnswers != 3 || len(view.Answers) != 3 {
		t.Fatalf("answers = %d/%d, want 3 slots", view.TotalAnswers, len(view.Answers))
	}

	if !view.Answers[0].Revealed || view.Answers[0].Text != "red" || *view.Answers[0].Weight != 40 {
		t.Errorf("revealed slot = %+v, want red/40", view.Answers[0])
	}

	for i, slot := range view.Answers[1:] {
		if slot.Revealed {
			t.Errorf("slot %d marked revealed, want placeholder", i+1)
		}
		if slot.Text != "" || slot.Weight != nil {
			t.Errorf("slot %d leaks %q/%v to player", i+1, slot.Text, slot.Weight)
		}
	}
}

func TestProjectHostSeesFullBoard(t *testing.T) {
	s := playingSession(t, ModeHostControlled, colorsQuestion())

	view := project(s, true)

	if !view.IsHost {
		t.Error("is_host = false for host view")
	}

	for i, slot := range view.Answers {
		if slot.Revealed {
			t.Errorf("slot %d marked revealed before any guess", i)
		}
		if slot.Text == "" || slot.Weight == nil {
			t.Errorf("slot %d missing text/weight for host", i)
		}
	}
}

// The serialized player view must never contain unrevealed answer text,
// regardless of which field would carry it.
func TestPlayerViewNeverLeaksAnswerText(t *testing.T) {
	s := playingSession(t, ModeHostControlled, colorsQuestion())

	if _, err := s.guessLocked("blue", testNorm); err != nil {
		t.Fatalf("guessLocked() error: %v", err)
	}

	raw, err := json.Marshal(project(s, false))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	payload := strings.ToLower(string(raw))

	for _, hidden := range []string{"red", "yellow"} {
		if strings.Contains(payload, hidden) {
			t.Errorf("player view contains unrevealed answer %q: %s", hidden, payload)
		}
	}
	if !strings.Contains(payload, "blue") {
		t.Errorf("player view missing revealed answer: %s", payload)
	}
}

func TestProjectCompleted(t *testing.T) {
	s := playingSession(t, ModeHostControlled, groceriesQuestion())

	if _, err := s.guessLocked("bread", testNorm); err != nil {
		t.Fatalf("guessLocked() error: %v", err)
	}
	if err := s.hostAdvanceLocked(); err != nil {
		t.Fatalf("hostAdvanceLocked() error: %v", err)
	}

	view := project(s, false)

	if view.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", view.Status, StatusCompleted)
	}
	if view.Question != nil || len(view.Answers) != 0 {
		t.Error("completed view still carries a question board")
	}
	if view.CurrentIndex == nil {
		t.Error("current_index = null when completed, want last index")
	}
	if view.Score != 10 {
		t.Errorf("score = %d, want 10", view.Score)
	}
}

func TestCurrentIndexSerializesAsNullWhileWaiting(t *testing.T) {
	s := newSession("ABCD", "host-credential", ModeAuto, 3)

	raw, err := json.Marshal(project(s, false))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	if !strings.Contains(string(raw), `"current_index":null`) {
		t.Errorf("serialized view = %s, want current_index null", raw)
	}
}
