package main

// The status view is the one read model every client reconciles against.
// It is returned by the status poll and by every mutating command, so a
// client never needs a second round trip to observe the effect of its own
// command. Clients replace their local state with it wholesale.

// QuestionView carries the prompt of the active question. Answer text
// lives in the slots, where redaction applies.
type QuestionView struct {
	Text string `json:"text"`
}

// AnswerSlot is one position on the board. Unrevealed slots are opaque
// placeholders for players and the display; only the host sees text and
// weight before a reveal.
type AnswerSlot struct {
	Revealed bool   `json:"revealed"`
	Text     string `json:"text,omitempty"`
	Weight   *int   `json:"weight,omitempty"`
}

// StatusView is the role-scoped snapshot of a session. The host credential
// itself is never part of the view.
type StatusView struct {
	Code           string        `json:"code"`
	Mode           Mode          `json:"mode"`
	Status         Status        `json:"status"`
	IsHost         bool          `json:"is_host"`
	Question       *QuestionView `json:"question"`
	CurrentIndex   *int          `json:"current_index"`
	TotalQuestions int           `json:"total_questions"`
	TotalAnswers   int           `json:"total_answers"`
	Answers        []AnswerSlot  `json:"answers,omitempty"`
	Score          int           `json:"score"`
	Strikes        int           `json:"strikes"`
	MaxStrikes     int           `json:"max_strikes"`
}

// GuessResponse wraps a guess outcome around the post-guess status view.
type GuessResponse struct {
	Correct   bool       `json:"correct"`
	Answer    *Answer    `json:"answer,omitempty"`
	Message   string     `json:"message,omitempty"`
	Score     int        `json:"score"`
	Strikes   int        `json:"strikes"`
	Advanced  bool       `json:"advanced"`
	Completed bool       `json:"completed"`
	Status    StatusView `json:"status"`
}

// CreateResponse is returned once, at session creation. This is the only
// place the host credential ever appears in a response.
type CreateResponse struct {
	Code   string     `json:"code"`
	HostID string     `json:"host_id"`
	Status StatusView `json:"status"`
}

// project builds the status view for one caller role. It assumes the
// session mutex is held, so the snapshot is always consistent.
func project(s *Session, isHost bool) StatusView {
	view := StatusView{
		Code:           s.code,
		Mode:           s.mode,
		Status:         s.status,
		IsHost:         isHost,
		TotalQuestions: len(s.questions),
		Score:          s.score,
		Strikes:        s.strikes,
		MaxStrikes:     s.maxStrikes,
	}

	if s.status != StatusWaiting {
		index := s.current
		view.CurrentIndex = &index
	}

	question := s.currentQuestionLocked()
	if s.status != StatusPlaying || question == nil {
		return view
	}

	view.Question = &QuestionView{Text: question.Text}
	view.TotalAnswers = len(question.Answers)
	view.Answers = make([]AnswerSlot, len(question.Answers))

	for i, answer := range question.Answers {
		slot := AnswerSlot{Revealed: s.revealed[i]}

		if slot.Revealed || isHost {
			weight := answer.Weight
			slot.Text = answer.Text
			slot.Weight = &weight
		}

		view.Answers[i] = slot
	}

	return view
}
