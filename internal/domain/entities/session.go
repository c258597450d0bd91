package entities

import (
	"time"
)

// SessionMode distinguishes the multiple choice exercise modes.
type SessionMode string

const (
	ModeQuiz SessionMode = "quiz"
	ModeExam SessionMode = "exam"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// Session tracks a learner's way through a generated question sequence.
// Completed is terminal: a new session has to be generated to play again.
type Session struct {
	ID          string      // unique session ID
	Mode        SessionMode // quiz or exam
	Questions   []Question  // generated questions in display order
	StartedAt   time.Time   // timestamp when the session was generated
	CompletedAt *time.Time  // timestamp when the session was completed (nullable)

	currentIndex int
	answers      map[int]string
	phase        Phase
	countdown    *Countdown
}

// NewSession creates an in-progress session positioned at the first question.
// countdown may be nil for untimed sessions.
func NewSession(id string, mode SessionMode, questions []Question, countdown *Countdown) *Session {
	return &Session{
		ID:        id,
		Mode:      mode,
		Questions: questions,
		StartedAt: time.Now(),
		answers:   make(map[int]string, len(questions)),
		phase:     PhaseInProgress,
		countdown: countdown,
	}
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool {
	return s.phase == PhaseCompleted
}

// CurrentIndex returns the zero-based position of the current question.
func (s *Session) CurrentIndex() int {
	return s.currentIndex
}

// Current returns the current question, or false once the index ran past the end.
func (s *Session) Current() (*Question, bool) {
	if s.currentIndex < 0 || s.currentIndex >= len(s.Questions) {
		return nil, false
	}
	return &s.Questions[s.currentIndex], true
}

// Answer returns the recorded answer for the question at index.
func (s *Session) Answer(index int) (string, bool) {
	a, ok := s.answers[index]
	return a, ok
}

// AnsweredCount returns how many questions have a recorded answer.
func (s *Session) AnsweredCount() int {
	return len(s.answers)
}

// RecordAnswer stores value as the answer for the question at index.
// The first answer wins; it returns false when nothing was recorded.
func (s *Session) RecordAnswer(index int, value string) bool {
	if s.phase != PhaseInProgress {
		return false
	}
	if index < 0 || index >= len(s.Questions) {
		return false
	}
	if _, ok := s.answers[index]; ok {
		return false
	}

	s.answers[index] = value
	return true
}

// Advance moves to the next question and completes the session after the last one.
func (s *Session) Advance() {
	if s.phase != PhaseInProgress {
		return
	}

	s.currentIndex++
	if s.currentIndex >= len(s.Questions) {
		s.currentIndex = len(s.Questions)
		s.complete()
	}
}

// Retreat moves back one question. Only exams allow it; the index is floored at 0.
func (s *Session) Retreat() {
	if s.phase != PhaseInProgress || s.Mode != ModeExam {
		return
	}
	if s.currentIndex > 0 {
		s.currentIndex--
	}
}

// Submit completes the session regardless of position.
func (s *Session) Submit() {
	if s.phase != PhaseInProgress {
		return
	}
	s.complete()
}

// Timeout completes the session when the countdown ran out. It has the same
// effect as Submit.
func (s *Session) Timeout() {
	s.Submit()
}

// Tick advances the session countdown and times the session out at zero.
// It reports whether this tick completed the session.
func (s *Session) Tick() bool {
	if s.countdown == nil || s.phase != PhaseInProgress {
		return false
	}
	if s.countdown.Tick() {
		s.Timeout()
		return true
	}
	return false
}

// Remaining returns the time left on the countdown and whether the session is timed.
func (s *Session) Remaining() (time.Duration, bool) {
	if s.countdown == nil {
		return 0, false
	}
	return s.countdown.Remaining(), true
}

// Score counts recorded answers equal to their question's correct answer.
func (s *Session) Score() int {
	score := 0
	for i, a := range s.answers {
		if s.Questions[i].IsCorrect(a) {
			score++
		}
	}
	return score
}

// Passed reports whether the score reaches ratio of the total question count.
func (s *Session) Passed(ratio float64) bool {
	if len(s.Questions) == 0 {
		return false
	}
	return float64(s.Score()) >= float64(len(s.Questions))*ratio
}

// Snapshot returns a read-only view of the session for rendering.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:     s.ID,
		Mode:   s.Mode,
		Index:  s.currentIndex,
		Total:  len(s.Questions),
		Score:  s.Score(),
		Phase:  s.phase,
		Timed:  s.countdown != nil,
		Answer: "",
	}

	if q, ok := s.Current(); ok {
		snap.Question = q
		snap.Answer, snap.Answered = s.answers[s.currentIndex]
	}
	if s.countdown != nil {
		snap.Remaining = s.countdown.Remaining()
	}

	return snap
}

func (s *Session) complete() {
	s.phase = PhaseCompleted
	now := time.Now()
	s.CompletedAt = &now
}

// SessionSnapshot is what the presentation layer sees of a session.
type SessionSnapshot struct {
	ID        string
	Mode      SessionMode
	Index     int
	Total     int
	Question  *Question
	Answer    string
	Answered  bool
	Score     int
	Phase     Phase
	Timed     bool
	Remaining time.Duration
}

// IsLast reports whether the snapshot points at the final question.
func (s SessionSnapshot) IsLast() bool {
	return s.Index == s.Total-1
}
