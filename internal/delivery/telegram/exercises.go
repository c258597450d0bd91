package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

// quizHandler generates a fresh quiz for the chat's level and shows its first question.
func (h *Handler) quizHandler(state *storage.ChatState, msgID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		pool, err := h.vocabulary.ByLevel(ctx, state.Level)
		if err != nil {
			return fmt.Errorf("load level %d: %w", state.Level, err)
		}

		quiz, err := h.exercises.NewQuiz(pool)
		if err != nil {
			return fmt.Errorf("new quiz: %w", err)
		}
		state.Quiz = quiz

		h.logger.Info("quiz started",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", quiz.ID),
			zap.Int("level", state.Level),
			zap.Int("questions", len(quiz.Questions)),
		)

		h.showQuizQuestion(state, msgID)
		return nil
	}
}

func (h *Handler) showQuizQuestion(state *storage.ChatState, msgID int) {
	quiz := state.Quiz
	if quiz.Completed() {
		kb := buildRetryKeyboard(actionQuiz)
		h.show(state.ChatID, msgID, formatQuizResult(quiz.Score(), len(quiz.Questions)), &kb)
		return
	}

	snap := quiz.Snapshot()
	kb := buildQuizKeyboard(snap)
	h.show(state.ChatID, msgID, formatQuizQuestion(snap), &kb)
}

// examHandler generates a timed exam and starts its countdown. A running exam
// is replaced and its timer stopped.
func (h *Handler) examHandler(state *storage.ChatState, msgID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		pool, err := h.vocabulary.ByLevel(ctx, state.Level)
		if err != nil {
			return fmt.Errorf("load level %d: %w", state.Level, err)
		}

		exam, err := h.exercises.NewExam(pool)
		if err != nil {
			return fmt.Errorf("new exam: %w", err)
		}

		timer := storage.NewExamTimer(chatID, exam.ID, h.newTicker(entities.TickInterval))
		state.SetExam(exam, timer)
		go timer.Run(ctx, h.ticks)

		h.logger.Info("exam started",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", exam.ID),
			zap.Int("level", state.Level),
			zap.Int("questions", len(exam.Questions)),
		)

		state.ExamMessageID = h.showExamQuestion(ctx, state, msgID, true)
		return nil
	}
}

// showExamQuestion draws the exam's current question. With announce set a
// listening question is spoken to the chat.
func (h *Handler) showExamQuestion(ctx context.Context, state *storage.ChatState, msgID int, announce bool) int {
	exam := state.Exam
	if exam.Completed() {
		h.showExamResult(state, false)
		return state.ExamMessageID
	}

	snap := exam.Snapshot()
	kb := buildExamKeyboard(snap)
	id := h.show(state.ChatID, msgID, formatExamQuestion(snap), &kb)

	if announce && snap.Question.Kind == entities.KindListening {
		h.speak(ctx, state.ChatID, snap.Question.Prompt)
	}
	return id
}

func (h *Handler) showExamResult(state *storage.ChatState, timedOut bool) {
	exam := state.Exam
	kb := buildRetryKeyboard(actionExam)
	text := formatExamResult(exam.Score(), len(exam.Questions), exam.Passed(h.cfg.PassRatio), timedOut)

	state.ExamMessageID = h.show(state.ChatID, state.ExamMessageID, text, &kb)
}

// builderHandler scrambles the example sentence of a random word from the chat's level.
func (h *Handler) builderHandler(state *storage.ChatState, msgID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		pool, err := h.vocabulary.ByLevel(ctx, state.Level)
		if err != nil {
			return fmt.Errorf("load level %d: %w", state.Level, err)
		}

		puzzle, err := h.exercises.NewPuzzle(pool)
		if err != nil {
			return fmt.Errorf("new puzzle: %w", err)
		}
		state.Puzzle = puzzle

		h.showPuzzle(state, msgID, puzzlePending)
		return nil
	}
}

func (h *Handler) showPuzzle(state *storage.ChatState, msgID int, status puzzleStatus) {
	p := state.Puzzle
	kb := buildPuzzleKeyboard(p, status == puzzleCorrect)
	h.show(state.ChatID, msgID, formatPuzzle(p, status), &kb)
}
