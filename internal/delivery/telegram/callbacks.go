package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	state := h.store.Get(cb.Message.Chat.ID)
	msgID := cb.Message.MessageID
	data := decodeCallback(cb.Data)

	var toast string
	switch data.Action {
	case actionQuiz:
		toast = h.handleQuizCallback(state, msgID, data)
	case actionExam:
		toast = h.handleExamCallback(ctx, state, msgID, data)
	case actionBuilder:
		toast = h.handleBuilderCallback(ctx, state, msgID, data)
	case actionWords:
		toast = h.handleWordsCallback(ctx, state, msgID, data)
	case actionSpeak:
		toast = h.handleSpeakCallback(ctx, state, data)
	case actionNew:
		toast = h.handleNewCallback(ctx, state, msgID, data)
	default:
		h.logger.Warn("unknown callback",
			zap.Int64("chat_id", state.ChatID),
			zap.String("data", cb.Data),
		)
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, toast)
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

// activeSession returns s when the callback belongs to it and s still accepts input.
func activeSession(s *entities.Session, data callbackData) (*entities.Session, bool) {
	if s == nil || s.Completed() || data.param(0) != sessionToken(s.ID) {
		return nil, false
	}
	return s, true
}

// answerOption resolves the question and option indexes of an answer callback
// against the session's current question.
func answerOption(s *entities.Session, data callbackData) (int, string, bool) {
	qi, ok := data.intParam(2)
	if !ok || qi != s.CurrentIndex() {
		return 0, "", false
	}
	oi, ok := data.intParam(3)
	if !ok {
		return 0, "", false
	}

	q, ok := s.Current()
	if !ok || oi >= len(q.Options) {
		return 0, "", false
	}
	return qi, q.Options[oi], true
}

func (h *Handler) handleQuizCallback(state *storage.ChatState, msgID int, data callbackData) string {
	quiz, ok := activeSession(state.Quiz, data)
	if !ok {
		return msgStaleSession
	}

	switch data.param(1) {
	case sessionAnswer:
		qi, answer, ok := answerOption(quiz, data)
		if !ok {
			return ""
		}
		if !quiz.RecordAnswer(qi, answer) {
			return msgAlreadyAnswered
		}
		h.showQuizQuestion(state, msgID)

	case sessionNext:
		if _, answered := quiz.Answer(quiz.CurrentIndex()); !answered {
			return ""
		}
		quiz.Advance()
		if quiz.Completed() {
			h.logger.Info("quiz completed",
				zap.Int64("chat_id", state.ChatID),
				zap.String("session_id", quiz.ID),
				zap.Int("score", quiz.Score()),
			)
		}
		h.showQuizQuestion(state, msgID)
	}

	return ""
}

func (h *Handler) handleExamCallback(ctx context.Context, state *storage.ChatState, msgID int, data callbackData) string {
	exam, ok := activeSession(state.Exam, data)
	if !ok {
		return msgStaleSession
	}
	state.ExamMessageID = msgID

	switch data.param(1) {
	case sessionAnswer:
		qi, answer, ok := answerOption(exam, data)
		if !ok {
			return ""
		}
		if !exam.RecordAnswer(qi, answer) {
			return msgAlreadyAnswered
		}
		h.showExamQuestion(ctx, state, msgID, false)

	case sessionNext:
		if exam.CurrentIndex() >= len(exam.Questions)-1 {
			return ""
		}
		exam.Advance()
		h.showExamQuestion(ctx, state, msgID, true)

	case sessionPrev:
		if exam.CurrentIndex() == 0 {
			return ""
		}
		exam.Retreat()
		h.showExamQuestion(ctx, state, msgID, true)

	case sessionSubmit:
		exam.Submit()
		state.StopExamTimer()
		h.logger.Info("exam submitted",
			zap.Int64("chat_id", state.ChatID),
			zap.String("session_id", exam.ID),
			zap.Int("score", exam.Score()),
			zap.Int("answered", exam.AnsweredCount()),
		)
		h.showExamResult(state, false)
	}

	return ""
}

func (h *Handler) handleBuilderCallback(ctx context.Context, state *storage.ChatState, msgID int, data callbackData) string {
	p := state.Puzzle
	if p == nil || data.param(0) != sessionToken(p.ID) {
		return msgStaleSession
	}

	switch data.param(1) {
	case builderPlace, builderUnplace:
		i, ok := data.intParam(2)
		if !ok {
			return ""
		}
		move := p.Place
		if data.param(1) == builderUnplace {
			move = p.Unplace
		}
		if move(i) {
			h.showPuzzle(state, msgID, puzzlePending)
		}

	case builderCheck:
		if !p.Ready() {
			return msgNotReady
		}
		if !p.Check() {
			h.showPuzzle(state, msgID, puzzleIncorrect)
			return ""
		}
		h.showPuzzle(state, msgID, puzzleCorrect)
		state.Puzzle = nil
		h.speak(ctx, state.ChatID, p.Target.ExampleHanzi)

	case builderSkip:
		_ = h.withErrorHandling(h.builderHandler(state, msgID))(ctx, state.ChatID)
	}

	return ""
}

func (h *Handler) handleWordsCallback(ctx context.Context, state *storage.ChatState, msgID int, data callbackData) string {
	page, ok := data.intParam(0)
	if !ok {
		return ""
	}
	state.Browse.Page = page

	_ = h.withErrorHandling(func(ctx context.Context, chatID int64) error {
		return h.showWordsPage(ctx, state, msgID)
	})(ctx, state.ChatID)
	return ""
}

func (h *Handler) handleSpeakCallback(ctx context.Context, state *storage.ChatState, data callbackData) string {
	id, ok := data.intParam(1)
	if !ok {
		return ""
	}

	item, err := h.vocabulary.Item(ctx, id)
	if err != nil {
		h.logger.Warn("speak unknown item", zap.Int("item_id", id), zap.Error(err))
		return msgSpeechFailed
	}

	text := item.Hanzi
	if data.param(0) == speakExample && item.ExampleHanzi != "" {
		text = item.ExampleHanzi
	}
	h.speak(ctx, state.ChatID, text)
	return "🔊 " + text
}

func (h *Handler) handleNewCallback(ctx context.Context, state *storage.ChatState, msgID int, data callbackData) string {
	var fn HandlerFunc
	switch data.param(0) {
	case actionQuiz:
		fn = h.quizHandler(state, msgID)
	case actionExam:
		fn = h.examHandler(state, msgID)
	case actionBuilder:
		fn = h.builderHandler(state, msgID)
	case newCard:
		fn = h.cardHandler(state, msgID)
	default:
		return ""
	}

	_ = h.withErrorHandling(fn)(ctx, state.ChatID)
	return ""
}
