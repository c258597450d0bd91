package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/clock"
	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

// examRefreshEvery is how often the running exam message is redrawn with the new countdown.
const examRefreshEvery = 30 * time.Second

// HandlerConfig holds the tunables of the Telegram handler.
type HandlerConfig struct {
	PassRatio     float64       // share of correct answers needed to pass an exam
	SpeechTimeout time.Duration // upper bound for one pronunciation request
}

type Handler struct {
	bot        BotAPI
	logger     *zap.Logger
	vocabulary VocabularyService
	exercises  ExerciseGenerator
	speaker    Speaker
	store      *storage.SessionStore
	newTicker  clock.Factory
	cfg        HandlerConfig

	ticks  chan storage.Tick
	speech sync.WaitGroup
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	vocabulary VocabularyService,
	exercises ExerciseGenerator,
	speaker Speaker,
	store *storage.SessionStore,
	newTicker clock.Factory,
	cfg HandlerConfig,
) *Handler {
	if cfg.SpeechTimeout <= 0 {
		cfg.SpeechTimeout = 20 * time.Second
	}

	return &Handler{
		bot:        bot,
		logger:     logger,
		vocabulary: vocabulary,
		exercises:  exercises,
		speaker:    speaker,
		store:      store,
		newTicker:  newTicker,
		cfg:        cfg,
		ticks:      make(chan storage.Tick),
	}
}

// Run processes updates and exam ticks on a single goroutine until ctx ends.
// Chat state is only ever mutated from here.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	defer func() {
		h.bot.StopReceivingUpdates()
		h.store.CloseAll()
		h.speech.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		case tick := <-h.ticks:
			h.handleTick(ctx, tick)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	state := h.store.Get(chatID)

	if update.Message.IsCommand() {
		h.handleCommand(ctx, state, update.Message.Command(), update.Message.CommandArguments())
		return
	}

	// Plain text searches the current level.
	_ = h.withErrorHandling(h.wordsHandler(state, update.Message.Text))(ctx, chatID)
}

// handleTick advances a running exam. Ticks of replaced or finished exams are dropped.
func (h *Handler) handleTick(ctx context.Context, tick storage.Tick) {
	state, ok := h.store.Peek(tick.ChatID)
	if !ok || state.Exam == nil || state.Exam.ID != tick.SessionID {
		h.logger.Debug("stale exam tick",
			zap.Int64("chat_id", tick.ChatID),
			zap.String("session_id", tick.SessionID),
		)
		return
	}

	exam := state.Exam
	if exam.Completed() {
		state.StopExamTimer()
		return
	}

	if exam.Tick() {
		h.logger.Info("exam timed out",
			zap.Int64("chat_id", tick.ChatID),
			zap.String("session_id", exam.ID),
			zap.Int("score", exam.Score()),
		)
		state.StopExamTimer()
		h.showExamResult(state, true)
		return
	}

	if remaining, _ := exam.Remaining(); remaining%examRefreshEvery == 0 {
		h.showExamQuestion(ctx, state, state.ExamMessageID, false)
	}
}

// show sends a new message when msgID is 0 and edits msgID otherwise.
// It returns the id of the message that now holds the content.
func (h *Handler) show(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) int {
	if msgID == 0 {
		msg := newMessage(chatID, text)
		if kb != nil {
			msg.ReplyMarkup = kb
		}

		sent, err := h.bot.Send(msg)
		if err != nil {
			h.logger.Error("failed to send telegram message",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			return 0
		}
		return sent.MessageID
	}

	edit := newEdit(chatID, msgID, text)
	if kb != nil {
		edit.ReplyMarkup = kb
	}
	h.send(edit)
	return msgID
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newPlainMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
