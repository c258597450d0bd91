package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

// Commands returns the bot's command menu.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Welcome and level overview"},
		{Command: "words", Description: "Browse or search flashcards"},
		{Command: "card", Description: "Random flashcard"},
		{Command: "quiz", Description: "Start a quiz"},
		{Command: "exam", Description: "Start a timed mock exam"},
		{Command: "builder", Description: "Sentence builder"},
		{Command: "level", Description: "Switch HSK level"},
		{Command: "say", Description: "Pronounce Chinese text"},
		{Command: "help", Description: "List commands"},
	}
}

func (h *Handler) handleCommand(ctx context.Context, state *storage.ChatState, command, args string) {
	chatID := state.ChatID

	var fn HandlerFunc
	switch command {
	case "start":
		fn = h.startHandler(state)
	case "help":
		h.send(newMessage(chatID, helpText()))
		return
	case "level":
		fn = h.levelHandler(state, args)
	case "words":
		fn = h.wordsHandler(state, args)
	case "card":
		fn = h.cardHandler(state, 0)
	case "quiz":
		fn = h.quizHandler(state, 0)
	case "exam":
		fn = h.examHandler(state, 0)
	case "builder":
		fn = h.builderHandler(state, 0)
	case "say":
		fn = h.sayHandler(args)
	default:
		h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	_ = h.withErrorHandling(fn)(ctx, chatID)
}

func (h *Handler) startHandler(state *storage.ChatState) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		levels, err := h.vocabulary.Levels(ctx)
		if err != nil {
			return fmt.Errorf("levels: %w", err)
		}

		h.send(newMessage(chatID, welcomeText(levels, state.Level)))
		return nil
	}
}

// levelHandler switches the level new exercises and flashcards are drawn from.
// Running exercises keep their questions.
func (h *Handler) levelHandler(state *storage.ChatState, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		level, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil {
			h.send(newPlainMessage(chatID, msgUseLevel))
			return nil
		}

		levels, err := h.vocabulary.Levels(ctx)
		if err != nil {
			return fmt.Errorf("levels: %w", err)
		}

		found, ok := lo.Find(levels, func(l service.LevelCount) bool {
			return l.Level == level
		})
		if !ok {
			h.send(newPlainMessage(chatID, unknownLevelText(levels)))
			return nil
		}

		state.Level = found.Level
		state.Browse = storage.BrowseCursor{}
		h.send(newMessage(chatID, levelChangedText(found.Level, found.Count)))
		return nil
	}
}

func (h *Handler) sayHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		text := strings.TrimSpace(args)
		if text == "" {
			h.send(newPlainMessage(chatID, msgUseSay))
			return nil
		}

		h.speak(ctx, chatID, text)
		return nil
	}
}
