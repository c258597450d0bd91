package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

// wordsHandler lists the current level's vocabulary, filtered by query when given.
func (h *Handler) wordsHandler(state *storage.ChatState, query string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		state.Browse = storage.BrowseCursor{Query: strings.TrimSpace(query)}
		return h.showWordsPage(ctx, state, 0)
	}
}

// showWordsPage renders the page of the chat's browse cursor into msgID, or a new message.
func (h *Handler) showWordsPage(ctx context.Context, state *storage.ChatState, msgID int) error {
	items, err := h.vocabulary.Search(ctx, state.Level, state.Browse.Query)
	if err != nil {
		return fmt.Errorf("search vocabulary: %w", err)
	}

	if len(items) == 0 {
		h.send(newPlainMessage(state.ChatID, msgNoWords))
		return nil
	}

	page := h.vocabulary.Page(items, state.Browse.Page)
	state.Browse.Page = page.Index

	h.show(state.ChatID, msgID, formatWordsPage(page, state.Level, state.Browse.Query), buildWordsKeyboard(page))
	return nil
}

// cardHandler draws a random flashcard from the current level.
func (h *Handler) cardHandler(state *storage.ChatState, msgID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		item, err := h.vocabulary.Random(ctx, state.Level)
		if err != nil {
			return fmt.Errorf("random card: %w", err)
		}

		kb := buildFlashcardKeyboard(item)
		h.show(chatID, msgID, formatFlashcard(item), &kb)
		return nil
	}
}
