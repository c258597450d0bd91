package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// speak pronounces text in the background and sends the audio to the chat.
// Failures reach the chat as a short notice; nothing else depends on the result.
func (h *Handler) speak(ctx context.Context, chatID int64, text string) {
	if h.speaker == nil {
		h.send(newPlainMessage(chatID, msgSpeechFailed))
		return
	}

	h.speech.Add(1)
	go func() {
		defer h.speech.Done()

		ctx, cancel := context.WithTimeout(ctx, h.cfg.SpeechTimeout)
		defer cancel()

		audio, err := h.speaker.Speak(ctx, text)
		if err != nil {
			h.logger.Warn("speech unavailable",
				zap.Int64("chat_id", chatID),
				zap.String("text", text),
				zap.Error(err),
			)
			h.send(newPlainMessage(chatID, msgSpeechFailed))
			return
		}

		msg := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{
			Name:  audio.FileName(),
			Bytes: audio.Data,
		})
		msg.Title = text
		msg.Performer = "HSK trainer"
		h.send(msg)
	}()
}
