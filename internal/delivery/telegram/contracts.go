package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
	"github.com/aliskhannn/hsk-trainer-bot/internal/speech"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type VocabularyService interface {
	Levels(ctx context.Context) ([]service.LevelCount, error)
	ByLevel(ctx context.Context, level int) ([]entities.VocabularyItem, error)
	Search(ctx context.Context, level int, term string) ([]entities.VocabularyItem, error)
	Page(items []entities.VocabularyItem, index int) service.Page
	Random(ctx context.Context, level int) (*entities.VocabularyItem, error)
	Item(ctx context.Context, id int) (*entities.VocabularyItem, error)
}

type ExerciseGenerator interface {
	NewQuiz(pool []entities.VocabularyItem) (*entities.Session, error)
	NewExam(pool []entities.VocabularyItem) (*entities.Session, error)
	NewPuzzle(pool []entities.VocabularyItem) (*entities.SentencePuzzle, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) (*speech.Audio, error)
}
