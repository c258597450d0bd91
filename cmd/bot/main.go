package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/clock"
	"github.com/aliskhannn/hsk-trainer-bot/internal/config"
	"github.com/aliskhannn/hsk-trainer-bot/internal/delivery/telegram"
	"github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/hsk-trainer-bot/internal/logger"
	"github.com/aliskhannn/hsk-trainer-bot/internal/repository"
	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
	"github.com/aliskhannn/hsk-trainer-bot/internal/speech"
	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

func main() {
	cfg, err := config.Load(true)
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vocabRepo, closeRepo, err := newVocabularyRepository(ctx, cfg)
	if err != nil {
		lg.Fatal("failed to open vocabulary", zap.String("source", cfg.Vocabulary.Source), zap.Error(err))
	}
	defer closeRepo()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create telegram bot", zap.Error(err))
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	vocabService := service.NewVocabularyService(vocabRepo, rng)
	generator := service.NewGenerator(rng, service.ExerciseConfig{
		QuizSize:     cfg.Quiz.Size,
		ExamSize:     cfg.Exam.Size,
		ExamDuration: cfg.Exam.Duration,
	})

	speaker, err := newSpeaker(cfg.Speech, lg)
	if err != nil {
		lg.Fatal("failed to set up speech", zap.Error(err))
	}

	store := storage.NewSessionStore(nil)
	janitor := storage.NewJanitor(store, cfg.Session.IdleTTL, cfg.Session.SweepInterval, lg)
	go func() {
		if err := janitor.Start(ctx); err != nil {
			lg.Error("session janitor stopped", zap.Error(err))
		}
	}()

	handler := telegram.NewHandler(
		bot,
		lg,
		vocabService,
		generator,
		speaker,
		store,
		clock.NewTicker,
		telegram.HandlerConfig{
			PassRatio:     cfg.Exam.PassRatio,
			SpeechTimeout: cfg.Speech.Timeout,
		},
	)

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("telegram handler failed", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}

// newVocabularyRepository opens the configured vocabulary source. The returned
// func releases it.
func newVocabularyRepository(ctx context.Context, cfg *config.Config) (service.VocabularyRepository, func(), error) {
	if cfg.Vocabulary.Source == config.SourceFile {
		repo, err := repository.NewVocabularyRepository(cfg.Vocabulary.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	dsn, err := cfg.DB.DSN()
	if err != nil {
		return nil, nil, err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        cfg.DB.MaxConnections,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	return pgrepo.NewVocabularyRepository(pool), pool.Close, nil
}

// newSpeaker builds the pronunciation chain: Gemini behind retry and a circuit
// breaker when a key is configured, then the keyless Translate voice.
func newSpeaker(cfg config.Speech, lg *zap.Logger) (*speech.Speaker, error) {
	cache, err := speech.NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	var chain []speech.Synthesizer
	if cfg.APIKey != "" {
		gemini := speech.NewGeminiSynthesizer(speech.GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Voice:   cfg.Voice,
			Timeout: cfg.Timeout,
		})
		chain = append(chain, speech.NewResilientSynthesizer(gemini, speech.DefaultResilientConfig(), lg))
	} else {
		lg.Info("GEMINI_API_KEY not set, using the fallback voice only")
	}
	chain = append(chain, speech.NewTranslateSynthesizer("", cfg.Timeout))

	return speech.NewSpeaker(lg, cache, chain...), nil
}
