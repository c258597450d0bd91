package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

// VocabularyRepository provides the read-only vocabulary dataset.
type VocabularyRepository interface {
	GetAll(ctx context.Context) ([]entities.VocabularyItem, error)
}

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// Rand is the source of randomness for exercise generation. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}
