package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

const importBatchSize = 200

// VocabularyWriter stores vocabulary items, replacing rows with the same id.
type VocabularyWriter interface {
	Upsert(ctx context.Context, items []entities.VocabularyItem) error
}

// WriterFactory binds a VocabularyWriter to an open transaction.
type WriterFactory func(tx pgx.Tx) VocabularyWriter

type ImportService struct {
	tr        Transactor
	newWriter WriterFactory
}

func NewImportService(tr Transactor, newWriter WriterFactory) *ImportService {
	return &ImportService{
		tr:        tr,
		newWriter: newWriter,
	}
}

// Import writes all items in batches inside one transaction and returns how many were written.
// Either every batch lands or none does.
func (s *ImportService) Import(ctx context.Context, items []entities.VocabularyItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	err := s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		writer := s.newWriter(tx)

		for i, batch := range lo.Chunk(items, importBatchSize) {
			if err := writer.Upsert(ctx, batch); err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import vocabulary: %w", err)
	}

	return len(items), nil
}
