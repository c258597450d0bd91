package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres"
)

var ErrVocabularyNotFound = errors.New("vocabulary item not found")

const schema = `
	CREATE TABLE IF NOT EXISTS vocabulary (
		id              INTEGER PRIMARY KEY,
		hanzi           TEXT NOT NULL,
		pinyin          TEXT NOT NULL,
		english         TEXT NOT NULL,
		lao             TEXT NOT NULL DEFAULT '',
		example_hanzi   TEXT NOT NULL DEFAULT '',
		example_pinyin  TEXT NOT NULL DEFAULT '',
		example_english TEXT NOT NULL DEFAULT '',
		example_lao     TEXT NOT NULL DEFAULT '',
		level           SMALLINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS vocabulary_level_idx ON vocabulary (level);
`

const selectColumns = `
	SELECT id, hanzi, pinyin, english, lao,
	       example_hanzi, example_pinyin, example_english, example_lao, level
	FROM vocabulary
`

// VocabularyRepository provides access to the vocabulary table.
type VocabularyRepository struct {
	db postgres.DBTX
}

// NewVocabularyRepository creates a new VocabularyRepository on a pool or a transaction.
func NewVocabularyRepository(db postgres.DBTX) *VocabularyRepository {
	return &VocabularyRepository{db: db}
}

// EnsureSchema creates the vocabulary table if it does not exist yet.
func (r *VocabularyRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure vocabulary schema: %w", err)
	}
	return nil
}

// GetAll returns every item ordered by level and id.
func (r *VocabularyRepository) GetAll(ctx context.Context) ([]entities.VocabularyItem, error) {
	rows, err := r.db.Query(ctx, selectColumns+` ORDER BY level, id`)
	if err != nil {
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}
	defer rows.Close()

	items := make([]entities.VocabularyItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vocabulary: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetByID returns a single item.
func (r *VocabularyRepository) GetByID(ctx context.Context, id int) (*entities.VocabularyItem, error) {
	item, err := scanItem(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVocabularyNotFound
		}
		return nil, fmt.Errorf("get vocabulary item %d: %w", id, err)
	}

	return &item, nil
}

// Upsert inserts the items in one batch, overwriting rows with the same id.
func (r *VocabularyRepository) Upsert(ctx context.Context, items []entities.VocabularyItem) error {
	query := `
		INSERT INTO vocabulary (
			id, hanzi, pinyin, english, lao,
			example_hanzi, example_pinyin, example_english, example_lao, level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			hanzi = EXCLUDED.hanzi,
			pinyin = EXCLUDED.pinyin,
			english = EXCLUDED.english,
			lao = EXCLUDED.lao,
			example_hanzi = EXCLUDED.example_hanzi,
			example_pinyin = EXCLUDED.example_pinyin,
			example_english = EXCLUDED.example_english,
			example_lao = EXCLUDED.example_lao,
			level = EXCLUDED.level
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(
			query,
			item.ID,
			item.Hanzi,
			item.Pinyin,
			item.English,
			item.Lao,
			item.ExampleHanzi,
			item.ExamplePinyin,
			item.ExampleEnglish,
			item.ExampleLao,
			item.Level,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert vocabulary item %d: %w", item.ID, err)
		}
	}

	return nil
}

// Count returns the number of stored items per level.
func (r *VocabularyRepository) Count(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.Query(ctx, `SELECT level, COUNT(*) FROM vocabulary GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("count vocabulary: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var level, count int
		if err = rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan vocabulary count: %w", err)
		}
		counts[level] = count
	}

	return counts, rows.Err()
}

func scanItem(row pgx.Row) (entities.VocabularyItem, error) {
	var item entities.VocabularyItem
	err := row.Scan(
		&item.ID,
		&item.Hanzi,
		&item.Pinyin,
		&item.English,
		&item.Lao,
		&item.ExampleHanzi,
		&item.ExamplePinyin,
		&item.ExampleEnglish,
		&item.ExampleLao,
		&item.Level,
	)
	return item, err
}
