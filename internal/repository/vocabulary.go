package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

var (
	ErrItemNotFound      = errors.New("vocabulary item not found")
	ErrDuplicateID       = errors.New("duplicate vocabulary id")
	ErrUnsupportedFormat = errors.New("unsupported vocabulary file format")
)

// VocabularyRepository serves the HSK dataset loaded from a JSON or YAML file.
// The dataset is immutable after loading.
type VocabularyRepository struct {
	items []entities.VocabularyItem
	byID  map[int]entities.VocabularyItem
}

// NewVocabularyRepository loads the dataset at path.
func NewVocabularyRepository(path string) (*VocabularyRepository, error) {
	items, err := LoadVocabulary(path)
	if err != nil {
		return nil, err
	}

	return NewVocabularyRepositoryFromItems(items)
}

// NewVocabularyRepositoryFromItems wraps an in-memory dataset. Item ids must be unique.
func NewVocabularyRepositoryFromItems(items []entities.VocabularyItem) (*VocabularyRepository, error) {
	byID := make(map[int]entities.VocabularyItem, len(items))
	for _, item := range items {
		if _, ok := byID[item.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		byID[item.ID] = item
	}

	return &VocabularyRepository{
		items: append([]entities.VocabularyItem(nil), items...),
		byID:  byID,
	}, nil
}

// GetAll returns a copy of every item in file order.
func (r *VocabularyRepository) GetAll(_ context.Context) ([]entities.VocabularyItem, error) {
	return append([]entities.VocabularyItem(nil), r.items...), nil
}

// GetByID returns the item with the given id.
func (r *VocabularyRepository) GetByID(_ context.Context, id int) (*entities.VocabularyItem, error) {
	item, ok := r.byID[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// LoadVocabulary decodes a dataset file. The format is chosen by extension:
// .json, .yaml or .yml. Both expect a top-level "items" list.
func LoadVocabulary(path string) ([]entities.VocabularyItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var wrapper struct {
		Items []entities.VocabularyItem `json:"items" yaml:"items"`
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &wrapper)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &wrapper)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary: %w", err)
	}

	return wrapper.Items, nil
}
