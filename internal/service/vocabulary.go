package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

// PageSize is the number of flashcards shown per page.
const PageSize = 12

// ErrItemNotFound is returned when no vocabulary item matches the request.
var ErrItemNotFound = errors.New("vocabulary item not found")

// LevelCount is the number of words available at one HSK level.
type LevelCount struct {
	Level int
	Count int
}

// Page is one slice of a browsed word list.
type Page struct {
	Items []entities.VocabularyItem
	Index int
	Total int
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Index > 0
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Index < p.Total-1
}

type VocabularyService struct {
	repository VocabularyRepository
	rng        Rand
}

func NewVocabularyService(repository VocabularyRepository, rng Rand) *VocabularyService {
	return &VocabularyService{
		repository: repository,
		rng:        rng,
	}
}

// Levels returns word counts per level in ascending level order.
func (s *VocabularyService) Levels(ctx context.Context) ([]LevelCount, error) {
	items, err := s.repository.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}

	groups := lo.GroupBy(items, func(item entities.VocabularyItem) int {
		return item.Level
	})

	levels := lo.MapToSlice(groups, func(level int, group []entities.VocabularyItem) LevelCount {
		return LevelCount{Level: level, Count: len(group)}
	})
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Level < levels[j].Level
	})

	return levels, nil
}

// ByLevel returns every item of the given level. Level 0 means all levels.
func (s *VocabularyService) ByLevel(ctx context.Context, level int) ([]entities.VocabularyItem, error) {
	items, err := s.repository.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}

	if level == 0 {
		return items, nil
	}

	return lo.Filter(items, func(item entities.VocabularyItem, _ int) bool {
		return item.Level == level
	}), nil
}

// Search filters the level's items by term. Pinyin and English match
// case-insensitively, hanzi and Lao match as plain substrings.
// An empty term returns the whole level.
func (s *VocabularyService) Search(ctx context.Context, level int, term string) ([]entities.VocabularyItem, error) {
	items, err := s.ByLevel(ctx, level)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return items, nil
	}

	lower := strings.ToLower(term)
	return lo.Filter(items, func(item entities.VocabularyItem, _ int) bool {
		return strings.Contains(item.Hanzi, term) ||
			strings.Contains(item.Lao, term) ||
			strings.Contains(strings.ToLower(item.Pinyin), lower) ||
			strings.Contains(strings.ToLower(item.English), lower)
	}), nil
}

// Page returns the requested page of items, clamping index into range.
func (s *VocabularyService) Page(items []entities.VocabularyItem, index int) Page {
	chunks := lo.Chunk(items, PageSize)
	if len(chunks) == 0 {
		return Page{Items: []entities.VocabularyItem{}, Index: 0, Total: 0}
	}

	index = max(0, min(index, len(chunks)-1))
	return Page{
		Items: chunks[index],
		Index: index,
		Total: len(chunks),
	}
}

// Random returns a random item of the given level.
func (s *VocabularyService) Random(ctx context.Context, level int) (*entities.VocabularyItem, error) {
	items, err := s.ByLevel(ctx, level)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrItemNotFound
	}

	item := items[s.rng.Intn(len(items))]
	return &item, nil
}

// Item returns the item with the given id.
func (s *VocabularyService) Item(ctx context.Context, id int) (*entities.VocabularyItem, error) {
	items, err := s.repository.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}

	item, ok := lo.Find(items, func(item entities.VocabularyItem) bool {
		return item.ID == id
	})
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}
