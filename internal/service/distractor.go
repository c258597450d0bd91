package service

import (
	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

const (
	attemptsPerItem = 10
	minAttempts     = 32
)

// FieldSelector extracts the compared field from a vocabulary item.
type FieldSelector func(item entities.VocabularyItem) string

// EnglishField selects the word's English translation.
func EnglishField(item entities.VocabularyItem) string {
	return item.English
}

// ExampleEnglishField selects the example sentence's English translation.
func ExampleEnglishField(item entities.VocabularyItem) string {
	return item.ExampleEnglish
}

// Sampler draws wrong answers for multiple choice questions.
type Sampler struct {
	rng Rand
}

// NewSampler creates a new distractor sampler.
func NewSampler(rng Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Sample picks up to count distinct field values from random pool items, none equal to correct.
// Random draws are bounded; if they come up short, a single pass over a shuffled
// copy of the pool collects whatever distinct values remain. Small pools yield
// fewer than count values instead of looping forever.
func (s *Sampler) Sample(correct string, pool []entities.VocabularyItem, field FieldSelector, count int) []string {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	out := make([]string, 0, count)
	used := map[string]struct{}{correct: {}}

	accept := func(candidate string) {
		if _, ok := used[candidate]; ok {
			return
		}
		used[candidate] = struct{}{}
		out = append(out, candidate)
	}

	attempts := max(len(pool)*attemptsPerItem, minAttempts)
	for i := 0; i < attempts && len(out) < count; i++ {
		accept(field(pool[s.rng.Intn(len(pool))]))
	}

	if len(out) < count {
		for _, idx := range s.permutation(len(pool)) {
			if len(out) >= count {
				break
			}
			accept(field(pool[idx]))
		}
	}

	return out
}

// permutation returns a uniformly shuffled list of indexes 0..n-1.
func (s *Sampler) permutation(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	s.rng.Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
	return idx
}
