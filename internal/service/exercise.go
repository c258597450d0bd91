package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

// ErrNoContent is returned when the vocabulary pool is too small to build an exercise.
var ErrNoContent = errors.New("not enough vocabulary for this exercise")

const (
	defaultQuizSize     = 10
	defaultExamSize     = 15
	defaultExamDuration = 10 * time.Minute
)

// KindPattern assigns a question kind to the question at index.
type KindPattern func(index int, rng Rand) entities.QuestionKind

// QuizPattern flips a coin between word matching and sentence translation.
func QuizPattern(_ int, rng Rand) entities.QuestionKind {
	if rng.Intn(2) == 0 {
		return entities.KindMatching
	}
	return entities.KindTranslation
}

var examKinds = []entities.QuestionKind{
	entities.KindListening,
	entities.KindReading,
	entities.KindSentence,
}

// ExamPattern cycles listening, reading and sentence sections.
func ExamPattern(index int, _ Rand) entities.QuestionKind {
	return examKinds[index%len(examKinds)]
}

// ExerciseConfig sets session sizes and the exam time limit.
type ExerciseConfig struct {
	QuizSize     int
	ExamSize     int
	ExamDuration time.Duration
}

// Generator builds question sequences, sessions and sentence puzzles from a vocabulary pool.
// It is not safe for concurrent use: the random source is shared.
type Generator struct {
	rng         Rand
	synthesizer *Synthesizer
	cfg         ExerciseConfig
}

// NewGenerator creates a new exercise generator. Zero config values fall back to defaults.
func NewGenerator(rng Rand, cfg ExerciseConfig) *Generator {
	if cfg.QuizSize <= 0 {
		cfg.QuizSize = defaultQuizSize
	}
	if cfg.ExamSize <= 0 {
		cfg.ExamSize = defaultExamSize
	}
	if cfg.ExamDuration <= 0 {
		cfg.ExamDuration = defaultExamDuration
	}

	return &Generator{
		rng:         rng,
		synthesizer: NewSynthesizer(NewSampler(rng), rng),
		cfg:         cfg,
	}
}

// Generate draws up to size random items from pool and builds one question per item.
// An empty pool yields an empty sequence.
func (g *Generator) Generate(pool []entities.VocabularyItem, size int, pattern KindPattern) []entities.Question {
	if len(pool) == 0 || size <= 0 {
		return []entities.Question{}
	}

	picks := takeFirst(g.permutation(len(pool)), size)

	questions := make([]entities.Question, 0, len(picks))
	for i, idx := range picks {
		q := g.synthesizer.Synthesize(&pool[idx], pool, pattern(i, g.rng))
		q.ID = fmt.Sprintf("q-%d", i)
		questions = append(questions, q)
	}

	return questions
}

// NewQuiz starts a fresh untimed quiz session.
func (g *Generator) NewQuiz(pool []entities.VocabularyItem) (*entities.Session, error) {
	questions := g.Generate(pool, g.cfg.QuizSize, QuizPattern)
	if len(questions) == 0 {
		return nil, ErrNoContent
	}

	return entities.NewSession(uuid.NewString(), entities.ModeQuiz, questions, nil), nil
}

// NewExam starts a fresh timed exam session.
func (g *Generator) NewExam(pool []entities.VocabularyItem) (*entities.Session, error) {
	questions := g.Generate(pool, g.cfg.ExamSize, ExamPattern)
	if len(questions) == 0 {
		return nil, ErrNoContent
	}

	countdown := entities.NewCountdown(g.cfg.ExamDuration)
	return entities.NewSession(uuid.NewString(), entities.ModeExam, questions, countdown), nil
}

// NewPuzzle picks a random item and scrambles its example sentence.
func (g *Generator) NewPuzzle(pool []entities.VocabularyItem) (*entities.SentencePuzzle, error) {
	if len(pool) == 0 {
		return nil, ErrNoContent
	}

	item := &pool[g.rng.Intn(len(pool))]
	if entities.StripPunctuation(item.ExampleHanzi) == "" {
		return nil, fmt.Errorf("item %d has no example sentence: %w", item.ID, ErrNoContent)
	}

	return entities.NewSentencePuzzle(uuid.NewString(), item, g.rng), nil
}

// permutation returns a uniformly shuffled list of indexes 0..n-1.
func (g *Generator) permutation(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	g.rng.Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
	return idx
}

// takeFirst returns the first n elements of nums, or the whole slice if it is shorter.
func takeFirst(nums []int, n int) []int {
	if n <= 0 {
		return nil
	}
	if len(nums) <= n {
		return nums
	}
	return nums[:n]
}
