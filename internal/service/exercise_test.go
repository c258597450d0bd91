package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

func greetingsPool() []entities.VocabularyItem {
	return []entities.VocabularyItem{
		{ID: 1, Hanzi: "你好", English: "hello"},
		{ID: 2, Hanzi: "谢谢", English: "thank you"},
		{ID: 3, Hanzi: "再见", English: "goodbye"},
		{ID: 4, Hanzi: "是", English: "yes"},
	}
}

func hskPool(n int) []entities.VocabularyItem {
	pool := make([]entities.VocabularyItem, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, entities.VocabularyItem{
			ID:             i + 1,
			Hanzi:          fmt.Sprintf("字%d", i),
			English:        fmt.Sprintf("word %d", i),
			ExampleHanzi:   fmt.Sprintf("这是字%d。", i),
			ExampleEnglish: fmt.Sprintf("This is word %d.", i),
			Level:          i%2 + 1,
		})
	}
	return pool
}

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)), ExerciseConfig{})
}

func assertWellFormed(t *testing.T, q entities.Question) {
	t.Helper()

	if len(q.Options) != OptionsPerQuestion {
		t.Fatalf("%s: got %d options; want %d", q.ID, len(q.Options), OptionsPerQuestion)
	}

	seen := make(map[string]int, len(q.Options))
	for _, opt := range q.Options {
		seen[opt]++
		if seen[opt] > 1 {
			t.Errorf("%s: duplicate option %q in %v", q.ID, opt, q.Options)
		}
	}
	if seen[q.CorrectAnswer] != 1 {
		t.Errorf("%s: correct answer %q appears %d times in %v", q.ID, q.CorrectAnswer, seen[q.CorrectAnswer], q.Options)
	}
}

func TestGenerate_OptionsAreWellFormed(t *testing.T) {
	pools := map[string][]entities.VocabularyItem{
		"minimal": greetingsPool(),
		"large":   hskPool(40),
	}
	patterns := map[string]KindPattern{
		"quiz": QuizPattern,
		"exam": ExamPattern,
	}

	for poolName, pool := range pools {
		for patternName, pattern := range patterns {
			t.Run(poolName+"/"+patternName, func(t *testing.T) {
				for seed := int64(0); seed < 50; seed++ {
					questions := newTestGenerator(seed).Generate(pool, 15, pattern)
					for _, q := range questions {
						assertWellFormed(t, q)
					}
				}
			})
		}
	}
}

func TestGenerate_GreetingsScenario(t *testing.T) {
	pool := greetingsPool()

	for seed := int64(0); seed < 100; seed++ {
		g := newTestGenerator(seed)
		q := g.synthesizer.Synthesize(&pool[0], pool, entities.KindMatching)

		assertWellFormed(t, q)
		if q.CorrectAnswer != "hello" {
			t.Fatalf("correct answer = %q; want hello", q.CorrectAnswer)
		}

		got := make([]string, 0, 3)
		for _, opt := range q.Options {
			if opt != "hello" {
				got = append(got, opt)
			}
		}
		sort.Strings(got)

		want := []string{"goodbye", "thank you", "yes"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("seed %d: distractors = %v; want %v", seed, got, want)
		}
	}
}

func TestGenerate_SizeAndIDs(t *testing.T) {
	g := newTestGenerator(1)

	tests := []struct {
		name string
		pool []entities.VocabularyItem
		size int
		want int
	}{
		{name: "pool larger than size", pool: hskPool(30), size: 10, want: 10},
		{name: "pool smaller than size", pool: hskPool(6), size: 15, want: 6},
		{name: "empty pool", pool: nil, size: 10, want: 0},
		{name: "zero size", pool: hskPool(6), size: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := g.Generate(tt.pool, tt.size, QuizPattern)
			if questions == nil {
				t.Fatal("Generate returned nil; want an empty slice")
			}
			if len(questions) != tt.want {
				t.Fatalf("got %d questions; want %d", len(questions), tt.want)
			}

			sources := make(map[int]bool)
			for i, q := range questions {
				if q.ID != fmt.Sprintf("q-%d", i) {
					t.Errorf("question %d id = %q", i, q.ID)
				}
				if sources[q.Source.ID] {
					t.Errorf("item %d used twice", q.Source.ID)
				}
				sources[q.Source.ID] = true
			}
		})
	}
}

func TestGenerate_ExamPatternCycles(t *testing.T) {
	questions := newTestGenerator(3).Generate(hskPool(20), 6, ExamPattern)

	want := []entities.QuestionKind{
		entities.KindListening, entities.KindReading, entities.KindSentence,
		entities.KindListening, entities.KindReading, entities.KindSentence,
	}
	for i, q := range questions {
		if q.Kind != want[i] {
			t.Errorf("question %d kind = %s; want %s", i, q.Kind, want[i])
		}
	}
}

func TestGenerate_KindsUseTheRightFields(t *testing.T) {
	pool := hskPool(10)
	g := newTestGenerator(5)

	for _, kind := range []entities.QuestionKind{
		entities.KindMatching, entities.KindTranslation, entities.KindListening,
		entities.KindReading, entities.KindSentence,
	} {
		q := g.synthesizer.Synthesize(&pool[2], pool, kind)

		wantPrompt, wantAnswer := pool[2].Hanzi, pool[2].English
		if kind.UsesExample() {
			wantPrompt, wantAnswer = pool[2].ExampleHanzi, pool[2].ExampleEnglish
		}
		if q.Prompt != wantPrompt || q.CorrectAnswer != wantAnswer {
			t.Errorf("%s: prompt/answer = %q/%q; want %q/%q", kind, q.Prompt, q.CorrectAnswer, wantPrompt, wantAnswer)
		}
	}
}

func TestNewQuiz_StartsFresh(t *testing.T) {
	g := newTestGenerator(7)
	pool := hskPool(20)

	old, err := g.NewQuiz(pool)
	if err != nil {
		t.Fatalf("NewQuiz: %v", err)
	}
	for i := 0; i < len(old.Questions); i++ {
		old.RecordAnswer(i, old.Questions[i].CorrectAnswer)
		old.Advance()
	}
	if !old.Completed() {
		t.Fatal("old session should be completed")
	}

	fresh, err := g.NewQuiz(pool)
	if err != nil {
		t.Fatalf("NewQuiz: %v", err)
	}
	if fresh.ID == old.ID {
		t.Error("restart reused the session id")
	}
	if fresh.CurrentIndex() != 0 || fresh.AnsweredCount() != 0 || fresh.Phase() != entities.PhaseInProgress {
		t.Errorf("fresh session = index %d, answered %d, phase %s",
			fresh.CurrentIndex(), fresh.AnsweredCount(), fresh.Phase())
	}
	if len(fresh.Questions) != defaultQuizSize {
		t.Errorf("quiz has %d questions; want %d", len(fresh.Questions), defaultQuizSize)
	}
	if _, timed := fresh.Remaining(); timed {
		t.Error("quiz should not be timed")
	}
}

func TestNewExam_IsTimed(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(9)), ExerciseConfig{ExamSize: 3, ExamDuration: 90 * time.Second})

	exam, err := g.NewExam(hskPool(20))
	if err != nil {
		t.Fatalf("NewExam: %v", err)
	}
	if exam.Mode != entities.ModeExam {
		t.Errorf("mode = %s; want exam", exam.Mode)
	}
	if len(exam.Questions) != 3 {
		t.Errorf("exam has %d questions; want 3", len(exam.Questions))
	}
	remaining, timed := exam.Remaining()
	if !timed || remaining != 90*time.Second {
		t.Errorf("remaining = %v, timed = %v; want 1m30s, true", remaining, timed)
	}
}

func TestNewSessions_EmptyPool(t *testing.T) {
	g := newTestGenerator(1)

	if _, err := g.NewQuiz(nil); !errors.Is(err, ErrNoContent) {
		t.Errorf("NewQuiz err = %v; want ErrNoContent", err)
	}
	if _, err := g.NewExam(nil); !errors.Is(err, ErrNoContent) {
		t.Errorf("NewExam err = %v; want ErrNoContent", err)
	}
	if _, err := g.NewPuzzle(nil); !errors.Is(err, ErrNoContent) {
		t.Errorf("NewPuzzle err = %v; want ErrNoContent", err)
	}
}

func TestNewPuzzle(t *testing.T) {
	g := newTestGenerator(11)
	pool := hskPool(5)

	puzzle, err := g.NewPuzzle(pool)
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}
	if puzzle.Answer() != entities.StripPunctuation(puzzle.Target.ExampleHanzi) {
		t.Errorf("answer = %q; target = %q", puzzle.Answer(), puzzle.Target.ExampleHanzi)
	}

	_, err = g.NewPuzzle([]entities.VocabularyItem{{ID: 1, Hanzi: "好", ExampleHanzi: "。"}})
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("punctuation-only example err = %v; want ErrNoContent", err)
	}
}
