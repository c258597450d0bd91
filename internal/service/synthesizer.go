package service

import (
	"github.com/samber/lo"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

// OptionsPerQuestion is the number of choices shown for every question.
const OptionsPerQuestion = 4

// Synthesizer builds multiple choice questions from vocabulary items.
type Synthesizer struct {
	sampler *Sampler
	rng     Rand
}

// NewSynthesizer creates a new question synthesizer.
func NewSynthesizer(sampler *Sampler, rng Rand) *Synthesizer {
	return &Synthesizer{
		sampler: sampler,
		rng:     rng,
	}
}

// Synthesize builds one question of the given kind for item, drawing distractors from pool.
func (s *Synthesizer) Synthesize(item *entities.VocabularyItem, pool []entities.VocabularyItem, kind entities.QuestionKind) entities.Question {
	prompt, answer, field := item.Hanzi, item.English, FieldSelector(EnglishField)
	if kind.UsesExample() {
		prompt, answer, field = item.ExampleHanzi, item.ExampleEnglish, ExampleEnglishField
	}

	distractors := s.sampler.Sample(answer, pool, field, OptionsPerQuestion-1)

	return entities.Question{
		Kind:          kind,
		Prompt:        prompt,
		CorrectAnswer: answer,
		Options:       s.buildOptions(answer, distractors),
		Source:        item,
	}
}

// buildOptions puts the correct answer among the distractors, pads with generic
// choices when the pool ran short and shuffles the result.
func (s *Synthesizer) buildOptions(correct string, distractors []string) []string {
	options := make([]string, 0, OptionsPerQuestion)
	options = append(options, correct)
	options = append(options, distractors...)

	for letter := 'A'; len(options) < OptionsPerQuestion; letter++ {
		placeholder := "Option " + string(letter)
		if !lo.Contains(options, placeholder) {
			options = append(options, placeholder)
		}
	}

	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options
}
