package entities

import "strings"

// strippedPunctuation lists characters removed from example sentences before scrambling.
const strippedPunctuation = "。？！，.?!,"

// StripPunctuation removes sentence punctuation from s.
func StripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, s)
}

// Shuffler randomly permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// SentencePuzzle asks the learner to rebuild an example sentence from its scrambled characters.
// Every character is either in the pool or in the assembled line, never both.
type SentencePuzzle struct {
	ID     string
	Target *VocabularyItem

	answer    string
	pool      []string
	assembled []string
}

// NewSentencePuzzle strips and splits the target's example sentence and scrambles it with rng.
func NewSentencePuzzle(id string, target *VocabularyItem, rng Shuffler) *SentencePuzzle {
	answer := StripPunctuation(target.ExampleHanzi)

	pool := strings.Split(answer, "")
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return &SentencePuzzle{
		ID:        id,
		Target:    target,
		answer:    answer,
		pool:      pool,
		assembled: make([]string, 0, len(pool)),
	}
}

// Answer returns the punctuation-free target sentence.
func (p *SentencePuzzle) Answer() string {
	return p.answer
}

// Pool returns a copy of the characters not placed yet.
func (p *SentencePuzzle) Pool() []string {
	return append([]string(nil), p.pool...)
}

// Assembled returns a copy of the characters placed so far, in order.
func (p *SentencePuzzle) Assembled() []string {
	return append([]string(nil), p.assembled...)
}

// Place moves the pool character at i to the end of the assembled line.
func (p *SentencePuzzle) Place(i int) bool {
	if i < 0 || i >= len(p.pool) {
		return false
	}

	ch := p.pool[i]
	p.pool = append(p.pool[:i], p.pool[i+1:]...)
	p.assembled = append(p.assembled, ch)
	return true
}

// Unplace moves the assembled character at i back to the end of the pool.
func (p *SentencePuzzle) Unplace(i int) bool {
	if i < 0 || i >= len(p.assembled) {
		return false
	}

	ch := p.assembled[i]
	p.assembled = append(p.assembled[:i], p.assembled[i+1:]...)
	p.pool = append(p.pool, ch)
	return true
}

// Ready reports whether every character has been placed, which enables checking.
func (p *SentencePuzzle) Ready() bool {
	return len(p.pool) == 0
}

// Check reports whether the assembled line spells the target sentence.
func (p *SentencePuzzle) Check() bool {
	return strings.Join(p.assembled, "") == p.answer
}
