package entities

// QuestionKind tells how a question is presented and which fields it is built from.
type QuestionKind string

const (
	KindMatching    QuestionKind = "matching"    // quiz: word -> meaning
	KindTranslation QuestionKind = "translation" // quiz: example sentence -> translation
	KindListening   QuestionKind = "listening"   // exam: spoken word -> meaning
	KindReading     QuestionKind = "reading"     // exam: written word -> meaning
	KindSentence    QuestionKind = "sentence"    // exam: example sentence -> translation
)

// UsesExample reports whether the question is built from the example sentence
// rather than the word itself.
func (k QuestionKind) UsesExample() bool {
	return k == KindTranslation || k == KindSentence
}

// Question is a single multiple choice question built from a vocabulary item.
type Question struct {
	ID            string
	Kind          QuestionKind
	Prompt        string   // word or example sentence shown (or spoken) to the learner
	CorrectAnswer string   // expected option
	Options       []string // multiple choice, exactly one equals CorrectAnswer
	Source        *VocabularyItem
}

// IsCorrect reports whether answer matches the expected option exactly.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// CorrectIndex returns the position of the correct answer in Options, or -1.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}
