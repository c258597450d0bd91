// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
)

// Error and status messages.
const (
	msgInternalError    = "Something went wrong. Please try again later."
	msgUnknownCommand   = "Unknown command. Send /help to see what I can do."
	msgNoContent        = "There is not enough vocabulary at this level yet. Try another level with /level."
	msgNoWords          = "No words match your search."
	msgUseLevel         = "Usage: /level N, for example /level 2."
	msgUseSay           = "Usage: /say 你好"
	msgSpeechFailed     = "Audio is not available right now."
	msgStaleSession     = "This exercise has ended. Start a new one."
	msgAlreadyAnswered  = "You already answered this question."
	msgNotReady         = "Place every character first."
	msgBuilderCorrect   = "Excellent! You built it correctly."
	msgBuilderIncorrect = "Not quite right. Try again!"
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeText builds the start screen with the level dashboard.
func welcomeText(levels []service.LevelCount, current int) string {
	var sb strings.Builder

	sb.WriteString(bold("你好! Welcome to the HSK trainer."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Learn HSK vocabulary with flashcards, quizzes, a sentence builder and a timed mock exam. Every word comes with English and Lao translations."))
	sb.WriteString("\n\n")

	if len(levels) > 0 {
		sb.WriteString(bold("Levels"))
		sb.WriteString("\n")
		for _, l := range levels {
			marker := "  "
			if l.Level == current {
				marker = "👉"
			}
			sb.WriteString(md(fmt.Sprintf("%s HSK %d: %d words", marker, l.Level, l.Count)))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(helpText())
	return sb.String()
}

func helpText() string {
	lines := []string{
		"/level N: switch HSK level",
		"/words [search]: browse flashcards",
		"/card: random flashcard",
		"/quiz: 10 question quiz",
		"/exam: timed mock exam",
		"/builder: rebuild a sentence",
		"/say 你好: hear any Chinese text",
	}

	var sb strings.Builder
	sb.WriteString(bold("Commands"))
	sb.WriteString("\n")
	for _, l := range lines {
		sb.WriteString(md(l))
		sb.WriteString("\n")
	}
	return sb.String()
}

func levelChangedText(level, count int) string {
	return md(fmt.Sprintf("Switched to HSK %d (%d words).", level, count))
}

func unknownLevelText(levels []service.LevelCount) string {
	available := make([]string, 0, len(levels))
	for _, l := range levels {
		available = append(available, fmt.Sprint(l.Level))
	}
	return fmt.Sprintf("No such level. Available levels: %s.", strings.Join(available, ", "))
}

// formatFlashcard renders one word with translations and its example sentence.
func formatFlashcard(item *entities.VocabularyItem) string {
	var sb strings.Builder

	sb.WriteString(bold(item.Hanzi))
	sb.WriteString("  ")
	sb.WriteString(italic(item.Pinyin))
	sb.WriteString("\n")
	sb.WriteString(md("🇬🇧 " + item.English))
	sb.WriteString("\n")
	if item.Lao != "" {
		sb.WriteString(md("🇱🇦 " + item.Lao))
		sb.WriteString("\n")
	}

	if item.ExampleHanzi != "" {
		sb.WriteString("\n")
		sb.WriteString(md("📝 " + item.ExampleHanzi))
		sb.WriteString("\n")
		sb.WriteString(italic(item.ExamplePinyin))
		sb.WriteString("\n")
		sb.WriteString(md(item.ExampleEnglish))
		if item.ExampleLao != "" {
			sb.WriteString("\n")
			sb.WriteString(md(item.ExampleLao))
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("HSK %d", item.Level)))
	return sb.String()
}

// formatWordsPage renders a numbered page of the word list.
func formatWordsPage(page service.Page, level int, query string) string {
	var sb strings.Builder

	title := fmt.Sprintf("📚 HSK %d vocabulary", level)
	if query != "" {
		title += fmt.Sprintf(" matching “%s”", query)
	}
	sb.WriteString(bold(title))
	sb.WriteString("\n\n")

	offset := page.Index * service.PageSize
	for i, item := range page.Items {
		sb.WriteString(md(fmt.Sprintf("%d. ", offset+i+1)))
		sb.WriteString(bold(item.Hanzi))
		sb.WriteString(md(fmt.Sprintf(" %s: %s", item.Pinyin, item.English)))
		sb.WriteString("\n")
	}

	if page.Total > 1 {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("Page %d of %d", page.Index+1, page.Total)))
	}
	return sb.String()
}

func kindLabel(kind entities.QuestionKind) string {
	switch kind {
	case entities.KindMatching:
		return "Word matching"
	case entities.KindTranslation:
		return "Sentence translation"
	case entities.KindListening:
		return "Listening"
	case entities.KindReading:
		return "Reading"
	case entities.KindSentence:
		return "Sentence"
	default:
		return string(kind)
	}
}

// formatQuizQuestion renders a quiz question. Once answered it shows feedback
// and the explanation with the example sentence.
func formatQuizQuestion(snap entities.SessionSnapshot) string {
	q := snap.Question

	var sb strings.Builder
	sb.WriteString(md(fmt.Sprintf("Question %d of %d · %s", snap.Index+1, snap.Total, kindLabel(q.Kind))))
	sb.WriteString("\n\n")
	sb.WriteString(bold(q.Prompt))
	sb.WriteString("\n\n")

	if !snap.Answered {
		sb.WriteString(md("Choose the correct meaning:"))
		return sb.String()
	}

	if q.IsCorrect(snap.Answer) {
		sb.WriteString(md("✅ Correct!"))
	} else {
		sb.WriteString(md("❌ Not quite."))
	}
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("“%s” means ", q.Prompt)))
	sb.WriteString(bold(q.CorrectAnswer))
	sb.WriteString(md("."))

	if q.Source != nil && q.Source.ExampleHanzi != "" && q.Kind == entities.KindMatching {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("Example: %s (%s)", q.Source.ExampleHanzi, q.Source.ExampleEnglish)))
	}

	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Score: %d", snap.Score)))
	return sb.String()
}

// formatExamQuestion renders the current exam question with the countdown.
// Listening questions hide the characters; the learner hears them instead.
func formatExamQuestion(snap entities.SessionSnapshot) string {
	q := snap.Question

	var sb strings.Builder
	sb.WriteString(md(fmt.Sprintf("⏱ %s   Question %d of %d", formatDuration(snap.Remaining), snap.Index+1, snap.Total)))
	sb.WriteString("\n")
	sb.WriteString(italic("Section: " + kindLabel(q.Kind)))
	sb.WriteString("\n\n")

	if q.Kind == entities.KindListening {
		sb.WriteString(md("🎧 Listen and choose the meaning."))
	} else {
		sb.WriteString(bold(q.Prompt))
	}
	sb.WriteString("\n\n")

	if snap.Answered {
		sb.WriteString(md("Your answer: " + snap.Answer))
	} else {
		sb.WriteString(md("Choose an answer:"))
	}
	return sb.String()
}

func formatQuizResult(score, total int) string {
	var sb strings.Builder
	sb.WriteString(bold("🎉 Quiz complete!"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("You scored %d out of %d.", score, total)))
	return sb.String()
}

func formatExamResult(score, total int, passed, timedOut bool) string {
	var sb strings.Builder

	if timedOut {
		sb.WriteString(md("⏰ Time is up!"))
		sb.WriteString("\n\n")
	}
	sb.WriteString(bold("📋 Exam result"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Score: %d / %d", score, total)))
	sb.WriteString("\n")

	if passed {
		sb.WriteString(md("✅ Passed. Great work!"))
	} else {
		sb.WriteString(md("❌ Not passed yet. Keep practicing!"))
	}
	return sb.String()
}

// puzzleStatus is the feedback line under a sentence puzzle.
type puzzleStatus int

const (
	puzzlePending puzzleStatus = iota
	puzzleCorrect
	puzzleIncorrect
)

func formatPuzzle(p *entities.SentencePuzzle, status puzzleStatus) string {
	var sb strings.Builder

	sb.WriteString(bold("🧩 Sentence builder"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Build the sentence that means:"))
	sb.WriteString("\n")
	sb.WriteString(italic(p.Target.ExampleEnglish))
	sb.WriteString("\n\n")

	assembled := strings.Join(p.Assembled(), "")
	if assembled == "" {
		assembled = "…"
	}
	sb.WriteString(md("Your sentence: "))
	sb.WriteString(bold(assembled))

	switch status {
	case puzzleCorrect:
		sb.WriteString("\n\n")
		sb.WriteString(md("✅ " + msgBuilderCorrect))
		sb.WriteString("\n")
		sb.WriteString(md(p.Target.ExampleHanzi + " · " + p.Target.ExamplePinyin))
	case puzzleIncorrect:
		sb.WriteString("\n\n")
		sb.WriteString(md("❌ " + msgBuilderIncorrect))
	}

	return sb.String()
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
