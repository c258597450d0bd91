package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
)

// Exercise kinds for the new-exercise callback that are not session actions.
const newCard = "c"

const (
	speakButtonsPerRow  = 6
	puzzleButtonsPerRow = 6
)

// buildQuizKeyboard shows the options of the current quiz question. Once the
// question is answered the options are marked and the Next (or Finish) button appears.
func buildQuizKeyboard(snap entities.SessionSnapshot) tgbotapi.InlineKeyboardMarkup {
	q := snap.Question

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, opt := range q.Options {
		label := opt
		if snap.Answered {
			switch {
			case opt == q.CorrectAnswer:
				label = "✅ " + opt
			case opt == snap.Answer:
				label = "❌ " + opt
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildAnswerCallback(actionQuiz, snap.ID, snap.Index, i)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if q.Source != nil {
		target := speakWord
		if q.Kind.UsesExample() {
			target = speakExample
		}
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🔊 Listen", buildSpeakCallback(target, q.Source.ID)))
	}
	if snap.Answered {
		label := "Next ▶️"
		if snap.IsLast() {
			label = "🏁 Finish"
		}
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(label, buildSessionCallback(actionQuiz, snap.ID, sessionNext)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildExamKeyboard shows the options of the current exam question with the
// selected one marked, navigation and the submit button.
func buildExamKeyboard(snap entities.SessionSnapshot) tgbotapi.InlineKeyboardMarkup {
	q := snap.Question

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, opt := range q.Options {
		label := opt
		if snap.Answered && opt == snap.Answer {
			label = "🔘 " + opt
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildAnswerCallback(actionExam, snap.ID, snap.Index, i)),
		))
	}

	if q.Kind == entities.KindListening && q.Source != nil {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔊 Play again", buildSpeakCallback(speakWord, q.Source.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if snap.Index > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", buildSessionCallback(actionExam, snap.ID, sessionPrev)))
	}
	if !snap.IsLast() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildSessionCallback(actionExam, snap.ID, sessionNext)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📤 Submit", buildSessionCallback(actionExam, snap.ID, sessionSubmit)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildRetryKeyboard offers a fresh exercise of the same kind.
func buildRetryKeyboard(kind string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Try again", buildNewCallback(kind)),
		),
	)
}

// buildPuzzleKeyboard lays out the unplaced characters, the placed ones and the controls.
// Placed characters are tapped to send them back to the pool.
func buildPuzzleKeyboard(p *entities.SentencePuzzle, solved bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if solved {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔊 Listen", buildSpeakCallback(speakExample, p.Target.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🧩 Next sentence", buildNewCallback(actionBuilder)),
			),
		)
	}

	rows = append(rows, charRows(p.Assembled(), func(i int) string {
		return buildBuilderCallback(p.ID, builderUnplace, i)
	}, "· ")...)
	rows = append(rows, charRows(p.Pool(), func(i int) string {
		return buildBuilderCallback(p.ID, builderPlace, i)
	}, "")...)

	controls := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", buildBuilderCallback(p.ID, builderSkip)),
	}
	if p.Ready() {
		controls = append([]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✔️ Check", buildBuilderCallback(p.ID, builderCheck)),
		}, controls...)
	}
	rows = append(rows, controls)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func charRows(chars []string, data func(i int) string, prefix string) [][]tgbotapi.InlineKeyboardButton {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(chars))
	for i, ch := range chars {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(prefix+ch, data(i)))
	}
	return lo.Chunk(buttons, puzzleButtonsPerRow)
}

// buildWordsKeyboard has a numbered speak button per word and the page navigation.
func buildWordsKeyboard(page service.Page) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	offset := page.Index * service.PageSize
	speak := make([]tgbotapi.InlineKeyboardButton, 0, len(page.Items))
	for i, item := range page.Items {
		label := fmt.Sprintf("🔊%d", offset+i+1)
		speak = append(speak, tgbotapi.NewInlineKeyboardButtonData(label, buildSpeakCallback(speakWord, item.ID)))
	}
	rows = append(rows, lo.Chunk(speak, speakButtonsPerRow)...)

	var nav []tgbotapi.InlineKeyboardButton
	if page.HasPrev() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", buildWordsPageCallback(page.Index-1)))
	}
	if page.HasNext() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildWordsPageCallback(page.Index+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// buildFlashcardKeyboard lets the learner hear the word and its example and draw another card.
func buildFlashcardKeyboard(item *entities.VocabularyItem) tgbotapi.InlineKeyboardMarkup {
	speak := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔊 Word", buildSpeakCallback(speakWord, item.ID)),
	}
	if item.ExampleHanzi != "" {
		speak = append(speak, tgbotapi.NewInlineKeyboardButtonData("🔊 Example", buildSpeakCallback(speakExample, item.ID)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		speak,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🃏 Another card", buildNewCallback(newCard)),
		),
	)
}
