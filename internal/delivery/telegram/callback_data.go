package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz    = "q"
	actionExam    = "e"
	actionBuilder = "b"
	actionWords   = "w"
	actionSpeak   = "s"
	actionNew     = "n"
)

// Session sub-actions shared by quiz and exam.
const (
	sessionAnswer = "a"
	sessionNext   = "n"
	sessionPrev   = "p"
	sessionSubmit = "s"
)

// Builder sub-actions.
const (
	builderPlace   = "pl"
	builderUnplace = "un"
	builderCheck   = "ck"
	builderSkip    = "sk"
)

// Speak targets.
const (
	speakWord    = "w"
	speakExample = "x"
)

// tokenLength keeps callback payloads well under Telegram's 64 byte limit.
const tokenLength = 8

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or "".
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as a non-negative int.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// sessionToken shortens a session id for callback payloads.
func sessionToken(id string) string {
	if len(id) <= tokenLength {
		return id
	}
	return id[:tokenLength]
}

// buildSessionCallback builds callback data for quiz and exam navigation.
func buildSessionCallback(action, sessionID, sub string, args ...int) string {
	params := []string{sessionToken(sessionID), sub}
	for _, a := range args {
		params = append(params, strconv.Itoa(a))
	}
	return callbackData{Action: action, Params: params}.encode()
}

// buildAnswerCallback builds callback data for choosing option of question.
func buildAnswerCallback(action, sessionID string, question, option int) string {
	return buildSessionCallback(action, sessionID, sessionAnswer, question, option)
}

// buildBuilderCallback builds callback data for sentence builder actions.
func buildBuilderCallback(puzzleID, sub string, args ...int) string {
	return buildSessionCallback(actionBuilder, puzzleID, sub, args...)
}

// buildWordsPageCallback builds callback data for a flashcard page.
func buildWordsPageCallback(page int) string {
	return callbackData{Action: actionWords, Params: []string{strconv.Itoa(page)}}.encode()
}

// buildSpeakCallback builds callback data for pronouncing a word or its example.
func buildSpeakCallback(target string, itemID int) string {
	return callbackData{Action: actionSpeak, Params: []string{target, strconv.Itoa(itemID)}}.encode()
}

// buildNewCallback builds callback data for starting a fresh exercise of action's kind.
func buildNewCallback(action string) string {
	return callbackData{Action: actionNew, Params: []string{action}}.encode()
}
