package telegram

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/clock"
	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
	"github.com/aliskhannn/hsk-trainer-bot/internal/repository"
	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
	"github.com/aliskhannn/hsk-trainer-bot/internal/speech"
	"github.com/aliskhannn/hsk-trainer-bot/internal/storage"
)

const testChatID int64 = 100

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	updates  chan tgbotapi.Update
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sent = append(b.sent, c)
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {}

// lastText returns the text of the most recent message or edit.
func (b *fakeBot) lastText() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.sent) - 1; i >= 0; i-- {
		switch c := b.sent[i].(type) {
		case tgbotapi.MessageConfig:
			return c.Text
		case tgbotapi.EditMessageTextConfig:
			return c.Text
		}
	}
	return ""
}

func (b *fakeBot) lastToast() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.requests) - 1; i >= 0; i-- {
		if c, ok := b.requests[i].(tgbotapi.CallbackConfig); ok {
			return c.Text
		}
	}
	return ""
}

func (b *fakeBot) audios() []tgbotapi.AudioConfig {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []tgbotapi.AudioConfig
	for _, c := range b.sent {
		if a, ok := c.(tgbotapi.AudioConfig); ok {
			out = append(out, a)
		}
	}
	return out
}

type fakeSpeaker struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (s *fakeSpeaker) Speak(_ context.Context, text string) (*speech.Audio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	return &speech.Audio{Text: text, Data: []byte("RIFF"), Format: speech.FormatWAV}, nil
}

func (s *fakeSpeaker) spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func testVocabulary() []entities.VocabularyItem {
	return []entities.VocabularyItem{
		{ID: 1, Hanzi: "你好", Pinyin: "nǐ hǎo", English: "hello", ExampleHanzi: "你好，老师！", ExampleEnglish: "Hello, teacher!", Level: 1},
		{ID: 2, Hanzi: "谢谢", Pinyin: "xièxie", English: "thank you", ExampleHanzi: "谢谢你。", ExampleEnglish: "Thank you.", Level: 1},
		{ID: 3, Hanzi: "再见", Pinyin: "zàijiàn", English: "goodbye", ExampleHanzi: "明天见。", ExampleEnglish: "See you tomorrow.", Level: 1},
		{ID: 4, Hanzi: "水", Pinyin: "shuǐ", English: "water", ExampleHanzi: "我喝水。", ExampleEnglish: "I drink water.", Level: 1},
		{ID: 5, Hanzi: "猫", Pinyin: "māo", English: "cat", ExampleHanzi: "我有猫。", ExampleEnglish: "I have a cat.", Level: 1},
		{ID: 6, Hanzi: "书", Pinyin: "shū", English: "book", ExampleHanzi: "这是书。", ExampleEnglish: "This is a book.", Level: 1},
		{ID: 7, Hanzi: "旅游", Pinyin: "lǚyóu", English: "travel", ExampleHanzi: "我喜欢旅游。", ExampleEnglish: "I like to travel.", Level: 2},
	}
}

type testEnv struct {
	h       *Handler
	bot     *fakeBot
	speaker *fakeSpeaker
	store   *storage.SessionStore
	tickers []*clock.Manual
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := repository.NewVocabularyRepositoryFromItems(testVocabulary())
	if err != nil {
		t.Fatalf("repository: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	env := &testEnv{
		bot:     newFakeBot(),
		speaker: &fakeSpeaker{},
		store:   storage.NewSessionStore(nil),
	}

	factory := func(time.Duration) clock.Ticker {
		m := clock.NewManual()
		env.tickers = append(env.tickers, m)
		return m
	}

	env.h = NewHandler(
		env.bot,
		zap.NewNop(),
		service.NewVocabularyService(repo, rng),
		service.NewGenerator(rng, service.ExerciseConfig{QuizSize: 3, ExamSize: 3, ExamDuration: 3 * time.Second}),
		env.speaker,
		env.store,
		factory,
		HandlerConfig{PassRatio: 0.6, SpeechTimeout: time.Second},
	)

	t.Cleanup(env.store.CloseAll)
	return env
}

func (e *testEnv) command(t *testing.T, command, args string) *storage.ChatState {
	t.Helper()
	state := e.store.Get(testChatID)
	e.h.handleCommand(context.Background(), state, command, args)
	return state
}

func (e *testEnv) callback(data string, msgID int) {
	cb := &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: testChatID},
		Message: &tgbotapi.Message{
			MessageID: msgID,
			Chat:      &tgbotapi.Chat{ID: testChatID},
		},
		Data: data,
	}
	e.h.handleCallback(context.Background(), cb)
}

func TestHandler_QuizFlow(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "quiz", "")
	quiz := state.Quiz
	if quiz == nil {
		t.Fatal("quiz was not started")
	}
	if len(quiz.Questions) != 3 {
		t.Fatalf("questions = %d; want 3", len(quiz.Questions))
	}

	for i := range quiz.Questions {
		q, ok := quiz.Current()
		if !ok {
			t.Fatalf("no current question at %d", i)
		}

		env.callback(buildAnswerCallback(actionQuiz, quiz.ID, i, q.CorrectIndex()), 1)
		if !strings.Contains(env.bot.lastText(), "Correct") {
			t.Errorf("question %d: feedback missing in %q", i, env.bot.lastText())
		}

		// A second answer is rejected.
		env.callback(buildAnswerCallback(actionQuiz, quiz.ID, i, 0), 1)
		if got := env.bot.lastToast(); got != msgAlreadyAnswered {
			t.Errorf("second answer toast = %q; want %q", got, msgAlreadyAnswered)
		}

		env.callback(buildSessionCallback(actionQuiz, quiz.ID, sessionNext), 1)
	}

	if !quiz.Completed() {
		t.Fatal("quiz should be completed after the last question")
	}
	if quiz.Score() != 3 {
		t.Errorf("score = %d; want 3", quiz.Score())
	}
	if !strings.Contains(env.bot.lastText(), "3 out of 3") {
		t.Errorf("result text = %q", env.bot.lastText())
	}
}

func TestHandler_QuizNextRequiresAnswer(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "quiz", "")
	env.callback(buildSessionCallback(actionQuiz, state.Quiz.ID, sessionNext), 1)

	if state.Quiz.CurrentIndex() != 0 {
		t.Errorf("index = %d; unanswered question must not advance", state.Quiz.CurrentIndex())
	}
}

func TestHandler_StaleCallback(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "quiz", "")
	old := state.Quiz.ID
	env.command(t, "quiz", "")

	env.callback(buildAnswerCallback(actionQuiz, old, 0, 0), 1)
	if got := env.bot.lastToast(); got != msgStaleSession {
		t.Errorf("toast = %q; want %q", got, msgStaleSession)
	}
	if state.Quiz.AnsweredCount() != 0 {
		t.Error("stale callback changed the new quiz")
	}
}

func TestHandler_ExamTimeout(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "exam", "")
	exam := state.Exam
	if exam == nil || state.ExamMessageID == 0 {
		t.Fatalf("exam not started: %+v", state)
	}
	if len(env.tickers) != 1 {
		t.Fatalf("tickers = %d; want 1", len(env.tickers))
	}

	// The first exam question is a listening question and is spoken.
	env.h.speech.Wait()
	if spoken := env.speaker.spoken(); len(spoken) != 1 || spoken[0] != exam.Questions[0].Prompt {
		t.Errorf("spoken = %v; want [%s]", spoken, exam.Questions[0].Prompt)
	}
	if len(env.bot.audios()) != 1 {
		t.Errorf("audio messages = %d; want 1", len(env.bot.audios()))
	}

	ctx := context.Background()
	tick := storage.Tick{ChatID: testChatID, SessionID: exam.ID}
	for i := 0; i < 3; i++ {
		env.h.handleTick(ctx, tick)
	}

	if !exam.Completed() {
		t.Fatal("exam should time out")
	}
	if !env.tickers[0].Stopped() {
		t.Error("timeout should stop the ticker")
	}
	if !strings.Contains(env.bot.lastText(), "Time is up") {
		t.Errorf("result text = %q", env.bot.lastText())
	}
}

func TestHandler_StaleTickIgnored(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "exam", "")
	old := state.Exam.ID
	env.command(t, "exam", "")

	if !env.tickers[0].Stopped() {
		t.Error("restarting the exam should stop the old ticker")
	}

	before, _ := state.Exam.Remaining()
	env.h.handleTick(context.Background(), storage.Tick{ChatID: testChatID, SessionID: old})
	after, _ := state.Exam.Remaining()

	if before != after {
		t.Errorf("stale tick changed remaining time from %v to %v", before, after)
	}
}

func TestHandler_ExamNavigationAndSubmit(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "exam", "")
	exam := state.Exam
	msgID := state.ExamMessageID

	env.callback(buildSessionCallback(actionExam, exam.ID, sessionPrev), msgID)
	if exam.CurrentIndex() != 0 {
		t.Fatalf("index = %d; previous on first question must stay", exam.CurrentIndex())
	}

	env.callback(buildAnswerCallback(actionExam, exam.ID, 0, exam.Questions[0].CorrectIndex()), msgID)
	env.callback(buildSessionCallback(actionExam, exam.ID, sessionNext), msgID)
	env.callback(buildSessionCallback(actionExam, exam.ID, sessionNext), msgID)
	env.callback(buildSessionCallback(actionExam, exam.ID, sessionNext), msgID)
	if exam.CurrentIndex() != 2 || exam.Completed() {
		t.Fatalf("index = %d, completed = %v; next must stop at the last question", exam.CurrentIndex(), exam.Completed())
	}

	env.callback(buildSessionCallback(actionExam, exam.ID, sessionPrev), msgID)
	if exam.CurrentIndex() != 1 {
		t.Errorf("index = %d; want 1", exam.CurrentIndex())
	}

	env.callback(buildSessionCallback(actionExam, exam.ID, sessionSubmit), msgID)
	if !exam.Completed() {
		t.Fatal("submit should complete the exam")
	}
	if exam.Score() != 1 {
		t.Errorf("score = %d; want 1", exam.Score())
	}
	if !env.tickers[0].Stopped() {
		t.Error("submit should stop the ticker")
	}
	if !strings.Contains(env.bot.lastText(), "Not passed") {
		t.Errorf("result text = %q", env.bot.lastText())
	}
}

func TestHandler_BuilderSolve(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "builder", "")
	p := state.Puzzle
	if p == nil {
		t.Fatal("puzzle was not started")
	}

	env.callback(buildBuilderCallback(p.ID, builderCheck), 1)
	if got := env.bot.lastToast(); got != msgNotReady {
		t.Errorf("toast = %q; want %q", got, msgNotReady)
	}

	for _, ch := range strings.Split(p.Answer(), "") {
		idx := -1
		for i, c := range p.Pool() {
			if c == ch {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("character %q missing from pool %v", ch, p.Pool())
		}
		env.callback(buildBuilderCallback(p.ID, builderPlace, idx), 1)
	}

	env.callback(buildBuilderCallback(p.ID, builderCheck), 1)
	if !strings.Contains(env.bot.lastText(), md(msgBuilderCorrect)) {
		t.Errorf("text = %q", env.bot.lastText())
	}
	if state.Puzzle != nil {
		t.Error("solved puzzle should be cleared")
	}

	env.h.speech.Wait()
	if spoken := env.speaker.spoken(); len(spoken) != 1 || spoken[0] != p.Target.ExampleHanzi {
		t.Errorf("spoken = %v; want [%s]", spoken, p.Target.ExampleHanzi)
	}
}

func TestHandler_BuilderWrongOrder(t *testing.T) {
	env := newTestEnv(t)

	state := env.command(t, "builder", "")
	p := state.Puzzle

	// Place every character in pool order, then put the last one first.
	for len(p.Pool()) > 0 {
		env.callback(buildBuilderCallback(p.ID, builderPlace, 0), 1)
	}
	if p.Check() {
		t.Skip("shuffled pool happened to be in order")
	}

	env.callback(buildBuilderCallback(p.ID, builderCheck), 1)
	if !strings.Contains(env.bot.lastText(), md(msgBuilderIncorrect)) {
		t.Errorf("text = %q", env.bot.lastText())
	}
	if state.Puzzle != p {
		t.Error("wrong answer should keep the puzzle for another try")
	}

	env.callback(buildBuilderCallback(p.ID, builderUnplace, 0), 1)
	if len(p.Pool()) != 1 {
		t.Errorf("pool = %v; want one character back", p.Pool())
	}
}

func TestHandler_Level(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		wantLevel int
		wantText  string
	}{
		{name: "switch", args: "2", wantLevel: 2, wantText: "HSK 2"},
		{name: "unknown level", args: "9", wantLevel: 1, wantText: "Available levels: 1, 2"},
		{name: "not a number", args: "two", wantLevel: 1, wantText: msgUseLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			state := env.command(t, "level", tt.args)
			if state.Level != tt.wantLevel {
				t.Errorf("level = %d; want %d", state.Level, tt.wantLevel)
			}
			if !strings.Contains(env.bot.lastText(), tt.wantText) {
				t.Errorf("text = %q; want it to contain %q", env.bot.lastText(), tt.wantText)
			}
		})
	}
}

func TestHandler_WordsAndSpeak(t *testing.T) {
	env := newTestEnv(t)

	env.command(t, "words", "cat")
	if text := env.bot.lastText(); !strings.Contains(text, "猫") || strings.Contains(text, "你好") {
		t.Errorf("search result = %q", text)
	}

	env.command(t, "words", "nothing like this")
	if env.bot.lastText() != msgNoWords {
		t.Errorf("empty search text = %q", env.bot.lastText())
	}

	env.callback(buildSpeakCallback(speakExample, 4), 1)
	env.h.speech.Wait()
	if spoken := env.speaker.spoken(); len(spoken) != 1 || spoken[0] != "我喝水。" {
		t.Errorf("spoken = %v", spoken)
	}
}

func TestHandler_SpeechFailure(t *testing.T) {
	env := newTestEnv(t)
	env.speaker.err = speech.ErrUnavailable

	env.command(t, "say", "你好")
	env.h.speech.Wait()

	if env.bot.lastText() != msgSpeechFailed {
		t.Errorf("text = %q; want %q", env.bot.lastText(), msgSpeechFailed)
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)

	env.command(t, "nope", "")
	if env.bot.lastText() != msgUnknownCommand {
		t.Errorf("text = %q", env.bot.lastText())
	}
}

func TestHandler_NoContent(t *testing.T) {
	env := newTestEnv(t)

	// Level 3 has no words.
	state := env.store.Get(testChatID)
	state.Level = 3
	env.h.handleCommand(context.Background(), state, "quiz", "")

	if env.bot.lastText() != msgNoContent {
		t.Errorf("text = %q; want %q", env.bot.lastText(), msgNoContent)
	}
}

func TestHandler_RunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- env.h.Run(ctx) }()

	env.bot.updates <- tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     "/exam",
			Chat:     &tgbotapi.Chat{ID: testChatID},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
		},
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v; want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	state, ok := env.store.Peek(testChatID)
	if !ok || state.Exam == nil {
		t.Fatal("exam command was not handled")
	}
	if !env.tickers[0].Stopped() {
		t.Error("shutdown should stop running exam timers")
	}
}
