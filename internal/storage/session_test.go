package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/clock"
	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSessionStore_GetCreatesOnce(t *testing.T) {
	s := NewSessionStore(nil)

	first := s.Get(42)
	if first.Level != DefaultLevel || first.ChatID != 42 {
		t.Errorf("new state = %+v", first)
	}
	first.Level = 3

	if again := s.Get(42); again != first || again.Level != 3 {
		t.Error("Get should return the same state for a known chat")
	}
	if _, ok := s.Peek(7); ok {
		t.Error("Peek should not create state")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d; want 1", s.Len())
	}
}

func TestSessionStore_EvictIdle(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSessionStore(clk.Now)

	idle := s.Get(1)
	ticker := clock.NewManual()
	idle.SetExam(entities.NewSession("exam", entities.ModeExam, nil, nil), NewExamTimer(1, "exam", ticker))

	clk.Advance(20 * time.Minute)
	s.Get(2)
	clk.Advance(15 * time.Minute)

	evicted := s.EvictIdle(30 * time.Minute)
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Fatalf("evicted = %v; want [1]", evicted)
	}
	if !ticker.Stopped() {
		t.Error("evicting a chat should stop its exam ticker")
	}
	if _, ok := s.Peek(2); !ok {
		t.Error("active chat was evicted")
	}
}

func TestChatState_SetExamStopsPreviousTimer(t *testing.T) {
	state := &ChatState{ChatID: 1}

	oldTicker := clock.NewManual()
	state.SetExam(nil, NewExamTimer(1, "old", oldTicker))

	newTicker := clock.NewManual()
	state.SetExam(nil, NewExamTimer(1, "new", newTicker))

	if !oldTicker.Stopped() {
		t.Error("restarting an exam should stop the old ticker")
	}
	if newTicker.Stopped() {
		t.Error("the new ticker should keep running")
	}

	state.StopExamTimer()
	if !newTicker.Stopped() {
		t.Error("StopExamTimer should stop the ticker")
	}
}

func TestExamTimer_ForwardsUntilStopped(t *testing.T) {
	ticker := clock.NewManual()
	timer := NewExamTimer(9, "s-1", ticker)
	out := make(chan Tick)

	done := make(chan struct{})
	go func() {
		timer.Run(context.Background(), out)
		close(done)
	}()

	go ticker.Tick()
	tick := <-out
	if tick.ChatID != 9 || tick.SessionID != "s-1" {
		t.Errorf("tick = %+v", tick)
	}

	timer.Stop()
	timer.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestJanitor_Sweep(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	s := NewSessionStore(clk.Now)
	s.Get(1)
	s.Get(2)

	j := NewJanitor(s, time.Minute, time.Second, zap.NewNop())

	j.Sweep()
	if s.Len() != 2 {
		t.Fatalf("fresh chats evicted: Len = %d", s.Len())
	}

	clk.Advance(2 * time.Minute)
	j.Sweep()
	if s.Len() != 0 {
		t.Errorf("idle chats kept: Len = %d", s.Len())
	}
}

func TestJanitor_StartStops(t *testing.T) {
	j := NewJanitor(NewSessionStore(nil), time.Minute, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- j.Start(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
