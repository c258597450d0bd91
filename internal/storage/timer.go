package storage

import (
	"context"
	"sync"
	"time"

	"github.com/aliskhannn/hsk-trainer-bot/internal/clock"
)

// Tick is one countdown step for an exam session.
type Tick struct {
	ChatID    int64
	SessionID string
	At        time.Time
}

// ExamTimer forwards ticks of one exam's ticker until stopped.
type ExamTimer struct {
	ChatID    int64
	SessionID string

	ticker clock.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewExamTimer binds a ticker to an exam session.
func NewExamTimer(chatID int64, sessionID string, ticker clock.Ticker) *ExamTimer {
	return &ExamTimer{
		ChatID:    chatID,
		SessionID: sessionID,
		ticker:    ticker,
		done:      make(chan struct{}),
	}
}

// Run sends a Tick to out for every tick until Stop is called or ctx ends.
// It blocks, so callers start it on its own goroutine.
func (t *ExamTimer) Run(ctx context.Context, out chan<- Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		case at := <-t.ticker.C():
			select {
			case out <- Tick{ChatID: t.ChatID, SessionID: t.SessionID, At: at}:
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop halts the ticker and ends Run. It is safe to call more than once.
func (t *ExamTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
