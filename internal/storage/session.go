package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/hsk-trainer-bot/internal/domain/entities"
)

// DefaultLevel is the HSK level a new chat starts on.
const DefaultLevel = 1

// BrowseCursor remembers where a chat is in the flashcard list.
type BrowseCursor struct {
	Query string
	Page  int
}

// ChatState is everything the bot remembers about one chat. Its exported fields
// are only touched from the handler's event loop.
type ChatState struct {
	ChatID int64
	Level  int
	Quiz   *entities.Session
	Exam   *entities.Session
	Puzzle *entities.SentencePuzzle
	Browse BrowseCursor

	// ExamMessageID is the message that shows the running exam, refreshed on ticks.
	ExamMessageID int

	mu        sync.Mutex
	examTimer *ExamTimer
}

// SetExam replaces the active exam and its timer, stopping the previous timer.
func (c *ChatState) SetExam(exam *entities.Session, timer *ExamTimer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.examTimer != nil {
		c.examTimer.Stop()
	}
	c.Exam = exam
	c.examTimer = timer
}

// StopExamTimer stops the exam countdown but keeps the session for the result screen.
func (c *ChatState) StopExamTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.examTimer != nil {
		c.examTimer.Stop()
		c.examTimer = nil
	}
}

// Close releases the chat's running timers.
func (c *ChatState) Close() {
	c.StopExamTimer()
}

// SessionStore provides in-memory per-chat state.
type SessionStore struct {
	mu       sync.RWMutex
	chats    map[int64]*ChatState
	lastSeen map[int64]time.Time
	now      func() time.Time
}

// NewSessionStore creates a new SessionStore. A nil now uses time.Now.
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		chats:    make(map[int64]*ChatState),
		lastSeen: make(map[int64]time.Time),
		now:      now,
	}
}

// Get returns the chat's state, creating it on first contact, and marks the chat active.
func (s *SessionStore) Get(chatID int64) *ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.chats[chatID]
	if !ok {
		state = &ChatState{ChatID: chatID, Level: DefaultLevel}
		s.chats[chatID] = state
	}
	s.lastSeen[chatID] = s.now()
	return state
}

// Peek returns the chat's state without creating it or marking it active.
func (s *SessionStore) Peek(chatID int64) (*ChatState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.chats[chatID]
	return state, ok
}

// Delete removes the chat and stops its timers.
func (s *SessionStore) Delete(chatID int64) {
	s.mu.Lock()
	state, ok := s.chats[chatID]
	delete(s.chats, chatID)
	delete(s.lastSeen, chatID)
	s.mu.Unlock()

	if ok {
		state.Close()
	}
}

// EvictIdle removes chats not seen for longer than ttl and returns their ids.
func (s *SessionStore) EvictIdle(ttl time.Duration) []int64 {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var evicted []*ChatState
	for id, seen := range s.lastSeen {
		if seen.Before(cutoff) {
			evicted = append(evicted, s.chats[id])
			delete(s.chats, id)
			delete(s.lastSeen, id)
		}
	}
	s.mu.Unlock()

	ids := make([]int64, 0, len(evicted))
	for _, state := range evicted {
		state.Close()
		ids = append(ids, state.ChatID)
	}
	return ids
}

// Len returns the number of tracked chats.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// CloseAll stops every chat's timers. Used on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.RLock()
	states := make([]*ChatState, 0, len(s.chats))
	for _, state := range s.chats {
		states = append(states, state)
	}
	s.mu.RUnlock()

	for _, state := range states {
		state.Close()
	}
}
