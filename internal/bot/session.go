package bot

import "sync"

// SessionStore tracks the menu state of each chat. A chat never seen
// before reads as StateMain.
type SessionStore interface {
	Get(chatID int64) State
	Set(chatID int64, state State)
	Reset(chatID int64)
}

// MemorySessions is the in-process SessionStore. State lives for the
// process lifetime; a restart returns every chat to the main menu.
type MemorySessions struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{states: make(map[int64]State)}
}

func (s *MemorySessions) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[chatID]
}

func (s *MemorySessions) Set(chatID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = state
}

func (s *MemorySessions) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}

// Len reports how many chats have recorded state, for tests.
func (s *MemorySessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
