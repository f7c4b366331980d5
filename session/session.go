package session

import (
	"sync"
	"time"

	"github.com/saocarlos/refribot/order"
)

// Message roles as sent to the completion service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stage is one discrete phase of the ordering conversation.
type Stage string

const (
	StageStart       Stage = "start"
	StageAskFlavor   Stage = "ask_flavor"
	StageAskQuantity Stage = "ask_quantity"
	StageAskCEP      Stage = "ask_cep"
	StageAskPayment  Stage = "ask_payment"
	StageSummary     Stage = "summary"
	StageFinalized   Stage = "finalized"
)

// Session is one customer's conversation: full transcript, current stage
// and the order fragment accumulated so far. The store owns the only copy;
// callers mutate it in place while holding the session lock.
type Session struct {
	Phone        string
	Stage        Stage
	Messages     []Message
	Order        order.Fragment
	CreatedAt    time.Time
	LastActivity time.Time

	mu sync.Mutex
}

func newSession(phone string) *Session {
	now := time.Now()
	return &Session{
		Phone:        phone,
		Stage:        StageStart,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Lock acquires the per-session lock. One inbound message is processed at
// a time per customer; messages from different customers never contend.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a transcript entry and bumps the activity timestamp.
// Caller must hold the session lock.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
	s.LastActivity = time.Now()
}

// Reset rewinds the session for a repeat order: stage back to start and a
// fresh order fragment. The transcript is kept.
func (s *Session) Reset() {
	s.Stage = StageStart
	s.Order = order.Fragment{}
}

// Snapshot returns a copy of the transcript, safe to hand to a background
// worker after the session leaves the store. Caller must hold the session
// lock.
func (s *Session) Snapshot() []Message {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return msgs
}
