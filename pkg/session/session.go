// Package session holds the conversation state threaded through a generation
// run.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/YNCK000/strudel-studio/pkg/chat"
)

// Session is one conversation. It is owned by a single run at a time and is
// not safe for concurrent mutation.
type Session struct {
	ID        string         `json:"id"`
	Messages  []chat.Message `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
}

type Opt func(*Session)

// WithHistory seeds the session with prior conversation turns.
func WithHistory(messages []chat.Message) Opt {
	return func(s *Session) {
		s.Messages = append(s.Messages, messages...)
	}
}

// WithUserMessage appends a fresh user request after any seeded history.
func WithUserMessage(content string) Opt {
	return func(s *Session) {
		s.Messages = append(s.Messages, chat.UserMessage(content))
	}
}

func New(opts ...Opt) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) AddMessage(msg chat.Message) {
	s.Messages = append(s.Messages, msg)
}
