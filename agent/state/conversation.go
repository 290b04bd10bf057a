package state

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNilConversation      = errors.New("conversation is nil")
	ErrInvalidConversation  = errors.New("conversation id is empty")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultMaxTurns bounds the stored window; older turns are dropped.
	DefaultMaxTurns = 20
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Conversation is the per-conversation history fed back into the grounded
// prompt. It is the only cross-query state the engine keeps, and it is
// keyed strictly by conversation id.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	Turns          []Turn    `json:"turns,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewConversation(conversationID string) *Conversation {
	return &Conversation{
		ConversationID: strings.TrimSpace(conversationID),
		UpdatedAt:      time.Now().UTC(),
	}
}

func (c *Conversation) Validate() error {
	if c == nil {
		return ErrNilConversation
	}
	if strings.TrimSpace(c.ConversationID) == "" {
		return ErrInvalidConversation
	}
	return nil
}

// Append adds a turn and trims the window to maxTurns.
func (c *Conversation) Append(role, content string, at time.Time, maxTurns int) {
	if c == nil || strings.TrimSpace(content) == "" {
		return
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	c.Turns = append(c.Turns, Turn{
		Role:    role,
		Content: strings.TrimSpace(content),
		At:      at.UTC(),
	})
	if len(c.Turns) > maxTurns {
		c.Turns = c.Turns[len(c.Turns)-maxTurns:]
	}
	c.UpdatedAt = at.UTC()
}

// Window returns the most recent n turns.
func (c *Conversation) Window(n int) []Turn {
	if c == nil || n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if len(c.Turns) <= n {
		out := make([]Turn, len(c.Turns))
		copy(out, c.Turns)
		return out
	}
	out := make([]Turn, n)
	copy(out, c.Turns[len(c.Turns)-n:])
	return out
}

// Clone deep-copies the conversation.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Turns = make([]Turn, len(c.Turns))
	copy(cp.Turns, c.Turns)
	return &cp
}
