// Package conversation records the exchange between the user and the
// assistant so later prompts can include a summary of it.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// maxMessageChars bounds each message in the rendered context.
const maxMessageChars = 500

type Message struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is the conversation capability used by command handlers.
type Log interface {
	AddUserMessage(ctx context.Context, content string) error
	AddAssistantMessage(ctx context.Context, content string) error
	// GetConversationContext renders the last maxMessages messages, oldest
	// first. It returns "" when there is nothing to show.
	GetConversationContext(ctx context.Context, maxMessages int) string
}

// MemoryLog keeps messages in process memory.
type MemoryLog struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) AddUserMessage(_ context.Context, content string) error {
	l.add(RoleUser, content)
	return nil
}

func (l *MemoryLog) AddAssistantMessage(_ context.Context, content string) error {
	l.add(RoleAssistant, content)
	return nil
}

func (l *MemoryLog) add(role Role, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, Message{Role: role, Content: content, CreatedAt: time.Now()})
}

func (l *MemoryLog) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Message(nil), l.messages...)
}

func (l *MemoryLog) GetConversationContext(_ context.Context, maxMessages int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := l.messages
	if maxMessages > 0 && len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	return Render(msgs)
}

// Render formats messages one per line as "User: ..." / "Assistant: ...".
func Render(msgs []Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if r := []rune(content); len(r) > maxMessageChars {
			content = string(r[:maxMessageChars]) + "..."
		}
		fmt.Fprintf(&sb, "%s: %s\n", m.Role.label(), content)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (r Role) label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	}
	return string(r)
}
