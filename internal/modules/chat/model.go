package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrRateLimited is returned by a Backend when the text-generation quota
// is exhausted.
var ErrRateLimited = errors.New("chat backend rate limited")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is what the widget shows. RateLimited and Local mark answers that
// did not come from the backend.
type Reply struct {
	Reply       string `json:"reply"`
	RateLimited bool   `json:"rateLimited,omitempty"`
	RetryInMs   int64  `json:"retryInMs,omitempty"`
	Local       bool   `json:"local,omitempty"`
}

// Backend generates the assistant's next turn.
type Backend interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Prompt flattens a conversation into the single text prompt the model
// receives, ending with an open assistant turn.
func Prompt(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Role == RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}

func lastN(messages []Message, n int) []Message {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	return append([]Message(nil), messages...)
}
