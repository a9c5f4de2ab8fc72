package ai

import "fmt"

const (
	maxMessages       = 50
	maxMessageContent = 4096
)

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	Messages []Message    `json:"messages"`
	Data     *ChatContext `json:"data,omitempty"`
}

// Validate enforces the chat request envelope: known roles, bounded
// content, bounded conversation length. Unlike filter parsing this does
// NOT fail open — a malformed chat request is rejected.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	if len(r.Messages) > maxMessages {
		return fmt.Errorf("too many messages: %d (max %d)", len(r.Messages), maxMessages)
	}
	for i, m := range r.Messages {
		switch m.Role {
		case "user", "assistant", "system":
		default:
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
		if len(m.Content) > maxMessageContent {
			return fmt.Errorf("message %d: content exceeds %d characters", i, maxMessageContent)
		}
	}
	return nil
}
