package chat

// Role tags who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation. Order in the slice is conversation order.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// HasUserContent reports whether any message was written by the user.
// The synthetic greeting does not count.
func HasUserContent(messages []Message) bool {
	_, ok := FirstByRole(messages, RoleUser)
	return ok
}

// FirstByRole returns the first message authored by role.
func FirstByRole(messages []Message, role Role) (Message, bool) {
	for _, msg := range messages {
		if msg.Role == role {
			return msg, true
		}
	}
	return Message{}, false
}

// Clone copies messages so callers cannot mutate shared history.
func Clone(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
