package domain

import "time"

// Role identifies the speaker of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is one independent conversation pinned to a passage of a book.
// AnchorText is captured once at creation and never changes afterwards.
type Session struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	AnchorText string    `json:"anchor_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Message is one turn in a session's transcript. Transcripts are append-only;
// messages are removed only when their session or book is deleted.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest is the request to send one user turn into a session
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// Failure kinds surfaced on a TurnOutcome
const (
	FailureNotConfigured   = "not_configured"
	FailureProvider        = "provider_error"
	FailureEmptyGeneration = "empty_generation"
	FailureTransport       = "transport_error"
	FailureEmptyAnchor     = "empty_anchor"
)

// TurnFailure describes why a turn produced no real model reply. The rendered
// Message text is what gets stored as the assistant turn.
type TurnFailure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// TurnOutcome is the result of one completed send. Assistant always holds the
// appended assistant-role message; when Failure is non-nil its body is the
// rendered failure text rather than a model reply.
type TurnOutcome struct {
	SessionID   string       `json:"session_id"`
	UserMessage *Message     `json:"user_message"`
	Assistant   *Message     `json:"assistant_message"`
	Failure     *TurnFailure `json:"failure,omitempty"`
}
