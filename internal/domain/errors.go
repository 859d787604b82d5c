package domain

import "errors"

var (
	// ErrInvalidAnchor indicates a session was requested for an empty selection
	ErrInvalidAnchor = errors.New("anchor text must not be empty")
	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")
	// ErrBookNotFound indicates the book does not exist
	ErrBookNotFound = errors.New("book not found")
	// ErrEmptyMessage indicates a blank outgoing message
	ErrEmptyMessage = errors.New("message text must not be empty")
	// ErrEmptyAnchor indicates a stored session has lost its anchor text
	ErrEmptyAnchor = errors.New("session anchor text is empty")
	// ErrFirstTurnRole indicates an attempt to open a transcript with an assistant message
	ErrFirstTurnRole = errors.New("session transcript must begin with a user message")
	// ErrInvalidRole indicates a message role outside user/assistant
	ErrInvalidRole = errors.New("message role must be user or assistant")
	// ErrUnknownIntent indicates an unrecognized selection intent
	ErrUnknownIntent = errors.New("unknown selection intent")
	// ErrUnknownTheme indicates an unrecognized reader theme
	ErrUnknownTheme = errors.New("unknown reader theme")
	// ErrNotConfigured indicates no provider credential is configured
	ErrNotConfigured = errors.New("model API key is not configured")
	// ErrProvider indicates the provider rejected the request
	ErrProvider = errors.New("provider rejected the request")
	// ErrEmptyGeneration indicates the provider produced no output
	ErrEmptyGeneration = errors.New("provider returned no output")
	// ErrTransport indicates a network-level failure calling the provider
	ErrTransport = errors.New("provider request failed")
)
