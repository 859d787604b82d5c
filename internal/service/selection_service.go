package service

import (
	"context"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
)

// Prefill texts for the quick-action intents. The reader UI drops the text
// into the composer; the user can still edit it before sending.
const (
	prefillSummarize = "Summarize this passage."
	prefillTranslate = "Translate this passage into English."
)

// SelectionService turns a text selection in the reader into a new session
type SelectionService struct {
	sessions *SessionService
}

// NewSelectionService creates a new selection service
func NewSelectionService(sessions *SessionService) *SelectionService {
	return &SelectionService{sessions: sessions}
}

// Start opens a session anchored to the selected text and returns it along
// with the composer prefill for the chosen intent. An empty intent means a
// freeform question with no prefill.
func (s *SelectionService) Start(ctx context.Context, bookID, selectedText string, intent domain.Intent) (*domain.SelectionResult, error) {
	if intent == "" {
		intent = domain.IntentFreeform
	}

	var prefill string
	switch intent {
	case domain.IntentSummarize:
		prefill = prefillSummarize
	case domain.IntentTranslate:
		prefill = prefillTranslate
	case domain.IntentFreeform:
		prefill = ""
	default:
		return nil, domain.ErrUnknownIntent
	}

	session, err := s.sessions.Create(ctx, bookID, selectedText)
	if err != nil {
		return nil, err
	}

	return &domain.SelectionResult{
		Session: session,
		Prefill: prefill,
	}, nil
}
