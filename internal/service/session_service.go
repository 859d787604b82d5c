package service

import (
	"context"
	"strings"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/repository"
)

// SessionService handles the lifecycle of reading sessions
type SessionService struct {
	sessionRepo *repository.SessionRepository
	bookRepo    *repository.BookRepository
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo *repository.SessionRepository, bookRepo *repository.BookRepository) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		bookRepo:    bookRepo,
	}
}

// Create opens a new session pinned to the given passage. The anchor text is
// stored exactly as selected, whitespace included; it only has to be
// non-blank. Once stored it is never modified.
func (s *SessionService) Create(ctx context.Context, bookID, anchorText string) (*domain.Session, error) {
	if strings.TrimSpace(anchorText) == "" {
		return nil, domain.ErrInvalidAnchor
	}

	book, err := s.bookRepo.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}

	session := &domain.Session{
		BookID:     bookID,
		AnchorText: anchorText,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns a session by ID
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ListByBook returns the book's sessions, most recently active first
func (s *SessionService) ListByBook(ctx context.Context, bookID string) ([]*domain.Session, error) {
	sessions, err := s.sessionRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}

// Messages returns the session's transcript in insertion order
func (s *SessionService) Messages(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	messages, err := s.sessionRepo.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	return messages, nil
}

// Delete removes a session and its transcript
func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.sessionRepo.Delete(ctx, id)
}
