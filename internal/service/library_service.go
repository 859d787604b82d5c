package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/repository"
)

// LibraryService handles the book shelf
type LibraryService struct {
	bookRepo    *repository.BookRepository
	sessionRepo *repository.SessionRepository
}

// NewLibraryService creates a new library service
func NewLibraryService(bookRepo *repository.BookRepository, sessionRepo *repository.SessionRepository) *LibraryService {
	return &LibraryService{
		bookRepo:    bookRepo,
		sessionRepo: sessionRepo,
	}
}

// DetectFormat detects the book format from the file location
func DetectFormat(location string) (string, error) {
	ext := strings.ToLower(filepath.Ext(location))
	switch ext {
	case ".epub":
		return domain.FormatEPUB, nil
	case ".pdf":
		return domain.FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported book format: %q", ext)
	}
}

// AddBook registers a book file on the shelf
func (s *LibraryService) AddBook(ctx context.Context, req *domain.AddBookRequest) (*domain.Book, error) {
	format, err := DetectFormat(req.Location)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		Title:    req.Title,
		Author:   req.Author,
		Location: req.Location,
		Format:   format,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook returns a book by ID
func (s *LibraryService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.bookRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

// ListBooks returns the shelf, most recently opened first
func (s *LibraryService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// UpdateProgress records the reading position for a book
func (s *LibraryService) UpdateProgress(ctx context.Context, id string, req *domain.UpdateProgressRequest) (*domain.Book, error) {
	if req.Position < 0 || req.TotalUnits < 0 {
		return nil, fmt.Errorf("reading position must not be negative")
	}

	if err := s.bookRepo.UpdateProgress(ctx, id, req.Position, req.TotalUnits); err != nil {
		return nil, err
	}
	return s.GetBook(ctx, id)
}

// DeleteBook removes a book and, through the schema's cascade, every session
// and message hanging off it.
func (s *LibraryService) DeleteBook(ctx context.Context, id string) error {
	return s.bookRepo.Delete(ctx, id)
}

// Stats

// GetStats returns shelf-wide counters
func (s *LibraryService) GetStats(ctx context.Context) (*domain.Stats, error) {
	books, err := s.bookRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.CountSessions(ctx)
	if err != nil {
		return nil, err
	}
	turns, err := s.sessionRepo.CountTurns(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		TotalBooks:    books,
		TotalSessions: sessions,
		TotalTurns:    turns,
	}, nil
}
