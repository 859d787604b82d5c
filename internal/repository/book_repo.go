package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
)

// BookRepository handles library catalog persistence
type BookRepository struct {
	db *DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create registers a new book
func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, location, format, last_position, total_units, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, book.ID, book.Title, book.Author, book.Location, book.Format,
		book.LastPosition, book.TotalUnits, book.CreatedAt, book.UpdatedAt)

	return err
}

// Get retrieves a book by ID. Returns (nil, nil) when absent.
func (r *BookRepository) Get(ctx context.Context, id string) (*domain.Book, error) {
	book := &domain.Book{}
	var author, format sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, author, location, format, last_position, total_units, created_at, updated_at
		FROM books WHERE id = ?
	`, id).Scan(&book.ID, &book.Title, &author, &book.Location, &format,
		&book.LastPosition, &book.TotalUnits, &book.CreatedAt, &book.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	book.Author = author.String
	book.Format = format.String

	return book, nil
}

// List retrieves all books, most recently opened first.
func (r *BookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, author, location, format, last_position, total_units, created_at, updated_at
		FROM books ORDER BY updated_at DESC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{}
		var author, format sql.NullString

		if err := rows.Scan(&book.ID, &book.Title, &author, &book.Location, &format,
			&book.LastPosition, &book.TotalUnits, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, err
		}

		book.Author = author.String
		book.Format = format.String
		books = append(books, book)
	}

	return books, rows.Err()
}

// UpdateProgress stores the viewer's reading position for a book
func (r *BookRepository) UpdateProgress(ctx context.Context, id string, position, totalUnits int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE books SET last_position = ?, total_units = ?, updated_at = ?
		WHERE id = ?
	`, position, totalUnits, time.Now(), id)

	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

// Delete removes a book; sessions and messages cascade with it.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

// Count returns the total number of books
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}
