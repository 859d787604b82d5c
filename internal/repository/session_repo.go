package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
)

// SessionRepository handles session and transcript persistence
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session. The anchor text is stored exactly as
// captured; validating it is the caller's job.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, book_id, anchor_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.BookID, session.AnchorText, session.CreatedAt, session.UpdatedAt)

	return err
}

// Get retrieves a session by ID. Returns (nil, nil) when absent.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	session := &domain.Session{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, book_id, anchor_text, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.BookID, &session.AnchorText,
		&session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// ListByBook retrieves all sessions for a book, most recently active first.
func (r *SessionRepository) ListByBook(ctx context.Context, bookID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, book_id, anchor_text, created_at, updated_at
		FROM sessions WHERE book_id = ?
		ORDER BY updated_at DESC, created_at DESC
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session := &domain.Session{}
		if err := rows.Scan(&session.ID, &session.BookID, &session.AnchorText,
			&session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Delete removes a session; its messages go with it via the cascade.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// AppendMessage appends one turn to a session's transcript and bumps the
// session's updated_at in the same transaction, so the recency ordering can
// never drift from the transcript. It is the only way messages are written:
// a transcript may not open with an assistant turn, and roles outside
// user/assistant are rejected outright.
func (r *SessionRepository) AppendMessage(ctx context.Context, message *domain.Message) error {
	if message.Role != domain.RoleUser && message.Role != domain.RoleAssistant {
		return domain.ErrInvalidRole
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	// Touch doubles as the existence check.
	result, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`,
		message.CreatedAt, message.SessionID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrSessionNotFound
	}

	var count, maxSeq int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(seq), 0) FROM messages WHERE session_id = ?
	`, message.SessionID).Scan(&count, &maxSeq)
	if err != nil {
		return err
	}
	if count == 0 && message.Role != domain.RoleUser {
		return domain.ErrFirstTurnRole
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, seq, role, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, maxSeq+1, string(message.Role),
		message.Body, message.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Messages retrieves a session's transcript in append order.
func (r *SessionRepository) Messages(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, role, body, created_at
		FROM messages WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var role string

		if err := rows.Scan(&message.ID, &message.SessionID, &role,
			&message.Body, &message.CreatedAt); err != nil {
			return nil, err
		}

		message.Role = domain.Role(role)
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// CountSessions returns the total number of sessions
func (r *SessionRepository) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}

// CountTurns returns the total number of user messages (turns asked)
func (r *SessionRepository) CountTurns(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE role = 'user'`).Scan(&count)
	return count, err
}
