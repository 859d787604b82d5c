package domain

import "time"

// Book format constants, detected from the file location at registration
const (
	FormatEPUB = "epub"
	FormatPDF  = "pdf"
)

// Book is one catalog entry in the reader's library. The core never opens the
// file at Location; rendering belongs to the viewer layer.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author,omitempty"`
	Location     string    `json:"location"`
	Format       string    `json:"format,omitempty"`
	LastPosition int       `json:"last_position"`
	TotalUnits   int       `json:"total_units"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddBookRequest is the request to register a book in the library
type AddBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author,omitempty"`
	Location string `json:"location" binding:"required"`
}

// UpdateProgressRequest carries the viewer's navigation position
type UpdateProgressRequest struct {
	Position   int `json:"position"`
	TotalUnits int `json:"total_units"`
}

// Stats represents library-wide counters
type Stats struct {
	TotalBooks    int `json:"total_books"`
	TotalSessions int `json:"total_sessions"`
	TotalTurns    int `json:"total_turns"`
}
