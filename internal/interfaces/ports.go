package interfaces

import (
	"context"
	"errors"
	"io"

	"punto_kennedy_crm/internal/entities"
)

// ErrNoChoices signals a completion call that succeeded but carried no answer.
var ErrNoChoices = errors.New("no completion choices")

// TextGenerator is the single external chat-completion capability. One attempt
// per request, no retries.
type TextGenerator interface {
	Complete(ctx context.Context, messages []GenMessage) (string, error)
}

type GenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BlobStore retrieves and stores raw file bytes by an opaque file reference.
type BlobStore interface {
	Upload(ctx context.Context, name, mimeType string, r io.Reader) (fileID string, err error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

type StudentStore interface {
	GetByID(ctx context.Context, id int) (*entities.Student, error)
	List(ctx context.Context) ([]entities.Student, error)
	Search(ctx context.Context, query string) ([]entities.Student, error)
	Create(ctx context.Context, s *entities.Student) error
	Update(ctx context.Context, s *entities.Student) error
	Delete(ctx context.Context, id int) error
}

type ChatStore interface {
	// RecentByPhone returns up to limit messages whose session id contains the
	// normalized phone digits, newest first.
	RecentByPhone(ctx context.Context, phoneDigits string, limit int) ([]entities.ChatMessage, error)
	Append(ctx context.Context, sessionID, payload string) error
	ListSessions(ctx context.Context) ([]entities.ChatSession, error)
}

type DocumentStore interface {
	ListByStudent(ctx context.Context, studentID int) ([]entities.Document, error)
	GetByID(ctx context.Context, id string) (*entities.Document, error)
	Create(ctx context.Context, d *entities.Document) error
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Notifier delivers best-effort staff alerts. Implementations must never block
// request handling on delivery failures.
type Notifier interface {
	Notify(text string)
}
