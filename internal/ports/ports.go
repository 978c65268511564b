package ports

import (
	"context"

	"Helpdesk/internal/domain"
)

// DocumentRepository persists knowledge-base documents.
type DocumentRepository interface {
	Insert(ctx context.Context, doc domain.Document) (domain.Document, error)
	List(ctx context.Context) ([]domain.DocumentSummary, error)
	ListReady(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id int64) error
}

// SettingsRepository is the key/value configuration keyspace (API keys, etc.).
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// UserRepository stores helpdesk accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByID(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// TicketRepository stores tickets and their comments.
type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	ByID(ctx context.Context, id int64) (domain.Ticket, error)
	List(ctx context.Context, createdBy *int64) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) (domain.Ticket, error)
	AddComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	Comments(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

// StatsRepository runs dashboard aggregations.
type StatsRepository interface {
	TicketKPI(ctx context.Context) (domain.TicketKPI, error)
	TopReporters(ctx context.Context, limit int) ([]domain.ReporterCount, error)
	PriorityCounts(ctx context.Context) (map[domain.Priority]int, error)
}

// ChatPrompt is a single generation request against a language model.
type ChatPrompt struct {
	APIKey          string
	History         []domain.ChatTurn
	Message         string
	MaxOutputTokens int
}

// ChatModel forwards a conversation to an external language model.
type ChatModel interface {
	Generate(ctx context.Context, prompt ChatPrompt) (string, error)
}

// Notifier pushes short messages to an operator channel (Telegram, etc.).
type Notifier interface {
	Publish(ctx context.Context, message string) error
}
