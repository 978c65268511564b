package storage

import (
	"database/sql"

	"Helpdesk/internal/ports"
)

// Repositories groups every persistence port behind one storage driver.
type Repositories struct {
	Documents ports.DocumentRepository
	Settings  ports.SettingsRepository
	Users     ports.UserRepository
	Tickets   ports.TicketRepository
	Stats     ports.StatsRepository
}

// NewPostgresRepositories binds all ports to one connection pool.
func NewPostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Documents: NewPostgresDocuments(db),
		Settings:  NewPostgresSettings(db),
		Users:     NewPostgresUsers(db),
		Tickets:   NewPostgresTickets(db),
		Stats:     NewPostgresStats(db),
	}
}

// NewMemoryRepositories binds all ports to a fresh in-process store.
func NewMemoryRepositories() Repositories {
	s := NewMemoryStore()
	return Repositories{
		Documents: s.Documents(),
		Settings:  s.Settings(),
		Users:     s.Users(),
		Tickets:   s.Tickets(),
		Stats:     s.Stats(),
	}
}
