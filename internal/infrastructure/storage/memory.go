package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// MemoryStore keeps every table in process memory. It backs tests, the CLI
// and deployments without a database; contents vanish on restart.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	documents []domain.Document
	settings  map[string]string
	users     []domain.User
	tickets   []domain.Ticket
	comments  []domain.Comment

	nextDocumentID int64
	nextUserID     int64
	nextTicketID   int64
	nextCommentID  int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, settings: map[string]string{}}
}

// Documents returns the document repository view.
func (s *MemoryStore) Documents() *MemoryDocuments { return &MemoryDocuments{s} }

// Settings returns the key/value repository view.
func (s *MemoryStore) Settings() *MemorySettings { return &MemorySettings{s} }

// Users returns the user repository view.
func (s *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{s} }

// Tickets returns the ticket repository view.
func (s *MemoryStore) Tickets() *MemoryTickets { return &MemoryTickets{s} }

// Stats returns the aggregation view.
func (s *MemoryStore) Stats() *MemoryStats { return &MemoryStats{s} }

// MemoryDocuments implements ports.DocumentRepository.
type MemoryDocuments struct{ s *MemoryStore }

var _ ports.DocumentRepository = (*MemoryDocuments)(nil)

func (r *MemoryDocuments) Insert(_ context.Context, doc domain.Document) (domain.Document, error) {
	if doc.Content == "" {
		return domain.Document{}, fmt.Errorf("%w: document content is empty", domain.ErrValidation)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextDocumentID++
	doc.ID = r.s.nextDocumentID
	doc.CreatedAt = r.s.now().UTC()
	if doc.Status == "" {
		doc.Status = domain.StatusIndexing
	}
	if doc.Type == "" {
		doc.Type = domain.TypePDF
	}
	r.s.documents = append(r.s.documents, doc)
	return doc, nil
}

func (r *MemoryDocuments) List(context.Context) ([]domain.DocumentSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.DocumentSummary, 0, len(r.s.documents))
	for i := len(r.s.documents) - 1; i >= 0; i-- {
		out = append(out, r.s.documents[i].Summary())
	}
	return out, nil
}

func (r *MemoryDocuments) ListReady(context.Context) ([]domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Document
	for _, d := range r.s.documents {
		if d.Status == domain.StatusReady {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *MemoryDocuments) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, d := range r.s.documents {
		if d.ID == id {
			r.s.documents = append(r.s.documents[:i], r.s.documents[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
}

// MemorySettings implements ports.SettingsRepository.
type MemorySettings struct{ s *MemoryStore }

var _ ports.SettingsRepository = (*MemorySettings)(nil)

func (r *MemorySettings) Get(_ context.Context, key string) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.settings[key]
	return v, ok, nil
}

func (r *MemorySettings) Put(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[key] = value
	return nil
}

// MemoryUsers implements ports.UserRepository.
type MemoryUsers struct{ s *MemoryStore }

var _ ports.UserRepository = (*MemoryUsers)(nil)

func (r *MemoryUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.userIndexByEmail(user.Email) >= 0 {
		return domain.User{}, fmt.Errorf("email %s: %w", user.Email, domain.ErrConflict)
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now().UTC()
	r.s.users = append(r.s.users, user)
	return user, nil
}

func (r *MemoryUsers) ByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := r.s.userIndexByEmail(email); i >= 0 {
		return r.s.users[i], nil
	}
	return domain.User{}, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (r *MemoryUsers) ByID(_ context.Context, id int64) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := r.s.userIndex(id); i >= 0 {
		return r.s.users[i], nil
	}
	return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
}

func (r *MemoryUsers) List(context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0, len(r.s.users))
	for i := len(r.s.users) - 1; i >= 0; i-- {
		out = append(out, r.s.users[i])
	}
	return out, nil
}

func (r *MemoryUsers) Update(_ context.Context, id int64, patch domain.UserPatch) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(id)
	if i < 0 {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if patch.Email != nil {
		if j := r.s.userIndexByEmail(*patch.Email); j >= 0 && j != i {
			return domain.User{}, fmt.Errorf("email %s: %w", *patch.Email, domain.ErrConflict)
		}
		r.s.users[i].Email = *patch.Email
	}
	if patch.Name != nil {
		r.s.users[i].Name = *patch.Name
	}
	if patch.Role != nil {
		r.s.users[i].Role = *patch.Role
	}
	return r.s.users[i], nil
}

func (r *MemoryUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(id)
	if i < 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
	return nil
}

func (s *MemoryStore) userIndex(id int64) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) userIndexByEmail(email string) int {
	for i, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return i
		}
	}
	return -1
}

// MemoryTickets implements ports.TicketRepository.
type MemoryTickets struct{ s *MemoryStore }

var _ ports.TicketRepository = (*MemoryTickets)(nil)

func (r *MemoryTickets) Create(_ context.Context, t domain.Ticket) (domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTicketID++
	t.ID = r.s.nextTicketID
	t.CreatedAt = r.s.now().UTC()
	t.Files = append([]string{}, t.Files...)
	t.StepsToReproduce = append([]string{}, t.StepsToReproduce...)
	r.s.tickets = append(r.s.tickets, t)
	return t, nil
}

func (r *MemoryTickets) ByID(_ context.Context, id int64) (domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := r.s.ticketIndex(id); i >= 0 {
		return r.s.tickets[i], nil
	}
	return domain.Ticket{}, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
}

func (r *MemoryTickets) List(_ context.Context, createdBy *int64) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Ticket{}
	for i := len(r.s.tickets) - 1; i >= 0; i-- {
		t := r.s.tickets[i]
		if createdBy != nil && t.CreatedBy != *createdBy {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryTickets) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) (domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.ticketIndex(id)
	if i < 0 {
		return domain.Ticket{}, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
	}
	r.s.tickets[i].Status = status
	return r.s.tickets[i], nil
}

func (r *MemoryTickets) AddComment(_ context.Context, c domain.Comment) (domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.ticketIndex(c.TicketID) < 0 {
		return domain.Comment{}, fmt.Errorf("ticket %d: %w", c.TicketID, domain.ErrNotFound)
	}
	r.s.nextCommentID++
	c.ID = r.s.nextCommentID
	c.CreatedAt = r.s.now().UTC()
	r.s.comments = append(r.s.comments, c)
	return r.s.withAuthor(c), nil
}

func (r *MemoryTickets) Comments(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Comment{}
	for _, c := range r.s.comments {
		if c.TicketID == ticketID {
			out = append(out, r.s.withAuthor(c))
		}
	}
	return out, nil
}

func (s *MemoryStore) ticketIndex(id int64) int {
	for i, t := range s.tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) withAuthor(c domain.Comment) domain.Comment {
	if i := s.userIndex(c.UserID); i >= 0 {
		c.UserName = s.users[i].Name
		c.UserRole = s.users[i].Role
	}
	return c
}

// MemoryStats implements ports.StatsRepository.
type MemoryStats struct{ s *MemoryStore }

var _ ports.StatsRepository = (*MemoryStats)(nil)

func (r *MemoryStats) TicketKPI(context.Context) (domain.TicketKPI, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var kpi domain.TicketKPI
	for _, t := range r.s.tickets {
		kpi.TotalTickets++
		switch t.Status {
		case domain.TicketNew, domain.TicketInProgress:
			kpi.ActiveTickets++
		case domain.TicketResolved:
			kpi.ResolvedTickets++
		}
		if t.Priority == domain.PriorityCritical {
			kpi.CriticalTickets++
		}
	}
	return kpi, nil
}

func (r *MemoryStats) TopReporters(_ context.Context, limit int) ([]domain.ReporterCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[int64]int{}
	for _, t := range r.s.tickets {
		counts[t.CreatedBy]++
	}
	out := make([]domain.ReporterCount, 0, len(counts))
	for id, n := range counts {
		rc := domain.ReporterCount{UserID: id, Count: n}
		if i := r.s.userIndex(id); i >= 0 {
			rc.Name = r.s.users[i].Name
			rc.Email = r.s.users[i].Email
		}
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryStats) PriorityCounts(context.Context) (map[domain.Priority]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := map[domain.Priority]int{}
	for _, t := range r.s.tickets {
		out[t.Priority]++
	}
	return out, nil
}
