package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// TicketDeps wires the collaborators of TicketService.
type TicketDeps struct {
	Tickets  ports.TicketRepository
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// TicketService files, scopes and triages tickets.
type TicketService struct {
	tickets  ports.TicketRepository
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewTicketService constructs the service. Notifier may be nil.
func NewTicketService(deps TicketDeps) *TicketService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &TicketService{
		tickets:  deps.Tickets,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// Create files a ticket on behalf of the caller. Bug severity decides the
// priority; otherwise a valid requested priority is kept, low by default.
func (s *TicketService) Create(ctx context.Context, caller domain.Principal, t domain.Ticket) (domain.Ticket, error) {
	t.Subject = strings.TrimSpace(t.Subject)
	switch {
	case t.Type != domain.TicketBug && t.Type != domain.TicketFeature:
		return domain.Ticket{}, fmt.Errorf("%w: type must be bug or feature", domain.ErrValidation)
	case t.Subject == "":
		return domain.Ticket{}, fmt.Errorf("%w: subject is required", domain.ErrValidation)
	case t.Severity != nil && (*t.Severity < 0 || *t.Severity > 100):
		return domain.Ticket{}, fmt.Errorf("%w: severity must be between 0 and 100", domain.ErrValidation)
	}

	t.ID = 0
	t.CreatedBy = caller.UserID
	t.Status = domain.TicketNew
	t.Priority = derivePriority(t)
	if t.Files == nil {
		t.Files = []string{}
	}
	if t.StepsToReproduce == nil {
		t.StepsToReproduce = []string{}
	}

	created, err := s.tickets.Create(ctx, t)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.Info("ticket created", "ticket_id", created.ID, "type", created.Type,
		"priority", created.Priority, "user_id", caller.UserID)
	s.notify(ctx, created)
	return created, nil
}

// List returns every ticket to triagers and only their own to regular users.
func (s *TicketService) List(ctx context.Context, caller domain.Principal) ([]domain.Ticket, error) {
	var owner *int64
	if !caller.Role.CanTriage() {
		owner = &caller.UserID
	}
	tickets, err := s.tickets.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// Get loads a ticket the caller may see.
func (s *TicketService) Get(ctx context.Context, caller domain.Principal, id int64) (domain.Ticket, error) {
	t, err := s.tickets.ByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("load ticket %d: %w", id, err)
	}
	if !caller.Role.CanTriage() && t.CreatedBy != caller.UserID {
		return domain.Ticket{}, fmt.Errorf("%w: ticket %d belongs to another user", domain.ErrForbidden, id)
	}
	return t, nil
}

// UpdateStatus moves a ticket through triage. Only managers and admins may do so.
func (s *TicketService) UpdateStatus(ctx context.Context, caller domain.Principal, id int64, status domain.TicketStatus) (domain.Ticket, error) {
	if !caller.Role.CanTriage() {
		return domain.Ticket{}, fmt.Errorf("%w: only managers can change status", domain.ErrForbidden)
	}
	if !status.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	t, err := s.tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("update ticket %d: %w", id, err)
	}
	s.logger.Info("ticket status changed", "ticket_id", id, "status", status, "user_id", caller.UserID)
	return t, nil
}

// Comments lists the discussion of a visible ticket, oldest first.
func (s *TicketService) Comments(ctx context.Context, caller domain.Principal, ticketID int64) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, caller, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.tickets.Comments(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AddComment posts a comment as the caller.
func (s *TicketService) AddComment(ctx context.Context, caller domain.Principal, ticketID int64, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if _, err := s.Get(ctx, caller, ticketID); err != nil {
		return domain.Comment{}, err
	}
	c, err := s.tickets.AddComment(ctx, domain.Comment{
		TicketID: ticketID,
		UserID:   caller.UserID,
		Content:  content,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

func (s *TicketService) notify(ctx context.Context, t domain.Ticket) {
	if s.notifier == nil {
		return
	}
	msg := fmt.Sprintf("New %s ticket #%d [%s]: %s", t.Type, t.ID, t.Priority, t.Subject)
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.logger.Warn("ticket notification failed", "ticket_id", t.ID, "error", err)
	}
}

func derivePriority(t domain.Ticket) domain.Priority {
	if t.Severity != nil {
		return domain.PriorityFromScore(*t.Severity)
	}
	for _, p := range domain.Priorities {
		if t.Priority == p {
			return p
		}
	}
	return domain.PriorityLow
}
