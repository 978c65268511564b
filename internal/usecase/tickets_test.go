package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/infrastructure/storage"
)

var (
	alice   = domain.Principal{UserID: 1, Email: "alice@example.com", Role: domain.RoleUser}
	bob     = domain.Principal{UserID: 2, Email: "bob@example.com", Role: domain.RoleUser}
	manager = domain.Principal{UserID: 3, Email: "mia@example.com", Role: domain.RoleManager}
)

func severity(v int) *int { return &v }

func TestDerivePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ticket domain.Ticket
		want   domain.Priority
	}{
		{name: "critical severity", ticket: domain.Ticket{Severity: severity(81)}, want: domain.PriorityCritical},
		{name: "high boundary", ticket: domain.Ticket{Severity: severity(80)}, want: domain.PriorityHigh},
		{name: "medium", ticket: domain.Ticket{Severity: severity(21)}, want: domain.PriorityMedium},
		{name: "low boundary", ticket: domain.Ticket{Severity: severity(20)}, want: domain.PriorityLow},
		{name: "severity wins over request", ticket: domain.Ticket{Severity: severity(0), Priority: domain.PriorityHigh}, want: domain.PriorityLow},
		{name: "requested kept", ticket: domain.Ticket{Priority: domain.PriorityHigh}, want: domain.PriorityHigh},
		{name: "unknown request", ticket: domain.Ticket{Priority: "urgent"}, want: domain.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, derivePriority(tt.ticket))
		})
	}
}

func TestCreateTicket(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	notifier := &fakeNotifier{}
	svc := NewTicketService(TicketDeps{Tickets: repos.Tickets, Notifier: notifier})

	created, err := svc.Create(ctx, alice, domain.Ticket{
		ID:        99,
		CreatedBy: 42,
		Type:      domain.TicketBug,
		Subject:   "  Login broken ",
		Severity:  severity(90),
		Status:    domain.TicketClosed,
	})
	require.NoError(t, err)
	assert.NotEqual(t, int64(99), created.ID)
	assert.Equal(t, alice.UserID, created.CreatedBy)
	assert.Equal(t, "Login broken", created.Subject)
	assert.Equal(t, domain.TicketNew, created.Status)
	assert.Equal(t, domain.PriorityCritical, created.Priority)
	assert.NotNil(t, created.Files)
	assert.NotNil(t, created.StepsToReproduce)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "New bug ticket #")
	assert.Contains(t, notifier.messages[0], "[critical]: Login broken")
}

func TestCreateTicketSurvivesNotifierFailure(t *testing.T) {
	t.Parallel()
	repos := storage.NewMemoryRepositories()
	svc := NewTicketService(TicketDeps{Tickets: repos.Tickets, Notifier: &fakeNotifier{err: errors.New("telegram down")}})

	_, err := svc.Create(context.Background(), alice, domain.Ticket{Type: domain.TicketFeature, Subject: "Dark mode"})
	require.NoError(t, err)
}

func TestCreateTicketValidation(t *testing.T) {
	t.Parallel()
	repos := storage.NewMemoryRepositories()
	svc := NewTicketService(TicketDeps{Tickets: repos.Tickets})

	for _, in := range []domain.Ticket{
		{Type: "question", Subject: "x"},
		{Type: domain.TicketBug, Subject: "  "},
		{Type: domain.TicketBug, Subject: "x", Severity: severity(101)},
		{Type: domain.TicketBug, Subject: "x", Severity: severity(-1)},
	} {
		_, err := svc.Create(context.Background(), alice, in)
		require.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestTicketVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := NewTicketService(TicketDeps{Tickets: repos.Tickets})

	mine, err := svc.Create(ctx, alice, domain.Ticket{Type: domain.TicketBug, Subject: "mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, domain.Ticket{Type: domain.TicketBug, Subject: "theirs"})
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = svc.List(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Get(ctx, bob, mine.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Get(ctx, manager, mine.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, alice, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusIsTriageOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := NewTicketService(TicketDeps{Tickets: repos.Tickets})

	tk, err := svc.Create(ctx, alice, domain.Ticket{Type: domain.TicketBug, Subject: "x"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, alice, tk.ID, domain.TicketResolved)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UpdateStatus(ctx, manager, tk.ID, "done")
	require.ErrorIs(t, err, domain.ErrValidation)

	updated, err := svc.UpdateStatus(ctx, manager, tk.ID, domain.TicketInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketInProgress, updated.Status)
}

func TestComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := NewTicketService(TicketDeps{Tickets: repos.Tickets})

	tk, err := svc.Create(ctx, alice, domain.Ticket{Type: domain.TicketBug, Subject: "x"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, alice, tk.ID, " ")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.AddComment(ctx, bob, tk.ID, "let me in")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AddComment(ctx, alice, tk.ID, "first")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, manager, tk.ID, "second")
	require.NoError(t, err)

	comments, err := svc.Comments(ctx, alice, tk.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, manager.UserID, comments[1].UserID)

	_, err = svc.Comments(ctx, bob, tk.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
