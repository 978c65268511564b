package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/infrastructure/storage"
)

func TestDashboardOnEmptyDesk(t *testing.T) {
	t.Parallel()
	repos := storage.NewMemoryRepositories()

	stats, err := NewStatsService(repos.Stats).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TicketKPI{}, stats.KPI)
	assert.NotNil(t, stats.TopReporters)
	assert.Empty(t, stats.TopReporters)
	assert.Equal(t, []domain.UrgencySlice{
		{Name: "Low", Value: 0, Color: "#4ade80"},
		{Name: "Medium", Value: 0, Color: "#fbbf24"},
		{Name: "High", Value: 0, Color: "#f87171"},
		{Name: "Critical", Value: 0, Color: "#ef4444"},
	}, stats.UrgencyData)
}

func TestDashboardAggregates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()

	var people []domain.User
	for _, name := range []string{"Ann", "Ben", "Cy", "Di"} {
		u, err := repos.Users.Create(ctx, domain.User{Name: name, Email: name + "@example.com", Role: domain.RoleUser})
		require.NoError(t, err)
		people = append(people, u)
	}

	tickets := NewTicketService(TicketDeps{Tickets: repos.Tickets})
	file := func(u domain.User, sev int) domain.Ticket {
		t.Helper()
		tk, err := tickets.Create(ctx, domain.Principal{UserID: u.ID, Role: u.Role},
			domain.Ticket{Type: domain.TicketBug, Subject: "issue", Severity: severity(sev)})
		require.NoError(t, err)
		return tk
	}

	for range 3 {
		file(people[0], 95)
	}
	file(people[1], 60)
	resolved := file(people[1], 10)
	file(people[2], 30)
	file(people[3], 30)

	_, err := tickets.UpdateStatus(ctx, manager, resolved.ID, domain.TicketResolved)
	require.NoError(t, err)

	stats, err := NewStatsService(repos.Stats).Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketKPI{TotalTickets: 7, ActiveTickets: 6, ResolvedTickets: 1, CriticalTickets: 3}, stats.KPI)

	require.Len(t, stats.TopReporters, 3)
	assert.Equal(t, "Ann", stats.TopReporters[0].Name)
	assert.Equal(t, 3, stats.TopReporters[0].Count)
	assert.Equal(t, AvatarURL("Ann"), stats.TopReporters[0].Avatar)
	assert.Equal(t, "Ben", stats.TopReporters[1].Name)
	assert.Equal(t, "Cy", stats.TopReporters[2].Name)

	values := map[string]int{}
	for _, s := range stats.UrgencyData {
		values[s.Name] = s.Value
	}
	assert.Equal(t, map[string]int{"Low": 1, "Medium": 2, "High": 1, "Critical": 3}, values)
}

func TestDashboardNamesUnknownReporters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()

	_, err := NewTicketService(TicketDeps{Tickets: repos.Tickets}).
		Create(ctx, domain.Principal{UserID: 77, Role: domain.RoleUser}, domain.Ticket{Type: domain.TicketFeature, Subject: "orphan"})
	require.NoError(t, err)

	stats, err := NewStatsService(repos.Stats).Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, stats.TopReporters, 1)
	assert.Equal(t, "Unknown", stats.TopReporters[0].Name)
}
