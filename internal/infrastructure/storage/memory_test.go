package storage

import (
	"context"
	"errors"
	"testing"

	"Helpdesk/internal/domain"
)

func TestMemoryDocumentsLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	docs := NewMemoryStore().Documents()

	if _, err := docs.Insert(ctx, domain.Document{Filename: "empty"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty content, got %v", err)
	}

	url := "https://example.com"
	first, err := docs.Insert(ctx, domain.Document{Filename: "a.pdf", Content: "alpha", Status: domain.StatusReady, Type: domain.TypePDF})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err = docs.Insert(ctx, domain.Document{Filename: "draft", Content: "beta"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	third, err := docs.Insert(ctx, domain.Document{Filename: "Example [x]", Content: "gamma", Status: domain.StatusReady, Type: domain.TypeURL, URL: &url})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == 0 || third.ID <= first.ID || first.CreatedAt.IsZero() {
		t.Fatalf("ids/timestamps not assigned: %+v %+v", first, third)
	}

	list, err := docs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != third.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].Status != domain.StatusIndexing || list[1].Type != domain.TypePDF {
		t.Fatalf("defaults not applied: %+v", list[1])
	}

	ready, err := docs.ListReady(ctx)
	if err != nil {
		t.Fatalf("list ready: %v", err)
	}
	if len(ready) != 2 || ready[0].ID != first.ID || ready[1].Content != "gamma" {
		t.Fatalf("unexpected ready documents: %+v", ready)
	}

	if err := docs.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := docs.Delete(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemorySettingsUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	settings := NewMemoryStore().Settings()

	if _, ok, _ := settings.Get(ctx, domain.SettingGeminiAPIKey); ok {
		t.Fatalf("expected missing key")
	}
	_ = settings.Put(ctx, domain.SettingGeminiAPIKey, "one")
	_ = settings.Put(ctx, domain.SettingGeminiAPIKey, "two")
	v, ok, err := settings.Get(ctx, domain.SettingGeminiAPIKey)
	if err != nil || !ok || v != "two" {
		t.Fatalf("unexpected value %q ok=%v err=%v", v, ok, err)
	}
}

func TestMemoryUsersUniqueEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := NewMemoryStore().Users()

	ann, err := users.Create(ctx, domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, domain.User{Name: "Ann 2", Email: "ANN@example.com"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	bob, _ := users.Create(ctx, domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser})

	email := "bob@example.com"
	if _, err := users.Update(ctx, ann.ID, domain.UserPatch{Email: &email}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on update, got %v", err)
	}
	role := domain.RoleManager
	updated, err := users.Update(ctx, bob.ID, domain.UserPatch{Role: &role})
	if err != nil || updated.Role != domain.RoleManager {
		t.Fatalf("update role: %+v %v", updated, err)
	}
	if _, err := users.Update(ctx, 999, domain.UserPatch{Role: &role}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, _ := users.List(ctx)
	if len(list) != 2 || list[0].ID != bob.ID {
		t.Fatalf("expected newest first: %+v", list)
	}
	if err := users.Delete(ctx, ann.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.ByID(ctx, ann.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted user gone, got %v", err)
	}
}

func TestMemoryTicketsAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	users, tickets, stats := store.Users(), store.Tickets(), store.Stats()

	ann, _ := users.Create(ctx, domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser})
	bob, _ := users.Create(ctx, domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleManager})

	mk := func(owner int64, p domain.Priority) domain.Ticket {
		tk, err := tickets.Create(ctx, domain.Ticket{CreatedBy: owner, Type: domain.TicketBug, Subject: "s", Priority: p, Status: domain.TicketNew})
		if err != nil {
			t.Fatalf("create ticket: %v", err)
		}
		return tk
	}
	first := mk(ann.ID, domain.PriorityCritical)
	mk(ann.ID, domain.PriorityLow)
	mk(bob.ID, domain.PriorityLow)

	if _, err := tickets.UpdateStatus(ctx, first.ID, domain.TicketResolved); err != nil {
		t.Fatalf("update status: %v", err)
	}

	own, _ := tickets.List(ctx, &ann.ID)
	all, _ := tickets.List(ctx, nil)
	if len(own) != 2 || len(all) != 3 {
		t.Fatalf("unexpected scoping: own=%d all=%d", len(own), len(all))
	}

	c, err := tickets.AddComment(ctx, domain.Comment{TicketID: first.ID, UserID: bob.ID, Content: "looking"})
	if err != nil || c.UserName != "Bob" || c.UserRole != domain.RoleManager {
		t.Fatalf("comment author not joined: %+v %v", c, err)
	}
	if _, err := tickets.AddComment(ctx, domain.Comment{TicketID: 404, UserID: bob.ID, Content: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing ticket, got %v", err)
	}

	kpi, _ := stats.TicketKPI(ctx)
	want := domain.TicketKPI{TotalTickets: 3, ActiveTickets: 2, ResolvedTickets: 1, CriticalTickets: 1}
	if kpi != want {
		t.Fatalf("unexpected kpi: %+v", kpi)
	}

	top, _ := stats.TopReporters(ctx, 1)
	if len(top) != 1 || top[0].Name != "Ann" || top[0].Count != 2 {
		t.Fatalf("unexpected top reporters: %+v", top)
	}

	counts, _ := stats.PriorityCounts(ctx)
	if counts[domain.PriorityLow] != 2 || counts[domain.PriorityCritical] != 1 || counts[domain.PriorityHigh] != 0 {
		t.Fatalf("unexpected priority counts: %v", counts)
	}
}
