package usecase

import (
	"context"
	"errors"
	"sync"

	"Helpdesk/internal/crawler"
	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

type fakeModel struct {
	mu      sync.Mutex
	prompts []ports.ChatPrompt
	reply   string
	err     error
}

func (m *fakeModel) Generate(_ context.Context, prompt ports.ChatPrompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func (m *fakeModel) last() ports.ChatPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[len(m.prompts)-1]
}

type fakeCrawler struct {
	result crawler.Result
	err    error
	seeds  []string
}

func (c *fakeCrawler) Crawl(_ context.Context, seed string, _ bool) (crawler.Result, error) {
	c.seeds = append(c.seeds, seed)
	return c.result, c.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *fakeNotifier) Publish(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

type outcomeCounter struct {
	outcomes []string
}

func (c *outcomeCounter) ObserveChat(outcome string, _ bool) {
	c.outcomes = append(c.outcomes, outcome)
}

// failingDocuments rejects inserts after the first allowed ones.
type failingDocuments struct {
	ports.DocumentRepository
	allowed int
}

func (d *failingDocuments) Insert(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if d.allowed == 0 {
		return domain.Document{}, errors.New("disk full")
	}
	d.allowed--
	return d.DocumentRepository.Insert(ctx, doc)
}
