package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"Helpdesk/internal/crawler"
	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

const fallbackPDFName = "unknown.pdf"

// SiteCrawler produces unsaved documents from a seed URL.
type SiteCrawler interface {
	Crawl(ctx context.Context, seed string, follow bool) (crawler.Result, error)
}

// PDFExtractor turns raw PDF bytes into plain text.
type PDFExtractor func(data []byte) (string, error)

// KnowledgeDeps wires the collaborators of KnowledgeService.
type KnowledgeDeps struct {
	Documents  ports.DocumentRepository
	Settings   ports.SettingsRepository
	Crawler    SiteCrawler
	ExtractPDF PDFExtractor
	SettingKey string
	Logger     *slog.Logger
}

// KnowledgeService manages the documents that feed the chat assistant.
type KnowledgeService struct {
	documents  ports.DocumentRepository
	settings   ports.SettingsRepository
	crawler    SiteCrawler
	extractPDF PDFExtractor
	settingKey string
	logger     *slog.Logger
}

// ScrapeResult reports how many pages were indexed and their titles.
type ScrapeResult struct {
	Count int      `json:"count"`
	Pages []string `json:"pages"`
}

// APIKeyStatus is the masked view of the stored model key.
type APIKeyStatus struct {
	IsConfigured bool   `json:"isConfigured"`
	MaskedKey    string `json:"maskedKey,omitempty"`
}

// NewKnowledgeService constructs the ingestion service.
func NewKnowledgeService(deps KnowledgeDeps) *KnowledgeService {
	if deps.SettingKey == "" {
		deps.SettingKey = domain.SettingGeminiAPIKey
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &KnowledgeService{
		documents:  deps.Documents,
		settings:   deps.Settings,
		crawler:    deps.Crawler,
		extractPDF: deps.ExtractPDF,
		settingKey: deps.SettingKey,
		logger:     deps.Logger,
	}
}

// Scrape crawls rawURL (and same-host links when follow is set) and stores every
// extracted page. Inserts run one by one; a failed insert stops the batch and
// keeps what was already stored.
func (s *KnowledgeService) Scrape(ctx context.Context, rawURL string, follow bool) (ScrapeResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ScrapeResult{}, fmt.Errorf("%w: URL is required", domain.ErrValidation)
	}
	if s.crawler == nil {
		return ScrapeResult{}, fmt.Errorf("crawler is not configured")
	}

	crawled, err := s.crawler.Crawl(ctx, rawURL, follow)
	if err != nil {
		return ScrapeResult{}, err
	}

	result := ScrapeResult{Pages: []string{}}
	for i, doc := range crawled.Documents {
		if _, err := s.documents.Insert(ctx, doc); err != nil {
			s.logger.Error("store crawled page", "url", deref(doc.URL), "stored", result.Count, "error", err)
			return result, fmt.Errorf("store page %s: %w", deref(doc.URL), err)
		}
		result.Count++
		result.Pages = append(result.Pages, crawled.Titles[i])
	}

	s.logger.Info("knowledge scraped", "url", rawURL, "follow", follow, "count", result.Count,
		"skipped", len(crawled.Skipped))
	return result, nil
}

// UploadPDF extracts the text of a PDF and stores it as one document.
func (s *KnowledgeService) UploadPDF(ctx context.Context, filename string, data []byte) (domain.Document, error) {
	if len(data) == 0 {
		return domain.Document{}, fmt.Errorf("%w: No file uploaded", domain.ErrValidation)
	}
	if s.extractPDF == nil {
		return domain.Document{}, fmt.Errorf("pdf extractor is not configured")
	}

	text, err := s.extractPDF(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("extract pdf text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, fmt.Errorf("%w: no readable text found in PDF", domain.ErrValidation)
	}

	doc, err := s.documents.Insert(ctx, domain.Document{
		Filename: pdfFilename(filename),
		Content:  text,
		Status:   domain.StatusReady,
		Type:     domain.TypePDF,
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("store pdf: %w", err)
	}

	s.logger.Info("pdf ingested", "id", doc.ID, "filename", doc.Filename, "chars", len(text))
	return doc, nil
}

// List returns every document without content, newest first.
func (s *KnowledgeService) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes one document.
func (s *KnowledgeService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID required", domain.ErrValidation)
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	s.logger.Info("document deleted", "id", id)
	return nil
}

// APIKeyStatus reports whether a model key is stored, masked for display.
func (s *KnowledgeService) APIKeyStatus(ctx context.Context) (APIKeyStatus, error) {
	key, ok, err := s.settings.Get(ctx, s.settingKey)
	if err != nil {
		return APIKeyStatus{}, fmt.Errorf("load api key: %w", err)
	}
	if !ok {
		return APIKeyStatus{}, nil
	}
	return APIKeyStatus{IsConfigured: true, MaskedKey: MaskKey(key)}, nil
}

// SetAPIKey upserts the model key.
func (s *KnowledgeService) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: API Key required", domain.ErrValidation)
	}
	if err := s.settings.Put(ctx, s.settingKey, key); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	s.logger.Info("api key updated", "key", s.settingKey)
	return nil
}

// MaskKey keeps the first and last four characters of a secret.
func MaskKey(key string) string {
	head, tail := key, key
	if len(key) > 4 {
		head = key[:4]
		tail = key[len(key)-4:]
	}
	return head + "..." + tail
}

func pdfFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return fallbackPDFName
	}
	if utf8.RuneCountInString(name) > 255 {
		name = string([]rune(name)[:255])
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
