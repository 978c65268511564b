package domain

import "time"

// DocumentStatus tracks where a knowledge-base document is in its lifecycle.
type DocumentStatus string

const (
	StatusIndexing DocumentStatus = "indexing"
	StatusReady    DocumentStatus = "ready"
	StatusError    DocumentStatus = "error"
)

// DocumentType discriminates the origin of a document.
type DocumentType string

const (
	TypePDF DocumentType = "pdf"
	TypeURL DocumentType = "url"
)

// Document is one unit of knowledge: an uploaded PDF or a crawled page.
type Document struct {
	ID        int64
	Filename  string
	Content   string
	Status    DocumentStatus
	Type      DocumentType
	URL       *string
	CreatedAt time.Time
}

// DocumentSummary is the listing view of a Document without its content.
type DocumentSummary struct {
	ID        int64          `json:"id"`
	Filename  string         `json:"filename"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	Type      DocumentType   `json:"type"`
	URL       *string        `json:"url"`
}

// Summary drops the content of a document.
func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Filename:  d.Filename,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		Type:      d.Type,
		URL:       d.URL,
	}
}

// Settings keys stored in the application configuration keyspace.
const (
	SettingGeminiAPIKey = "gemini_api_key"
	SettingOpenAIAPIKey = "openai_api_key"
)
