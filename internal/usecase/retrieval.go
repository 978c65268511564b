package usecase

import (
	"context"
	"fmt"
	"strings"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

const retrievalInstruction = "Use the following knowledge base to answer the user's question. " +
	"If the answer is not in the knowledge base, say that you do not know."

// BuildRetrievalContext concatenates every document verbatim under a source header.
// It returns "" when docs is empty.
func BuildRetrievalContext(docs []domain.Document) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(retrievalInstruction)
	for _, doc := range docs {
		b.WriteString("\n\n--- Source: ")
		b.WriteString(doc.Filename)
		b.WriteString(" ---\n")
		b.WriteString(doc.Content)
	}
	return b.String()
}

// Retriever builds the chat context from the ready documents of the store.
type Retriever struct {
	documents ports.DocumentRepository
}

// NewRetriever wires the document store.
func NewRetriever(documents ports.DocumentRepository) *Retriever {
	return &Retriever{documents: documents}
}

// Context loads all ready documents in store order and renders them.
func (r *Retriever) Context(ctx context.Context) (string, error) {
	docs, err := r.documents.ListReady(ctx)
	if err != nil {
		return "", fmt.Errorf("load ready documents: %w", err)
	}
	return BuildRetrievalContext(docs), nil
}
