package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresDocuments persists knowledge-base documents into Postgres.
type PostgresDocuments struct {
	db *sql.DB
}

var _ ports.DocumentRepository = (*PostgresDocuments)(nil)

// NewPostgresDocuments wires a sql.DB implementation.
func NewPostgresDocuments(db *sql.DB) *PostgresDocuments {
	return &PostgresDocuments{db: db}
}

// Insert stores a document and returns it with id and creation time.
func (r *PostgresDocuments) Insert(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if doc.Content == "" {
		return domain.Document{}, fmt.Errorf("%w: document content is empty", domain.ErrValidation)
	}
	if doc.Status == "" {
		doc.Status = domain.StatusIndexing
	}
	if doc.Type == "" {
		doc.Type = domain.TypePDF
	}

	query, args, err := insertDocumentQuery(doc).ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build insert: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&doc.ID, &doc.CreatedAt); err != nil {
		return domain.Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// List returns summaries, newest first.
func (r *PostgresDocuments) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	query, args, err := listDocumentsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	result := []domain.DocumentSummary{}
	for rows.Next() {
		var (
			d   domain.DocumentSummary
			url sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Filename, &d.Status, &d.CreatedAt, &d.Type, &url); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.URL = nullableString(url)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// ListReady returns full ready documents in id order.
func (r *PostgresDocuments) ListReady(ctx context.Context) ([]domain.Document, error) {
	query, args, err := listReadyQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ready: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ready documents: %w", err)
	}
	defer rows.Close()

	var result []domain.Document
	for rows.Next() {
		var (
			d   domain.Document
			url sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Filename, &d.Content, &d.Status, &d.Type, &url, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.URL = nullableString(url)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Delete removes a document by id.
func (r *PostgresDocuments) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("documents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("document %d", id))
}

func insertDocumentQuery(doc domain.Document) sq.InsertBuilder {
	return psql.Insert("documents").
		Columns("filename", "content", "status", "type", "url").
		Values(doc.Filename, doc.Content, doc.Status, doc.Type, doc.URL).
		Suffix("RETURNING id, created_at")
}

func listDocumentsQuery() sq.SelectBuilder {
	return psql.Select("id", "filename", "status", "created_at", "type", "url").
		From("documents").
		OrderBy("created_at DESC", "id DESC")
}

func listReadyQuery() sq.SelectBuilder {
	return psql.Select("id", "filename", "content", "status", "type", "url", "created_at").
		From("documents").
		Where(sq.Eq{"status": domain.StatusReady}).
		OrderBy("id")
}

// PostgresSettings stores the app_config keyspace.
type PostgresSettings struct {
	db *sql.DB
}

var _ ports.SettingsRepository = (*PostgresSettings)(nil)

// NewPostgresSettings wires a sql.DB implementation.
func NewPostgresSettings(db *sql.DB) *PostgresSettings {
	return &PostgresSettings{db: db}
}

// Get reads one key; ok is false when it is absent.
func (r *PostgresSettings) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := psql.Select("value").From("app_config").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build get: %w", err)
	}
	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query setting %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts one key.
func (r *PostgresSettings) Put(ctx context.Context, key, value string) error {
	query, args, err := upsertSettingQuery(key, value).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

func upsertSettingQuery(key, value string) sq.InsertBuilder {
	return psql.Insert("app_config").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value")
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

func translateError(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, domain.ErrConflict)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
