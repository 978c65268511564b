package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

var ticketColumns = []string{
	"id", "created_at", "COALESCE(created_by, 0)", "type", "subject", "COALESCE(description, '')", "files",
	"COALESCE(category, '')", "COALESCE(module, '')", "COALESCE(frequency, '')", "COALESCE(scope, '')", "severity",
	"COALESCE(current_behavior, '')", "COALESCE(expected_behavior, '')", "steps_to_reproduce",
	"COALESCE(problem_statement, '')", "COALESCE(proposed_solution, '')", "COALESCE(business_value, '')",
	"COALESCE(example_link, '')", "priority", "status",
}

// PostgresTickets persists tickets and comments.
type PostgresTickets struct {
	db *sql.DB
}

var _ ports.TicketRepository = (*PostgresTickets)(nil)

// NewPostgresTickets wires a sql.DB implementation.
func NewPostgresTickets(db *sql.DB) *PostgresTickets {
	return &PostgresTickets{db: db}
}

func (r *PostgresTickets) Create(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	query, args, err := insertTicketQuery(t).ToSql()
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("build insert: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return domain.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	return t, nil
}

func (r *PostgresTickets) ByID(ctx context.Context, id int64) (domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns...).From("tickets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("build select: %w", err)
	}
	t, err := scanTicket(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Ticket{}, translateError(err, fmt.Sprintf("ticket %d", id))
	}
	return t, nil
}

func (r *PostgresTickets) List(ctx context.Context, createdBy *int64) ([]domain.Ticket, error) {
	query, args, err := listTicketsQuery(createdBy).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func (r *PostgresTickets) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) (domain.Ticket, error) {
	query, args, err := psql.Update("tickets").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(ticketColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("build update: %w", err)
	}
	t, err := scanTicket(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Ticket{}, translateError(err, fmt.Sprintf("update ticket %d", id))
	}
	return t, nil
}

func (r *PostgresTickets) AddComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	query, args, err := psql.Insert("comments").
		Columns("ticket_id", "user_id", "content").
		Values(c.TicketID, c.UserID, c.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return domain.Comment{}, fmt.Errorf("build insert: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return domain.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	var name, role sql.NullString
	authorQuery, authorArgs, err := psql.Select("name", "role").From("users").Where(sq.Eq{"id": c.UserID}).ToSql()
	if err == nil && r.db.QueryRowContext(ctx, authorQuery, authorArgs...).Scan(&name, &role) == nil {
		c.UserName = name.String
		c.UserRole = domain.Role(role.String)
	}
	return c, nil
}

func (r *PostgresTickets) Comments(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	query, args, err := commentsQuery(ticketID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build comments: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var (
			c          domain.Comment
			name, role sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.TicketID, &c.UserID, &c.Content, &name, &role); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.UserName = name.String
		c.UserRole = domain.Role(role.String)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func insertTicketQuery(t domain.Ticket) sq.InsertBuilder {
	return psql.Insert("tickets").
		Columns(
			"created_by", "type", "subject", "description", "files",
			"category", "module", "frequency", "scope", "severity",
			"current_behavior", "expected_behavior", "steps_to_reproduce",
			"problem_statement", "proposed_solution", "business_value", "example_link",
			"priority", "status",
		).
		Values(
			t.CreatedBy, t.Type, t.Subject, t.Description, pq.StringArray(t.Files),
			t.Category, t.Module, t.Frequency, t.Scope, t.Severity,
			t.CurrentBehavior, t.ExpectedBehavior, pq.StringArray(t.StepsToReproduce),
			t.ProblemStatement, t.ProposedSolution, t.BusinessValue, t.ExampleLink,
			t.Priority, t.Status,
		).
		Suffix("RETURNING id, created_at")
}

func listTicketsQuery(createdBy *int64) sq.SelectBuilder {
	b := psql.Select(ticketColumns...).From("tickets").OrderBy("created_at DESC", "id DESC")
	if createdBy != nil {
		b = b.Where(sq.Eq{"created_by": *createdBy})
	}
	return b
}

func commentsQuery(ticketID int64) sq.SelectBuilder {
	return psql.Select("c.id", "c.created_at", "c.ticket_id", "COALESCE(c.user_id, 0)", "c.content", "u.name", "u.role").
		From("comments c").
		LeftJoin("users u ON u.id = c.user_id").
		Where(sq.Eq{"c.ticket_id": ticketID}).
		OrderBy("c.created_at", "c.id")
}

func scanTicket(row rowScanner) (domain.Ticket, error) {
	var (
		t        domain.Ticket
		files    pq.StringArray
		steps    pq.StringArray
		severity sql.NullInt64
	)
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.CreatedBy, &t.Type, &t.Subject, &t.Description, &files,
		&t.Category, &t.Module, &t.Frequency, &t.Scope, &severity,
		&t.CurrentBehavior, &t.ExpectedBehavior, &steps,
		&t.ProblemStatement, &t.ProposedSolution, &t.BusinessValue,
		&t.ExampleLink, &t.Priority, &t.Status,
	)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.Files = []string(files)
	t.StepsToReproduce = []string(steps)
	if t.Files == nil {
		t.Files = []string{}
	}
	if t.StepsToReproduce == nil {
		t.StepsToReproduce = []string{}
	}
	if severity.Valid {
		v := int(severity.Int64)
		t.Severity = &v
	}
	return t, nil
}
