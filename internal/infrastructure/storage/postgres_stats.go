package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// PostgresStats runs dashboard aggregations.
type PostgresStats struct {
	db *sql.DB
}

var _ ports.StatsRepository = (*PostgresStats)(nil)

// NewPostgresStats wires a sql.DB implementation.
func NewPostgresStats(db *sql.DB) *PostgresStats {
	return &PostgresStats{db: db}
}

func (r *PostgresStats) TicketKPI(ctx context.Context) (domain.TicketKPI, error) {
	query, args, err := ticketKPIQuery().ToSql()
	if err != nil {
		return domain.TicketKPI{}, fmt.Errorf("build kpi: %w", err)
	}
	var kpi domain.TicketKPI
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&kpi.TotalTickets, &kpi.ActiveTickets, &kpi.ResolvedTickets, &kpi.CriticalTickets)
	if err != nil {
		return domain.TicketKPI{}, fmt.Errorf("query kpi: %w", err)
	}
	return kpi, nil
}

func (r *PostgresStats) TopReporters(ctx context.Context, limit int) ([]domain.ReporterCount, error) {
	query, args, err := topReportersQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reporters: %w", err)
	}
	defer rows.Close()

	result := []domain.ReporterCount{}
	for rows.Next() {
		var (
			rc          domain.ReporterCount
			id          sql.NullInt64
			name, email sql.NullString
		)
		if err := rows.Scan(&id, &name, &email, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan reporter: %w", err)
		}
		rc.UserID = id.Int64
		rc.Name = name.String
		rc.Email = email.String
		result = append(result, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func (r *PostgresStats) PriorityCounts(ctx context.Context) (map[domain.Priority]int, error) {
	query, args, err := psql.Select("priority", "COUNT(*)").From("tickets").GroupBy("priority").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build priority counts: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query priority counts: %w", err)
	}
	defer rows.Close()

	result := map[domain.Priority]int{}
	for rows.Next() {
		var (
			p domain.Priority
			n int
		)
		if err := rows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		result[p] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func ticketKPIQuery() sq.SelectBuilder {
	return psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status IN ('new', 'in_progress'))",
		"COUNT(*) FILTER (WHERE status = 'resolved')",
		"COUNT(*) FILTER (WHERE priority = 'critical')",
	).From("tickets")
}

func topReportersQuery(limit int) sq.SelectBuilder {
	return psql.Select("t.created_by", "u.name", "u.email", "COUNT(*) AS n").
		From("tickets t").
		LeftJoin("users u ON u.id = t.created_by").
		GroupBy("t.created_by", "u.name", "u.email").
		OrderBy("n DESC", "t.created_by").
		Limit(uint64(limit))
}
