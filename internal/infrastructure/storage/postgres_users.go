package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

var userColumns = []string{"id", "created_at", "name", "email", "password_hash", "role", "COALESCE(avatar_url, '')"}

// PostgresUsers persists accounts.
type PostgresUsers struct {
	db *sql.DB
}

var _ ports.UserRepository = (*PostgresUsers)(nil)

// NewPostgresUsers wires a sql.DB implementation.
func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (r *PostgresUsers) Create(ctx context.Context, user domain.User) (domain.User, error) {
	query, args, err := psql.Insert("users").
		Columns("name", "email", "password_hash", "role", "avatar_url").
		Values(user.Name, user.Email, user.PasswordHash, user.Role, user.AvatarURL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build insert: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		return domain.User{}, translateError(err, "insert user "+user.Email)
	}
	return user, nil
}

func (r *PostgresUsers) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.one(ctx, sq.Eq{"email": email}, "user "+email)
}

func (r *PostgresUsers) ByID(ctx context.Context, id int64) (domain.User, error) {
	return r.one(ctx, sq.Eq{"id": id}, fmt.Sprintf("user %d", id))
}

func (r *PostgresUsers) List(ctx context.Context) ([]domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func (r *PostgresUsers) Update(ctx context.Context, id int64, patch domain.UserPatch) (domain.User, error) {
	query, args, err := updateUserQuery(id, patch).ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build update: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.User{}, translateError(err, fmt.Sprintf("update user %d", id))
	}
	return u, nil
}

func (r *PostgresUsers) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("user %d", id))
}

func (r *PostgresUsers) one(ctx context.Context, where sq.Eq, what string) (domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build select: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.User{}, translateError(err, what)
	}
	return u, nil
}

func updateUserQuery(id int64, patch domain.UserPatch) sq.UpdateBuilder {
	b := psql.Update("users").Where(sq.Eq{"id": id})
	if patch.Name != nil {
		b = b.Set("name", *patch.Name)
	}
	if patch.Email != nil {
		b = b.Set("email", *patch.Email)
	}
	if patch.Role != nil {
		b = b.Set("role", *patch.Role)
	}
	return b.Suffix("RETURNING id, created_at, name, email, password_hash, role, COALESCE(avatar_url, '')")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.AvatarURL); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
