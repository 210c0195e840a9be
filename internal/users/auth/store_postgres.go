// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] on the users.account table.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL-backed [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// accountTable is the fully qualified identity table.
const accountTable = constants.SchemaUsers + ".account"

const userColumns = `id, username, email, firstname, lastname, bio, role, issuperuser, isactive, createdat, updatedat`

// scanUser hydrates a [User] from a row selected with userColumns.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.Role,
		&user.IsSuperuser,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// findOne runs a single-row lookup and maps a missing row to [ErrUserNotFound].
func (repository *PostgresUserRepository) findOne(ctx context.Context, action, where string, arg any) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM ` + accountTable + ` WHERE ` + where

	user, err := scanUser(repository.pool.QueryRow(ctx, query, arg))
	if err = dberr.Wrap(err, "postgres_user_repo_"+action+"_failed"); err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindByID looks up an account by primary key. A malformed ID is reported as not found.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if !uuid.Valid(id) {
		return nil, ErrUserNotFound
	}
	return repository.findOne(ctx, "find_by_id", "id = $1", id)
}

// FindByUsername looks up an account by its unique username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findOne(ctx, "find_by_username", "username = $1", username)
}

// FindByEmail looks up an account by its unique email.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, "find_by_email", "email = $1", email)
}

/*
Create inserts a new account row.

Timestamps are initialized here when the caller left them zero. A unique
violation on username or email surfaces as dberr.ErrDuplicate.
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO ` + accountTable + ` (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.IsSuperuser,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return dberr.Wrap(err, "postgres_user_repo_create_failed")
}

/*
Update rewrites the profile and role columns of one account in a single statement.

The activation flag is deliberately excluded; it only changes through [SetActive].
*/
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE ` + accountTable + `
		SET username = $2, email = $3, firstname = $4, lastname = $5, bio = $6, role = $7, updatedat = NOW()
		WHERE id = $1
		RETURNING updatedat`

	err := repository.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
	).Scan(&user.UpdatedAt)

	err = dberr.Wrap(err, "postgres_user_repo_update_failed")
	if dberr.IsNotFound(err) {
		return ErrUserNotFound
	}
	return err
}

// SetActive is a compare-and-set on the activation flag.
func (repository *PostgresUserRepository) SetActive(ctx context.Context, id string, expected, next bool) (bool, error) {
	const query = `
		UPDATE ` + accountTable + `
		SET isactive = $3, updatedat = NOW()
		WHERE id = $1 AND isactive = $2`

	tag, err := repository.pool.Exec(ctx, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("postgres_user_repo_set_active_failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the account row, freeing its username and email.
func (repository *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM ` + accountTable + ` WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

/*
List returns one page of accounts and the total number of matches.

Search is a case-insensitive substring match over username, first name and last name.
*/
func (repository *PostgresUserRepository) List(ctx context.Context, filter ListFilter) ([]*User, int, error) {
	where, args := listConditions(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM ` + accountTable + where
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	pageQuery := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY username LIMIT $%d OFFSET $%d`,
		userColumns, accountTable, where, len(args)-1, len(args))

	rows, err := repository.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, filter.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}

	return users, total, nil
}

// listConditions builds the WHERE clause and positional args for a [ListFilter].
func listConditions(filter ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		position := len(args)
		clauses = append(clauses, fmt.Sprintf("(username ILIKE $%[1]d OR firstname ILIKE $%[1]d OR lastname ILIKE $%[1]d)", position))
	}

	if filter.Role != "" {
		args = append(args, filter.Role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
