package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (username, email, password, is_admin, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		user.Username, user.Email, user.Password, user.IsAdmin, formatTime(user.CreatedAt))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("insert user %q: %w", user.Username, domain.ErrConflict)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, is_admin, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, is_admin, created_at FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, is_admin, created_at
		 FROM users WHERE username = ? OR email = ? LIMIT 1`, username, email))
}

// DeleteUser removes the account, its links and their clicks in one
// transaction.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM clicks WHERE link_id IN (SELECT id FROM links WHERE owner_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE owner_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var createdAt string

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&user.IsAdmin, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ ports.UserRepository = (*SQLiteRepository)(nil)
