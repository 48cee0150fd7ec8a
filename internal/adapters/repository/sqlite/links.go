package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

func (r *SQLiteRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (key, original_url, owner_id, activated, created_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	var expiresAt any
	if link.ExpiresAt != nil {
		expiresAt = formatTime(*link.ExpiresAt)
	}

	res, err := r.db.ExecContext(ctx, query,
		link.Key, link.OriginalURL, link.OwnerID, link.Activated,
		formatTime(link.CreatedAt), expiresAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("insert link %q: %w", link.Key, domain.ErrConflict)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetLinkByKey(ctx context.Context, key string) (*domain.Link, error) {
	query := `SELECT id, key, original_url, owner_id, activated, created_at, expires_at
			  FROM links WHERE key = ?`
	return r.scanLink(r.db.QueryRowContext(ctx, query, key))
}

func (r *SQLiteRepository) ListLinks(ctx context.Context, limit, offset int) ([]domain.Link, error) {
	query := `SELECT id, key, original_url, owner_id, activated, created_at, expires_at
			  FROM links ORDER BY id LIMIT ? OFFSET ?`
	return r.queryLinks(ctx, query, limit, offset)
}

// ListLinksByOwner returns the owner's links in insertion order. A
// negative limit means no limit, per SQLite's LIMIT semantics.
func (r *SQLiteRepository) ListLinksByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Link, error) {
	query := `SELECT id, key, original_url, owner_id, activated, created_at, expires_at
			  FROM links WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?`
	return r.queryLinks(ctx, query, ownerID, limit, offset)
}

func (r *SQLiteRepository) UpdateActivation(ctx context.Context, id int64, activated bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE links SET activated = ? WHERE id = ?`, activated, id)
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
	return nil
}

// DeleteLink removes the link and its clicks in one transaction. The
// cascade is explicit rather than left to the foreign_keys pragma,
// which is per-connection and not guaranteed across pooled connections.
func (r *SQLiteRepository) DeleteLink(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE link_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
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

func (r *SQLiteRepository) DeleteLinksByOwner(ctx context.Context, ownerID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM clicks WHERE link_id IN (SELECT id FROM links WHERE owner_id = ?)`, ownerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE owner_id = ?`, ownerID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) scanLink(row *sql.Row) (*domain.Link, error) {
	var link domain.Link
	var createdAt string
	var expiresAt sql.NullString

	err := row.Scan(&link.ID, &link.Key, &link.OriginalURL, &link.OwnerID,
		&link.Activated, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if link.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if link.ExpiresAt, err = parseNullTime(expiresAt); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *SQLiteRepository) queryLinks(ctx context.Context, query string, args ...any) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		var createdAt string
		var expiresAt sql.NullString
		if err := rows.Scan(&l.ID, &l.Key, &l.OriginalURL, &l.OwnerID,
			&l.Activated, &createdAt, &expiresAt); err != nil {
			return nil, err
		}
		if l.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if l.ExpiresAt, err = parseNullTime(expiresAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
