package sqlite

import (
	"context"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

func (r *SQLiteRepository) RecordClick(ctx context.Context, click *domain.Click) error {
	query := `INSERT INTO clicks (link_id, source_ip, user_agent, occurred_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		click.LinkID, click.SourceIP, click.UserAgent, formatTime(click.OccurredAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	click.ID = id
	return nil
}

func (r *SQLiteRepository) CountClicksSince(ctx context.Context, linkID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE link_id = ? AND occurred_at >= ?`,
		linkID, formatTime(since)).Scan(&count)
	return count, err
}

var _ ports.ClickRepository = (*SQLiteRepository)(nil)
