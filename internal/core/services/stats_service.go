package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

// StatsService aggregates clicks over the three trailing windows. The
// counts are computed from the full click history against a caller-
// supplied "now", so a fixed now always yields the same answer. A click
// recorded concurrently with an aggregation read may or may not be
// counted; both outcomes are acceptable.
type StatsService struct {
	links  ports.LinkRepository
	clicks ports.ClickRepository
}

func NewStatsService(links ports.LinkRepository, clicks ports.ClickRepository) *StatsService {
	return &StatsService{links: links, clicks: clicks}
}

// Aggregate counts clicks with occurred_at inside each trailing window.
// The windows nest rather than partition, so LastHour <= LastDay <=
// LastWeek always holds for a fixed now.
func (s *StatsService) Aggregate(ctx context.Context, linkID int64, now time.Time) (*domain.ClickStats, error) {
	now = now.UTC()
	stats := &domain.ClickStats{}

	windows := []struct {
		span time.Duration
		dst  *int64
	}{
		{time.Hour, &stats.LastHour},
		{24 * time.Hour, &stats.LastDay},
		{7 * 24 * time.Hour, &stats.LastWeek},
	}

	for _, w := range windows {
		count, err := s.clicks.CountClicksSince(ctx, linkID, now.Add(-w.span))
		if err != nil {
			return nil, fmt.Errorf("counting clicks: %w", err)
		}
		*w.dst = count
	}
	return stats, nil
}

// StatsByKey returns the link's fields together with its windows; the
// caller must own the link or be an admin.
func (s *StatsService) StatsByKey(ctx context.Context, key string, caller *domain.User, now time.Time) (*domain.LinkStats, error) {
	link, err := s.links.GetLinkByKey(ctx, NormalizeKey(key))
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	if !caller.CanModify(link.OwnerID) {
		return nil, domain.ErrForbidden
	}

	stats, err := s.Aggregate(ctx, link.ID, now)
	if err != nil {
		return nil, err
	}
	return &domain.LinkStats{
		Link:           *link,
		LastHourClicks: stats.LastHour,
		LastDayClicks:  stats.LastDay,
		LastWeekClicks: stats.LastWeek,
	}, nil
}

// StatsForLinks aggregates each link in the given listing order.
func (s *StatsService) StatsForLinks(ctx context.Context, links []domain.Link, now time.Time) ([]domain.LinkStats, error) {
	out := make([]domain.LinkStats, 0, len(links))
	for _, link := range links {
		stats, err := s.Aggregate(ctx, link.ID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.LinkStats{
			Link:           link,
			LastHourClicks: stats.LastHour,
			LastDayClicks:  stats.LastDay,
			LastWeekClicks: stats.LastWeek,
		})
	}
	return out, nil
}

// TopLinks orders by the sum of the three windows, descending. The sort
// is stable: ties stay in the input's listing order.
func (s *StatsService) TopLinks(ctx context.Context, links []domain.Link, now time.Time) ([]domain.LinkStats, error) {
	stats, err := s.StatsForLinks(ctx, links, now)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].WindowSum() > stats[j].WindowSum()
	})
	return stats, nil
}

var _ ports.StatsService = (*StatsService)(nil)
