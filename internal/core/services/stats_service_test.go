package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiroon/shortlink/internal/core/domain"
)

func seedClicks(t *testing.T, store *memStore, linkID int64, ages ...time.Duration) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, age := range ages {
		err := store.RecordClick(context.Background(), &domain.Click{
			LinkID:     linkID,
			SourceIP:   "203.0.113.9",
			OccurredAt: now.Add(-age),
		})
		require.NoError(t, err)
	}
}

func TestAggregateWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	link := &domain.Link{Key: "AAAAA", OriginalURL: "https://a.example", Activated: true}
	require.NoError(t, store.CreateLink(context.Background(), link))

	// One click inside the hour, one more inside the day, one outside
	// every window.
	seedClicks(t, store, link.ID, 30*time.Minute, 2*time.Hour, 10*24*time.Hour)

	svc := NewStatsService(store, store)
	stats, err := svc.Aggregate(context.Background(), link.ID, now)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.LastHour)
	assert.Equal(t, int64(2), stats.LastDay)
	assert.Equal(t, int64(2), stats.LastWeek)
}

func TestAggregateWindowsNest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	link := &domain.Link{Key: "AAAAA", OriginalURL: "https://a.example", Activated: true}
	require.NoError(t, store.CreateLink(context.Background(), link))

	seedClicks(t, store, link.ID,
		time.Minute, 59*time.Minute, 61*time.Minute,
		23*time.Hour, 25*time.Hour, 6*24*time.Hour, 8*24*time.Hour)

	svc := NewStatsService(store, store)
	stats, err := svc.Aggregate(context.Background(), link.ID, now)
	require.NoError(t, err)

	assert.LessOrEqual(t, stats.LastHour, stats.LastDay)
	assert.LessOrEqual(t, stats.LastDay, stats.LastWeek)
	assert.Equal(t, int64(2), stats.LastHour)
	assert.Equal(t, int64(4), stats.LastDay)
	assert.Equal(t, int64(6), stats.LastWeek)
}

func TestAggregateEmptyLink(t *testing.T) {
	store := newMemStore()
	svc := NewStatsService(store, store)

	stats, err := svc.Aggregate(context.Background(), 42, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, &domain.ClickStats{}, stats)
}

func TestStatsByKeyOwnership(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	link := &domain.Link{Key: "AAAAA", OriginalURL: "https://a.example", Activated: true, OwnerID: owner.ID}
	require.NoError(t, store.CreateLink(context.Background(), link))
	seedClicks(t, store, link.ID, 10*time.Minute)

	svc := NewStatsService(store, store)

	_, err := svc.StatsByKey(context.Background(), "AAAAA", other, now)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.StatsByKey(context.Background(), "MISSING", owner, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := svc.StatsByKey(context.Background(), "aaaaa", owner, now)
	require.NoError(t, err)
	assert.Equal(t, "AAAAA", stats.Key)
	assert.Equal(t, int64(1), stats.LastHourClicks)

	adminStats, err := svc.StatsByKey(context.Background(), "AAAAA", admin, now)
	require.NoError(t, err)
	assert.Equal(t, stats.LastWeekClicks, adminStats.LastWeekClicks)
}

func TestTopLinksRanking(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore()

	quiet := &domain.Link{Key: "QUIET", OriginalURL: "https://q.example", Activated: true}
	busy := &domain.Link{Key: "BUSYX", OriginalURL: "https://b.example", Activated: true}
	tied1 := &domain.Link{Key: "TIED1", OriginalURL: "https://t1.example", Activated: true}
	tied2 := &domain.Link{Key: "TIED2", OriginalURL: "https://t2.example", Activated: true}
	for _, l := range []*domain.Link{quiet, busy, tied1, tied2} {
		require.NoError(t, store.CreateLink(context.Background(), l))
	}

	seedClicks(t, store, busy.ID, time.Minute, 2*time.Minute, 3*time.Minute)
	seedClicks(t, store, tied1.ID, time.Minute)
	seedClicks(t, store, tied2.ID, 2*time.Minute)

	svc := NewStatsService(store, store)
	links, err := store.ListLinks(context.Background(), -1, 0)
	require.NoError(t, err)

	ranked, err := svc.TopLinks(context.Background(), links, now)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	assert.Equal(t, "BUSYX", ranked[0].Key)
	// Equal sums keep the listing order.
	assert.Equal(t, "TIED1", ranked[1].Key)
	assert.Equal(t, "TIED2", ranked[2].Key)
	assert.Equal(t, "QUIET", ranked[3].Key)
}
