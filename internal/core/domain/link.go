package domain

import "time"

// Link maps a short key to a target URL.
type Link struct {
	ID          int64      `json:"id"`
	Key         string     `json:"link"`
	OriginalURL string     `json:"original_link"`
	OwnerID     int64      `json:"owner_id"`
	Activated   bool       `json:"activated"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expired_at"`
}

// Expired reports whether the link's expiry instant has passed.
// Links without an expiry never expire. Both sides compare in UTC;
// stored timestamps without zone information are treated as UTC.
func (l *Link) Expired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return !l.ExpiresAt.UTC().After(now.UTC())
}

// Resolution is the outcome of a successful redirect lookup.
type Resolution struct {
	LinkID      int64  `json:"link_id"`
	OriginalURL string `json:"original_link"`
}

// LinkStatus is the authenticated status view of a link. Unlike the
// public redirect path, it distinguishes deactivated from expired.
type LinkStatus struct {
	Key       string     `json:"link"`
	Activated bool       `json:"activated"`
	Expired   bool       `json:"expired"`
	ExpiresAt *time.Time `json:"expired_at"`
}

// LinkStats is a link together with its trailing click windows.
type LinkStats struct {
	Link
	LastHourClicks int64 `json:"last_hour_clicks"`
	LastDayClicks  int64 `json:"last_day_clicks"`
	LastWeekClicks int64 `json:"last_week_clicks"`
}

// WindowSum is the ranking key for the top-links listing.
func (s *LinkStats) WindowSum() int64 {
	return s.LastHourClicks + s.LastDayClicks + s.LastWeekClicks
}
