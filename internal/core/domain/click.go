package domain

import "time"

// Click records one visit through a short key that resulted in a
// redirect. Clicks are append-only and deleted only when their link is.
type Click struct {
	ID         int64     `json:"id"`
	LinkID     int64     `json:"link_id"`
	SourceIP   string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	OccurredAt time.Time `json:"created_at"`
}

// ClickStats holds click counts over the three trailing windows ending
// at a fixed "now". The windows nest: a click inside the last hour also
// counts toward the last day and last week.
type ClickStats struct {
	LastHour int64 `json:"last_hour_clicks"`
	LastDay  int64 `json:"last_day_clicks"`
	LastWeek int64 `json:"last_week_clicks"`
}
