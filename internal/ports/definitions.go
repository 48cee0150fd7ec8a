package ports

import (
	"context"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
)

// LinkRepository defines storage operations for links. Lookups return
// (nil, nil) when the row is absent.
type LinkRepository interface {
	// CreateLink inserts the link and assigns its ID. A duplicate key
	// surfaces as domain.ErrConflict via the store's unique index; the
	// pre-check in the key generator alone cannot close the race
	// between check and insert.
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLinkByKey(ctx context.Context, key string) (*domain.Link, error)
	ListLinks(ctx context.Context, limit, offset int) ([]domain.Link, error)
	ListLinksByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Link, error)
	UpdateActivation(ctx context.Context, id int64, activated bool) error
	// DeleteLink removes the link and cascades to its clicks.
	DeleteLink(ctx context.Context, id int64) error
	DeleteLinksByOwner(ctx context.Context, ownerID int64) error
}

// ClickRepository defines the append-only click log.
type ClickRepository interface {
	RecordClick(ctx context.Context, click *domain.Click) error
	CountClicksSince(ctx context.Context, linkID int64, since time.Time) (int64, error)
}

// UserRepository defines storage operations for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUserByUsernameOrEmail backs the registration conflict check.
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// DeleteUser removes the account and cascades to its links and
	// their clicks.
	DeleteUser(ctx context.Context, id int64) error
}

// LinkCache fronts the redirect hot path. Implementations must be safe
// for concurrent use; a nil *cache.RedisLinkCache is a no-op.
type LinkCache interface {
	GetResolution(ctx context.Context, key string) (*domain.Resolution, bool)
	SetResolution(ctx context.Context, key string, res *domain.Resolution, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

// LinkService is the link lifecycle manager plus the redirect resolver.
type LinkService interface {
	Create(ctx context.Context, caller *domain.User, originalURL string, expireDays int) (*domain.Link, error)
	Resolve(ctx context.Context, key string) (*domain.Resolution, error)
	RecordClick(ctx context.Context, linkID int64, sourceIP, userAgent string) error
	GetByKey(ctx context.Context, key string, caller *domain.User) (*domain.Link, error)
	Status(ctx context.Context, key string, caller *domain.User) (*domain.LinkStatus, error)
	SetActivation(ctx context.Context, key string, caller *domain.User, activated bool) (*domain.Link, error)
	Delete(ctx context.Context, key string, caller *domain.User) error
	// DeleteByOwner is admin-only: it removes every link of the given
	// owner together with their clicks.
	DeleteByOwner(ctx context.Context, ownerID int64, caller *domain.User) error
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Link, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Link, error)
}

// StatsService is the click aggregator.
type StatsService interface {
	Aggregate(ctx context.Context, linkID int64, now time.Time) (*domain.ClickStats, error)
	StatsByKey(ctx context.Context, key string, caller *domain.User, now time.Time) (*domain.LinkStats, error)
	StatsForLinks(ctx context.Context, links []domain.Link, now time.Time) ([]domain.LinkStats, error)
	// TopLinks ranks by the sum of the three window counts, descending,
	// ties kept in listing order.
	TopLinks(ctx context.Context, links []domain.Link, now time.Time) ([]domain.LinkStats, error)
}

// AuthService resolves callers to identities and manages accounts.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	// LoginWithEmail authenticates OAuth callbacks: the user is created
	// on first login and identified by email afterwards.
	LoginWithEmail(ctx context.Context, email string) (*domain.User, string, error)
	// Authenticate resolves a signed token back to a fresh user row.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
