package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

// cacheTTL bounds how long an eligible resolution may be served from
// cache; links with a nearer expiry get a shorter TTL.
const cacheTTL = time.Hour

type LinkService struct {
	links  ports.LinkRepository
	clicks ports.ClickRepository
	keygen *KeyGenerator
	cache  ports.LinkCache

	now func() time.Time
}

func NewLinkService(links ports.LinkRepository, clicks ports.ClickRepository, cache ports.LinkCache) *LinkService {
	return &LinkService{
		links:  links,
		clicks: clicks,
		keygen: NewKeyGenerator(links),
		cache:  cache,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeKey trims whitespace and uppercases, so that keys are
// addressed case-insensitively everywhere.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// Create persists a new link owned by caller. A positive expireDays
// sets the expiry that many days out; zero or negative means the link
// never expires. The generator pre-checks candidates, but the store's
// unique index is what actually closes the race between concurrent
// creations, so a conflicting insert counts as a collision like a
// pre-check hit does: both consume one attempt from the same budget
// before the loop draws a fresh key.
func (s *LinkService) Create(ctx context.Context, caller *domain.User, originalURL string, expireDays int) (*domain.Link, error) {
	if err := validateTargetURL(originalURL); err != nil {
		return nil, err
	}

	now := s.now()
	var expiresAt *time.Time
	if expireDays > 0 {
		t := now.Add(time.Duration(expireDays) * 24 * time.Hour)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, taken, err := s.keygen.candidate(ctx)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		link := &domain.Link{
			Key:         key,
			OriginalURL: originalURL,
			OwnerID:     caller.ID,
			Activated:   true,
			CreatedAt:   now,
			ExpiresAt:   expiresAt,
		}

		err = s.links.CreateLink(ctx, link)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		return nil, fmt.Errorf("persisting link: %w", err)
	}
	return nil, domain.ErrKeyspaceExhausted
}

// Resolve decides the redirect outcome for a short key. Outcomes are
// evaluated in order: absent, deactivated, expired, redirect. Repeated
// calls without intervening mutation yield the same outcome; click
// recording is the caller's concern and never mutates the link.
func (s *LinkService) Resolve(ctx context.Context, key string) (*domain.Resolution, error) {
	key = NormalizeKey(key)

	if res, ok := s.cacheGet(ctx, key); ok {
		return res, nil
	}

	link, err := s.links.GetLinkByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	if !link.Activated {
		return nil, domain.ErrLinkDeactivated
	}
	if link.Expired(s.now()) {
		return nil, domain.ErrLinkExpired
	}

	res := &domain.Resolution{LinkID: link.ID, OriginalURL: link.OriginalURL}
	s.cacheSet(ctx, key, res, link.ExpiresAt)
	return res, nil
}

// RecordClick appends one click. It is called after the redirect
// response is already decided; failures here must be surfaced to the
// operator log by the caller, never to the visitor.
func (s *LinkService) RecordClick(ctx context.Context, linkID int64, sourceIP, userAgent string) error {
	click := &domain.Click{
		LinkID:     linkID,
		SourceIP:   sourceIP,
		UserAgent:  userAgent,
		OccurredAt: s.now(),
	}
	return s.clicks.RecordClick(ctx, click)
}

// GetByKey returns the link if the caller owns it or is an admin.
func (s *LinkService) GetByKey(ctx context.Context, key string, caller *domain.User) (*domain.Link, error) {
	return s.authorizedLink(ctx, key, caller)
}

// Status is the authenticated view: unlike the public redirect path it
// exposes activation and expiry separately.
func (s *LinkService) Status(ctx context.Context, key string, caller *domain.User) (*domain.LinkStatus, error) {
	link, err := s.authorizedLink(ctx, key, caller)
	if err != nil {
		return nil, err
	}
	return &domain.LinkStatus{
		Key:       link.Key,
		Activated: link.Activated,
		Expired:   link.Expired(s.now()),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// SetActivation flips the activation flag. Requesting the current state
// is a client error, not a silent no-op. Concurrent toggles on the same
// link race; the last write wins.
func (s *LinkService) SetActivation(ctx context.Context, key string, caller *domain.User, activated bool) (*domain.Link, error) {
	link, err := s.authorizedLink(ctx, key, caller)
	if err != nil {
		return nil, err
	}
	if link.Activated == activated {
		return nil, domain.ErrNoChange
	}

	if err := s.links.UpdateActivation(ctx, link.ID, activated); err != nil {
		return nil, err
	}
	link.Activated = activated
	s.cacheInvalidate(ctx, link.Key)
	return link, nil
}

// Delete removes the link and all of its clicks.
func (s *LinkService) Delete(ctx context.Context, key string, caller *domain.User) error {
	link, err := s.authorizedLink(ctx, key, caller)
	if err != nil {
		return err
	}
	if err := s.links.DeleteLink(ctx, link.ID); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, link.Key)
	return nil
}

// DeleteByOwner removes every link of the given owner. Only admins may
// call it; the per-link ownership rule does not apply to bulk
// operations. Cached resolutions are invalidated per key so deleted
// links stop redirecting immediately.
func (s *LinkService) DeleteByOwner(ctx context.Context, ownerID int64, caller *domain.User) error {
	if !caller.IsAdmin {
		return domain.ErrForbidden
	}

	links, err := s.links.ListLinksByOwner(ctx, ownerID, -1, 0)
	if err != nil {
		return err
	}
	if err := s.links.DeleteLinksByOwner(ctx, ownerID); err != nil {
		return err
	}
	for _, link := range links {
		s.cacheInvalidate(ctx, link.Key)
	}
	return nil
}

func (s *LinkService) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Link, error) {
	return s.links.ListLinksByOwner(ctx, ownerID, normalizeLimit(limit), offset)
}

func (s *LinkService) ListAll(ctx context.Context, limit, offset int) ([]domain.Link, error) {
	return s.links.ListLinks(ctx, normalizeLimit(limit), offset)
}

func (s *LinkService) authorizedLink(ctx context.Context, key string, caller *domain.User) (*domain.Link, error) {
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
	return link, nil
}

func (s *LinkService) cacheGet(ctx context.Context, key string) (*domain.Resolution, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetResolution(ctx, key)
}

func (s *LinkService) cacheSet(ctx context.Context, key string, res *domain.Resolution, expiresAt *time.Time) {
	if s.cache == nil {
		return
	}
	ttl := cacheTTL
	if expiresAt != nil {
		if until := expiresAt.Sub(s.now()); until < ttl {
			ttl = until
		}
	}
	s.cache.SetResolution(ctx, key, res, ttl)
}

func (s *LinkService) cacheInvalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, key)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 500
	}
	return limit
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.ErrInvalidURL
	}
	return nil
}

var _ ports.LinkService = (*LinkService)(nil)
