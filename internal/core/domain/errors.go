package domain

import "errors"

// Sentinel errors shared across services and handlers. Handlers map
// them to HTTP statuses with errors.Is; everything else is a 500.
var (
	// ErrNotFound covers absent entities of any kind.
	ErrNotFound = errors.New("not found")

	// ErrLinkDeactivated and ErrLinkExpired are distinct outcomes for
	// the authenticated status view, but the public redirect path
	// reports both as a plain not-found so that deactivated or expired
	// keys are indistinguishable from keys that never existed.
	ErrLinkDeactivated = errors.New("link is deactivated")
	ErrLinkExpired     = errors.New("link is expired")

	// ErrUnauthorized means no identity could be established.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but is neither the
	// owner of the resource nor an admin.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("already taken")

	// ErrNoChange is returned when an activation toggle requests the
	// state the link is already in.
	ErrNoChange = errors.New("link already in requested state")

	// ErrKeyspaceExhausted is returned when key generation gives up
	// after repeated collisions.
	ErrKeyspaceExhausted = errors.New("unable to generate a unique key")

	// ErrInvalidURL is returned for target URLs that are not absolute
	// http or https URLs.
	ErrInvalidURL = errors.New("invalid target url")

	// ErrInvalidInput is returned for requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)
