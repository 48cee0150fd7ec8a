package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

// Short keys are uppercase alphanumerics of random length in [5,10].
// crypto/rand keeps keys unguessable; a predictable source would let an
// attacker enumerate the keyspace.
const (
	keyCharset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyMinLength = 5
	keyMaxLength = 10

	// maxKeyAttempts bounds the collision-retry loop. The generated
	// keyspace is far larger than any realistic link count, so hitting
	// the cap means something is wrong, not that the caller should
	// keep retrying.
	maxKeyAttempts = 10
)

// KeyGenerator produces short keys that are unique against the link
// store at generation time. The store's unique index remains the
// authority: two concurrent generations can still pick the same key
// between check and insert, so the insert path must treat a unique
// violation as one more collision.
type KeyGenerator struct {
	repo ports.LinkRepository
}

func NewKeyGenerator(repo ports.LinkRepository) *KeyGenerator {
	return &KeyGenerator{repo: repo}
}

func (g *KeyGenerator) GenerateKey(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, taken, err := g.candidate(ctx)
		if err != nil {
			return "", err
		}
		if !taken {
			return key, nil
		}
	}
	return "", domain.ErrKeyspaceExhausted
}

// candidate draws one random key and reports whether it is already
// taken. The retry policy belongs to the caller, so a pre-check
// collision and an insert conflict can consume the same attempt budget.
func (g *KeyGenerator) candidate(ctx context.Context) (string, bool, error) {
	key, err := randomKey()
	if err != nil {
		return "", false, err
	}
	existing, err := g.repo.GetLinkByKey(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("checking key uniqueness: %w", err)
	}
	return key, existing != nil, nil
}

func randomKey() (string, error) {
	span := int64(keyMaxLength - keyMinLength + 1)
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	length := keyMinLength + int(n.Int64())

	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyCharset))))
		if err != nil {
			return "", err
		}
		b[i] = keyCharset[num.Int64()]
	}
	return string(b), nil
}
