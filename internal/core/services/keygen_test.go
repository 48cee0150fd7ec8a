package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiroon/shortlink/internal/core/domain"
)

func TestGenerateKeyShape(t *testing.T) {
	gen := NewKeyGenerator(newMemStore())

	for i := 0; i < 100; i++ {
		key, err := gen.GenerateKey(context.Background())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(key), keyMinLength)
		assert.LessOrEqual(t, len(key), keyMaxLength)
		for _, r := range key {
			assert.Contains(t, keyCharset, string(r), "key %q contains %q", key, r)
		}
	}
}

func TestGenerateKeySkipsTakenKeys(t *testing.T) {
	repo := &collidingRepo{collisions: 3}
	gen := NewKeyGenerator(repo)

	key, err := gen.GenerateKey(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, 4, repo.lookups, "expected 3 collisions before a free key")
}

func TestGenerateKeyExhaustion(t *testing.T) {
	repo := &collidingRepo{collisions: -1}
	gen := NewKeyGenerator(repo)

	_, err := gen.GenerateKey(context.Background())
	require.ErrorIs(t, err, domain.ErrKeyspaceExhausted)
	assert.Equal(t, maxKeyAttempts, repo.lookups)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "ABC12", NormalizeKey("  abc12 "))
	assert.Equal(t, strings.ToUpper("xyz99"), NormalizeKey("xyz99"))
}

// collidingRepo reports every key as taken for the first `collisions`
// lookups; collisions < 0 means every key is taken.
type collidingRepo struct {
	memStore
	collisions int
	lookups    int
}

func (r *collidingRepo) GetLinkByKey(_ context.Context, key string) (*domain.Link, error) {
	r.lookups++
	if r.collisions < 0 || r.lookups <= r.collisions {
		return &domain.Link{ID: 1, Key: key}, nil
	}
	return nil, nil
}
