package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wiroon/shortlink/internal/adapters/handler"
	"github.com/wiroon/shortlink/internal/adapters/repository/sqlite"
	"github.com/wiroon/shortlink/internal/config"
	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/core/services"
)

type testClient struct {
	t      *testing.T
	http   *http.Client
	base   string
	bearer string
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServerEndToEnd(t *testing.T) {
	repo, err := sqlite.NewSQLiteRepository("file:e2edb?mode=memory&cache=shared")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:     "e2e-secret",
		TokenTTLHours: 1,
	}
	linkService := services.NewLinkService(repo, repo, nil)
	statsService := services.NewStatsService(repo, repo)
	authService := services.NewAuthService(repo, cfg.JWTSecret, time.Hour)

	server := httptest.NewServer(handler.NewRouter(cfg, linkService, statsService, authService))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &testClient{
		t: t,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base: server.URL,
	}

	// Unauthenticated requests to the private surface are rejected.
	resp := client.do("POST", "/urls", map[string]any{"original_link": "https://example.com"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Register and log in; the auth cookie lands in the jar.
	resp = client.do("POST", "/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	alice := decode[domain.User](t, resp)

	resp = client.do("POST", "/auth/register", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = client.do("POST", "/auth/register", map[string]string{
		"username": "carol", "email": "carol@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing password is a validation error")
	resp.Body.Close()

	resp = client.do("POST", "/auth/login", map[string]string{
		"username": "alice", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = client.do("GET", "/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[domain.User](t, resp)
	assert.Equal(t, "alice", me.Username)

	// Create a link and follow its redirect.
	resp = client.do("POST", "/urls", map[string]any{"original_link": "https://example.com/target"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Link](t, resp)
	require.NotEmpty(t, created.Key)

	// The bare /urls listing and the single-segment redirect catch-all
	// must coexist on the same mux.
	resp = client.do("GET", "/urls", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decode[[]domain.Link](t, resp)
	require.Len(t, mine, 1)
	assert.Equal(t, created.Key, mine[0].Key)

	resp = client.do("GET", "/"+created.Key, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/target", resp.Header.Get("Location"))
	resp.Body.Close()

	// Keys resolve case-insensitively.
	resp = client.do("GET", "/"+strings.ToLower(created.Key), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()

	resp = client.do("GET", "/NOSUCHKEY1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Click recording runs after the redirect; poll until it lands.
	require.Eventually(t, func() bool {
		resp := client.do("GET", "/urls/"+created.Key+"/stats", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var stats domain.LinkStats
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return false
		}
		return stats.LastHourClicks >= 2
	}, 3*time.Second, 50*time.Millisecond)

	// Deactivation makes the public path indistinguishable from an
	// unknown key.
	resp = client.do("PUT", "/urls/"+created.Key+"/status?activated=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = client.do("PUT", "/urls/"+created.Key+"/status?activated=false", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "repeating the toggle is a no-op error")
	resp.Body.Close()

	resp = client.do("GET", "/"+created.Key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = client.do("GET", "/urls/"+created.Key+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[domain.LinkStatus](t, resp)
	assert.False(t, status.Activated)
	assert.False(t, status.Expired)

	// Regular users cannot reach the admin surface.
	resp = client.do("GET", "/admin/urls", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Seed an admin account and switch to it via bearer auth.
	hash, err := bcrypt.GenerateFromPassword([]byte("adminpw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.Background(), &domain.User{
		Username:  "root",
		Email:     "root@example.com",
		Password:  string(hash),
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}))

	// Log in through a cookie-less client so alice's session in the jar
	// stays untouched; the admin authenticates with a bearer token.
	admin := &testClient{t: t, http: &http.Client{}, base: server.URL}
	resp = admin.do("POST", "/auth/login", map[string]string{
		"username": "root", "password": "adminpw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[struct {
		Token string `json:"token"`
	}](t, resp)
	admin.bearer = login.Token

	resp = admin.do("GET", "/admin/urls", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	links := decode[[]domain.Link](t, resp)
	assert.Len(t, links, 1)

	resp = admin.do("GET", "/admin/urls/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ranked := decode[[]domain.LinkStats](t, resp)
	require.Len(t, ranked, 1)
	assert.GreaterOrEqual(t, ranked[0].LastWeekClicks, int64(2))

	// Deleting the account removes links, clicks and access.
	resp = admin.do("DELETE", "/admin/users/"+strconv.FormatInt(alice.ID, 10), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = client.do("GET", "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = admin.do("GET", "/"+created.Key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

