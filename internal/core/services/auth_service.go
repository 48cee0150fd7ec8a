package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

type AuthService struct {
	users    ports.UserRepository
	secret   []byte
	tokenTTL time.Duration

	now func() time.Time
}

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account. Username and email must both be free;
// the check is advisory and the store's unique constraints are the
// authority, so a concurrent duplicate still comes back as ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", domain.ErrInvalidInput)
	}

	existing, err := s.users.GetUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		CreatedAt: s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues a signed token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", domain.ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginWithEmail backs the OAuth callback: the provider already proved
// control of the email, so the account is created on first login with
// an unusable password.
func (s *AuthService) LoginWithEmail(ctx context.Context, email string) (*domain.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, "", domain.ErrUnauthorized
	}

	user, err := s.users.GetUserByUsernameOrEmail(ctx, email, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		user = &domain.User{
			Username:  email,
			Email:     email,
			Password:  "-", // no bcrypt hash, password login always fails
			CreatedAt: s.now(),
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, "", err
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a token to a fresh user row, so admin flag and
// account deletion take effect immediately rather than at token expiry.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	return s.users.DeleteUser(ctx, id)
}

// TokenTTL is exposed so the handler can align the cookie expiry with
// the token's.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

var _ ports.AuthService = (*AuthService)(nil)
