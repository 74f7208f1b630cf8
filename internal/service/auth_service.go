package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"secureview/internal/cache"
	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/repository"
)

// MaxLoginAttempts is the number of failed logins tolerated per lockout window.
const MaxLoginAttempts = 5

// compared against when the email is unknown so both paths cost one bcrypt check
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("secureview-dummy-password"), bcrypt.DefaultCost)

// AuthService handles employee and manager authentication
type AuthService struct {
	users     repository.UserRepo
	revoked   cache.TokenDenylist
	attempts  cache.LoginAttempts
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// NewAuthService creates a new auth service. attempts may be nil to disable lockout.
func NewAuthService(
	users repository.UserRepo,
	revoked cache.TokenDenylist,
	attempts cache.LoginAttempts,
	jwtSecret string,
	tokenTTL time.Duration,
	log *logger.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 60 * time.Minute
	}
	return &AuthService{
		users:     users,
		revoked:   revoked,
		attempts:  attempts,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		log:       log.With("component", "auth"),
	}
}

// HashPassword returns the bcrypt hash stored for a user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login validates credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if s.attempts != nil {
		n, err := s.attempts.Count(ctx, email)
		if err != nil {
			s.log.Warn("login attempt lookup failed", "error", err)
		} else if n >= MaxLoginAttempts {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil || !user.Role.Valid() {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, email); err != nil {
			s.log.Warn("failed to reset login attempts", "error", err)
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", "user_id", user.ID, "role", user.Role)

	return &model.LoginResponse{
		AccessToken: token,
		Role:        user.Role,
		Department:  user.Department,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.attempts == nil {
		return
	}
	if _, err := s.attempts.Failed(ctx, email); err != nil {
		s.log.Warn("failed to record login attempt", "error", err)
	}
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := s.now()
	claims := &model.Claims{
		Role:       user.Role,
		Department: user.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parse(tokenString string) (*model.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.Claims)
	if !ok || !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate validates an access token and returns its principal
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.Principal, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return &model.Principal{
		UserID:     claims.Subject,
		Role:       claims.Role,
		Department: claims.Department,
		TokenID:    claims.ID,
	}, nil
}

// Logout revokes the token until it would have expired
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	if s.revoked == nil || claims.ID == "" {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.log.Info("user logged out", "user_id", claims.Subject)
	return nil
}

// Me returns the account behind a principal
func (s *AuthService) Me(ctx context.Context, p *model.Principal) (*model.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// IsAuthError reports whether err should be answered with 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidCredentials)
}
