package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/martijn/evently/internal/core/domain"
	"github.com/martijn/evently/internal/core/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL   = 24 * time.Hour
	BcryptCost        = 10
	MinPasswordLength = 6
	TokenIssuer       = "evently"
)

type AuthService struct {
	userRepo     repository.UserRepository
	jwtSecret    string
	jwtAlgorithm string
	tokenTTL     time.Duration
	logger       *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	jwtAlgorithm string,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		jwtAlgorithm: jwtAlgorithm,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// TokenTTL returns the lifetime of issued tokens
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidateRegistration checks registration input and returns every violation
func ValidateRegistration(username, email, password string) []domain.FieldViolation {
	var violations []domain.FieldViolation

	if strings.TrimSpace(username) == "" {
		violations = append(violations, domain.FieldViolation{Field: "username", Message: "username is required"})
	}

	email = strings.TrimSpace(email)
	if email == "" {
		violations = append(violations, domain.FieldViolation{Field: "email", Message: "email is required"})
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		violations = append(violations, domain.FieldViolation{Field: "email", Message: "email must be a valid address"})
	}

	if len(password) < MinPasswordLength {
		violations = append(violations, domain.FieldViolation{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}

	return violations
}

// Register creates a user and returns it with a fresh token
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	if violations := ValidateRegistration(username, email, password); len(violations) > 0 {
		return nil, "", &domain.ValidationError{Violations: violations}
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	if _, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username)); err == nil {
		return nil, "", fmt.Errorf("username already taken: %w", domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := domain.NewUser(username, email, hash)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, token, nil
}

// Login verifies credentials. Unknown email and wrong password return the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !s.VerifyPassword(password, user.Password) {
		s.logger.Warn("login failed", slog.String("user_id", user.ID))
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	},
		jwt.WithValidMethods([]string{s.signingMethod().Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// IssueToken signs a token whose subject is the user id
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
		},
	}

	token := jwt.NewWithClaims(s.signingMethod(), claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *AuthService) signingMethod() jwt.SigningMethod {
	switch s.jwtAlgorithm {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// TokenClaims represents JWT claims. The registered subject is the user id.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the principal identifier carried by the token
func (c *TokenClaims) UserID() string {
	return c.Subject
}
