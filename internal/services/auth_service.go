package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stockman/internal/apperror"
	"stockman/internal/models"
	"stockman/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued login token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

const invalidCredentials = "invalid username or password"

// AuthService handles business logic for authentication.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	dummyHash  []byte        // compared against when the username is unknown
	log        *slog.Logger
}

// NewAuthService creates a new AuthService. A non-positive tokenTTL falls back
// to DefaultTokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("stockman-dummy-password"), bcrypt.DefaultCost)
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		dummyHash:  dummy,
		log:        log,
	}
}

// LoginUser checks the password against the hash stored on the user found by
// username and returns a signed token with the redacted user.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, *models.UserView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Keep the timing close to the wrong-password path.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", nil, apperror.New(apperror.Auth, invalidCredentials)
		}
		return "", nil, apperror.Wrap(apperror.StoreUnavailable, "Could not verify credentials", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperror.New(apperror.Auth, invalidCredentials)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("user logged in", "userID", user.UserID)
	view := user.View()
	return token, &view, nil
}

// GenerateToken signs an HS256 token carrying the user's identity and role.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       user.ID,
		"userID":   user.UserID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
