package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ambulance-tracker-backend/internal/models"
	"ambulance-tracker-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 10
	minPasswordLength = 4
	jwtExpDays        = 365
)

// Account errors surfaced to the HTTP layer.
var (
	ErrUsernameTaken       = errors.New("username already exists")
	ErrUsernameUnavailable = errors.New("username not available")
	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	ErrWrongPassword       = errors.New("incorrect password")
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	UpdatePassword(ctx context.Context, userID int, hash string) error
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Address  string
	Phone    string
}

// UserService handles registration, login and session tokens.
type UserService struct {
	store          UserStore
	jwtSecret      string
	adminUsernames []string
}

// NewUserService creates a new user service
func NewUserService(store UserStore, jwtSecret string, adminUsernames []string) *UserService {
	return &UserService{
		store:          store,
		jwtSecret:      jwtSecret,
		adminUsernames: adminUsernames,
	}
}

// Register creates a citizen account. Reserved admin usernames are
// rejected so they can only come from the database seed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	for _, reserved := range s.adminUsernames {
		if in.Username == reserved {
			return nil, ErrUsernameUnavailable
		}
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.store.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: in.Username,
		Password: string(hash),
		FullName: in.FullName,
		Address:  in.Address,
		Phone:    in.Phone,
	}
	id, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// Login verifies credentials and returns the user plus a session token.
// Legacy rows holding a plain-text password are upgraded to bcrypt on
// first successful login.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}

	stored := user.Password
	match := false
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") {
		match = bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	} else if password == stored {
		match = true
		if hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcryptCost); hashErr == nil {
			if upErr := s.store.UpdatePassword(ctx, user.ID, string(hash)); upErr != nil {
				log.Error().Err(upErr).Int("user_id", user.ID).Msg("Failed to upgrade legacy password hash")
			}
		}
	}

	if !match {
		return nil, "", ErrWrongPassword
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetByID returns a user profile
func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	return s.store.GetByID(ctx, id)
}

// Admins returns the seeded dispatcher accounts
func (s *UserService) Admins(ctx context.Context) ([]models.User, error) {
	return s.store.ListByUsernames(ctx, s.adminUsernames)
}

// generateJWT signs a session token for a user
func (s *UserService) generateJWT(userID int) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT validates a session token and returns the user id
func (s *UserService) ValidateJWT(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("user_id not found in token")
	}
	return int(userID), nil
}
