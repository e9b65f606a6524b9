// Package auth handles accounts, passwords and bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/pkg/models"
)

// RegisterInput is the body of a registration request
type RegisterInput struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Role       string `json:"role" validate:"omitempty,oneof=user admin"`
	Phone      string `json:"phone" validate:"max=20"`
	Location   string `json:"location" validate:"max=100"`
	Experience string `json:"experience" validate:"max=50"`
	Skills     string `json:"skills" validate:"max=500"`
}

// LoginInput is the body of a login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is a partial profile update; nil fields are left unchanged
type ProfileInput struct {
	Name       *string `json:"name" validate:"omitnil,min=2,max=100"`
	Phone      *string `json:"phone" validate:"omitnil,max=20"`
	Location   *string `json:"location" validate:"omitnil,max=100"`
	Experience *string `json:"experience" validate:"omitnil,max=50"`
	Skills     *string `json:"skills" validate:"omitnil,max=500"`
}

// Session is returned by register and login
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service implements registration, login and profile management
type Service struct {
	users      database.UserRepository
	tokens     *TokenManager
	bcryptCost int
	logger     *logrus.Logger
}

// NewService creates an auth service
func NewService(users database.UserRepository, tokens *TokenManager, bcryptCost int, logger *logrus.Logger) *Service {
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

// NormalizeEmail is the canonical stored form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account and returns a signed-in session
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, app.Conflict("User already exists")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		Location:     strings.TrimSpace(in.Location),
		Experience:   strings.TrimSpace(in.Experience),
		Skills:       strings.TrimSpace(in.Skills),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, app.Conflict("User already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return s.session(user)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return nil, app.Unauthorized("Invalid credentials")
	}
	return s.session(user)
}

// Profile returns the caller's account
func (s *Service) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.NotFound("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.User, error) {
	trim(in.Name, in.Phone, in.Location, in.Experience, in.Skills)
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	assign(&user.Name, in.Name)
	assign(&user.Phone, in.Phone)
	assign(&user.Location, in.Location)
	assign(&user.Experience, in.Experience)
	assign(&user.Skills, in.Skills)

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Verify resolves a bearer token to the caller's identity
func (s *Service) Verify(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
