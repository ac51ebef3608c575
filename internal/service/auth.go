package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalcosmeticos/catalog/internal/auth"
	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

const minPasswordLength = 8

// Token is returned by register and login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AuthService handles accounts and access tokens.
type AuthService struct {
	users  repository.UserRepository
	jwt    *auth.JWTManager
	logger *slog.Logger
	cost   int
}

func NewAuthService(users repository.UserRepository, jwt *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger, cost: bcryptCost}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

// Register creates a client account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *Token, error) {
	user, err := s.createUser(ctx, input, domain.RoleClient)
	if err != nil {
		return nil, nil, err
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// Login checks the credentials and returns a fresh access token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *Token, error) {
	if input.Email == "" || input.Password == "" {
		return nil, nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.NotLoggedIn()
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is
// already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	user, err := s.createUser(ctx, RegisterInput{Email: email, Password: password, Name: name}, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	s.logger.InfoContext(ctx, "admin account created", slog.String("user_id", user.ID))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role string) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidInput("a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*Token, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Token{AccessToken: access, TokenType: "Bearer", ExpiresIn: s.jwt.ExpiresIn()}, nil
}
