package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/trainlog/trainlog/internal/db"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
)

type AuthService struct {
	userRepository repository.UserRepository
	normalizer     *normalize.Normalizer
	emailService   *EmailService
	// dummyHash is compared against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(
	userRepository repository.UserRepository,
	hasher normalize.Hasher,
	emailService *EmailService,
) (*AuthService, error) {
	dummyHash, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &AuthService{
		userRepository: userRepository,
		normalizer:     normalize.New(hasher),
		emailService:   emailService,
		dummyHash:      dummyHash,
	}, nil
}

// cleanIdentity trims and NFC-normalizes an email or username so visually
// identical input maps to one account.
func cleanIdentity(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.PublicUser, error) {
	email = cleanIdentity(email)

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(s.dummyHash), []byte(password))
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user.Public(), nil
}

// Register validates the body, creates the user and returns its public
// projection. The first registered user becomes admin; a client-supplied role
// is never stored.
func (s *AuthService) Register(ctx context.Context, body []byte) (*model.PublicUser, error) {
	parsed, err := parseObject(body)
	if err != nil {
		return nil, err
	}

	email := cleanIdentity(parsed.Get("email").String())
	username := cleanIdentity(parsed.Get("username").String())
	password := parsed.Get("password").String()

	if err := validation.First(
		validation.ValidateEmail(email),
		validation.ValidateName("username", username),
		validation.ValidatePassword(password),
	); err != nil {
		return nil, err
	}

	exists, err := s.userRepository.Exists(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	res, err := s.normalizer.Normalize(normalize.UsersTable, body)
	if err != nil {
		return nil, err
	}
	res = res.With("Email", email).With("Username", username)

	id, err := s.userRepository.Create(ctx, res)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load new user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role)

	if err := s.emailService.SendWelcomeEmail(ctx, user.Email, user.Username); err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	return user.Public(), nil
}
