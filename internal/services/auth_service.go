package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
	"github.com/taskr/taskr-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUsernameRequired     = errors.New("username is required")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles users, passwords and API tokens.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	taskRepo  repository.TaskRepository
	tokenTTL  time.Duration
	staff     []string
	now       func() time.Time
	log       *slog.Logger
}

// AuthOptions configures token lifetime and staff accounts.
type AuthOptions struct {
	TokenTTL       time.Duration
	StaffUsernames []string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, taskRepo repository.TaskRepository, opts AuthOptions, log *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		taskRepo:  taskRepo,
		tokenTTL:  opts.TokenTTL,
		staff:     opts.StaffUsernames,
		now:       time.Now,
		log:       log,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates a new user. Usernames listed as staff get staff rights.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		IsStaff:      slices.Contains(s.staff, username),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.log.ErrorContext(ctx, "create user", "username", username, "error", err)
		return nil, ErrFailedToCreateUser
	}

	s.log.InfoContext(ctx, "user signed up", "user_id", user.ID, "staff", user.IsStaff)

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// IssueToken creates an API token for a user.
func (s *AuthService) IssueToken(ctx context.Context, userID uint64) (*models.AuthToken, error) {
	key, err := utils.GenerateTokenKey()
	if err != nil {
		return nil, err
	}

	now := s.now()
	token := &models.AuthToken{
		Key:       key,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Authenticate resolves an API token key to its user.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}

	token, err := s.tokenRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if token.Expired(s.now()) {
		return nil, ErrInvalidToken
	}

	return &token.User, nil
}

// PurgeExpiredTokens deletes every token past its expiry.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	return n, nil
}

// DeleteUser removes a user that no task reports, is assigned to or has
// logged an event on.
func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	count, err := s.taskRepo.CountReferencingUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 {
		return ErrUserInUse
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrReferenced):
			return ErrUserInUse
		default:
			return fmt.Errorf("failed to delete user: %w", err)
		}
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", user.ID)

	return nil
}
