package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/lock"
	"github.com/prn-tf/vidfeed/internal/metrics"
	"github.com/prn-tf/vidfeed/internal/repository"
)

// registrationLockTTL bounds how long one sign-up may hold its username.
const registrationLockTTL = 10 * time.Second

// TokenIssuer creates session tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
}

// UserService handles registration and login.
type UserService struct {
	userRepo   repository.UserRepository
	locker     lock.Locker
	tokens     TokenIssuer
	bcryptCost int
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, locker lock.Locker, tokens TokenIssuer, m *metrics.Metrics, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		locker:     locker,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		metrics:    m,
		logger:     logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user account. Concurrent sign-ups for the same
// username are serialized through the locker.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	var user *domain.User
	err := lock.WithLock(ctx, s.locker, lock.Keys.Registration(input.Username), registrationLockTTL, func(ctx context.Context) error {
		var err error
		user, err = s.register(ctx, input)
		return err
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, ErrRegistrationBusy
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Registration()
	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Str("email", domain.RedactEmail(user.Email)).
		Msg("user registered")

	return user, nil
}

func (s *UserService) register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", domain.RedactEmail(input.Email)).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email", ErrUserAlreadyExists)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, input.Email, string(passwordHash))
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}

// Authenticate verifies user credentials and returns the user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().Err(err).Msg("failed to load user during authentication")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		// Don't expose whether the username exists.
		s.logger.Debug().Str("username", username).Msg("user not found during authentication")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return nil, ErrInvalidCredentials
	}

	if !user.CanAuthenticate() {
		s.logger.Debug().Str("username", username).Msg("inactive user attempted authentication")
		return nil, ErrUserInactive
	}

	return user, nil
}

// LoginOutput contains a new session.
type LoginOutput struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates the user and issues a session token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginOutput, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("user logged in")

	return &LoginOutput{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// SetActive enables or disables an account.
func (s *UserService) SetActive(ctx context.Context, username string, isActive bool) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.IsActive = isActive
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Bool("is_active", isActive).
		Msg("user active status updated")

	return nil
}

// validateRegisterInput validates the input for registering a user.
func validateRegisterInput(input RegisterInput) error {
	if len(input.Username) < 3 || len(input.Username) > 255 {
		return ErrInvalidUsername
	}

	addr, err := mail.ParseAddress(input.Email)
	if err != nil || addr.Address != input.Email {
		return ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return ErrInvalidPassword
	}

	return nil
}
