package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/vidfeed/internal/lock"
)

func newTestUserService(t *testing.T) (*UserService, *MockUserRepository) {
	t.Helper()
	repo := NewMockUserRepository()
	svc := NewUserService(repo, lock.NewMemoryLocker(), stubTokens{}, nil, zerolog.Nop())
	svc.bcryptCost = bcrypt.MinCost
	return svc, repo
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{name: "valid", input: RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}},
		{name: "trimmed", input: RegisterInput{Username: "  bob ", Email: " bob@example.com ", Password: "password123"}},
		{name: "short username", input: RegisterInput{Username: "al", Email: "al@example.com", Password: "password123"}, wantErr: ErrInvalidUsername},
		{name: "bad email", input: RegisterInput{Username: "carol", Email: "not-an-email", Password: "password123"}, wantErr: ErrInvalidEmail},
		{name: "display name email", input: RegisterInput{Username: "carol", Email: "Carol <carol@example.com>", Password: "password123"}, wantErr: ErrInvalidEmail},
		{name: "short password", input: RegisterInput{Username: "dave", Email: "dave@example.com", Password: "short"}, wantErr: ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestUserService(t)

			user, err := svc.Register(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidationError(err))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.True(t, user.IsActive)
			assert.False(t, user.AcceptedTermsAt.IsZero())
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
		})
	}
}

func TestUserService_Register_Duplicates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserService_Register_Busy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	locker := lock.NewMemoryLocker()
	svc.locker = locker
	_, err := locker.Acquire(ctx, lock.Keys.Registration("ALICE"), registrationLockTTL)
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrRegistrationBusy)
}

func TestUserService_Register_RepositoryFailure(t *testing.T) {
	svc, repo := newTestUserService(t)
	repo.existsErr = errors.New("connection refused")

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInternalError)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		out, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, out.User.ID)
		assert.Equal(t, "token-"+user.ID.String(), out.Token)
		assert.False(t, out.ExpiresAt.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		require.NoError(t, svc.SetActive(ctx, "alice", false))
		defer func() { require.NoError(t, svc.SetActive(ctx, "alice", true)) }()

		_, err := svc.Login(ctx, "alice", "password123")
		assert.ErrorIs(t, err, ErrUserInactive)
	})

	t.Run("token failure", func(t *testing.T) {
		svc.tokens = stubTokens{err: errors.New("signing failed")}
		defer func() { svc.tokens = stubTokens{} }()

		_, err := svc.Login(ctx, "alice", "password123")
		assert.ErrorIs(t, err, ErrInternalError)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	assert.ErrorIs(t, svc.SetActive(ctx, "nobody", false), ErrUserNotFound)
}
