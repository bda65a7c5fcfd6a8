package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/repository"
)

// =============================================================================
// User Repository
// =============================================================================

// MockUserRepository is an in-memory repository.UserRepository.
type MockUserRepository struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	createErr error
	existsErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return repository.ErrAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// Post Repository
// =============================================================================

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.Post, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

// =============================================================================
// Upload Collaborators
// =============================================================================

type mockEligibility struct {
	mock.Mock
}

func (m *mockEligibility) CanUpload(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockPresigner struct {
	mock.Mock
}

func (m *mockPresigner) PresignPost(ctx context.Context, bucket, objectKey string) (*domain.PresignedUploadGrant, error) {
	args := m.Called(ctx, bucket, objectKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresignedUploadGrant), args.Error(1)
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type stubTokens struct {
	err error
}

func (s stubTokens) Issue(userID uuid.UUID) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-" + userID.String(), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}
