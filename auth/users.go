package auth

import (
	"context"
	"errors"
	"sync"

	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/models"
	"gorm.io/gorm"
)

// UserStore looks up principals by username. FindByUsername returns an
// ErrNotFound-marked error for unknown users.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type DBUserStore struct {
	db *gorm.DB
}

func NewDBUserStore(db *gorm.DB) *DBUserStore {
	return &DBUserStore{db: db}
}

func (s *DBUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHint("User not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load user").
			Mark(ierr.ErrDatabase)
	}
	return &user, nil
}

// EnsureUser creates the user with the given password unless the username
// already exists. Existing users are left untouched.
func (s *DBUserStore) EnsureUser(ctx context.Context, username, password, role string) (*models.User, error) {
	existing, err := s.FindByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create user").
			Mark(ierr.ErrDatabase)
	}
	return &user, nil
}

// StaticUserStore is an in-memory UserStore.
type StaticUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewStaticUserStore(users ...models.User) *StaticUserStore {
	s := &StaticUserStore{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s
}

func (s *StaticUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ierr.NewError("unknown user").
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	return &user, nil
}

// Put adds or replaces a user.
func (s *StaticUserStore) Put(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}
