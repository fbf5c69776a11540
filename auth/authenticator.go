package auth

import (
	"context"

	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/models"
	"golang.org/x/crypto/bcrypt"
)

type Authenticator struct {
	users UserStore
}

func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate checks a username and password. Unknown users, wrong
// passwords and inactive users all fail the same way.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) || !user.IsActive {
		return nil, invalidCredentials()
	}
	return user, nil
}

func invalidCredentials() error {
	return ierr.NewError("invalid credentials").
		WithHint("Incorrect username or password").
		Mark(ierr.ErrUnauthorized)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to hash password").
			Mark(ierr.ErrSystem)
	}
	return string(hash), nil
}

func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
