// Package auth holds the credential-checking collaborator. Credential
// security itself is out of scope, the engine only consumes the opaque
// identity an Authenticator returns.
package auth

import (
	stderrors "errors"

	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/types"
)

// ErrInvalidCredentials is returned when no identity matches the given
// credentials. Mapped to 401 by the API layer.
var ErrInvalidCredentials = stderrors.New("Invalid credentials")

type Authenticator interface {
	Authenticate(username, password string) (*types.User, error)
}

// StoreAuthenticator is the reference implementation checking against the
// identity store.
type StoreAuthenticator struct {
	users *persistence.Users
}

func NewStoreAuthenticator(users *persistence.Users) *StoreAuthenticator {
	return &StoreAuthenticator{users: users}
}

func (a *StoreAuthenticator) Authenticate(username, password string) (*types.User, error) {
	if username == "" || password == "" {
		return nil, errors.Validation("Missing username or password")
	}
	for _, u := range a.users.List() {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}
