package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt. The cost is a
// field so tests can use bcrypt.MinCost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost, or
// bcrypt.DefaultCost when cost is zero.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify returns ErrWrongPassword if password does not match hash.
func (h *PasswordHasher) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongPassword
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

// Auth handles registration and login. Establishing the session for the
// returned user is left to the HTTP layer.
type Auth struct {
	store  *Store
	hasher *PasswordHasher
	log    zerolog.Logger
}

// NewAuth creates an Auth backed by store.
func NewAuth(store *Store, hasher *PasswordHasher, log zerolog.Logger) *Auth {
	return &Auth{store: store, hasher: hasher, log: log}
}

// Register creates a user. It returns ErrDuplicateEmail if the email is
// already taken and a *ValidationError for missing or malformed fields.
func (a *Auth) Register(ctx context.Context, email, password, name string) (User, error) {
	form := SignupForm{Email: email, Password: password, Name: name}
	if err := form.Validate(); err != nil {
		return User{}, err
	}
	if _, err := a.store.UserByEmail(ctx, form.Email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	hash, err := a.hasher.Hash(form.Password)
	if err != nil {
		return User{}, err
	}
	u, err := a.store.CreateUser(ctx, form.Email, form.Name, hash)
	if err != nil {
		return User{}, err
	}
	a.log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// Login checks credentials. It returns ErrUnknownEmail when no user has the
// email and ErrWrongPassword when the password does not match.
func (a *Auth) Login(ctx context.Context, email, password string) (User, error) {
	form := LoginForm{Email: email, Password: password}
	if err := form.Validate(); err != nil {
		return User{}, err
	}
	u, err := a.store.UserByEmail(ctx, form.Email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrUnknownEmail
	}
	if err != nil {
		return User{}, err
	}
	if err := a.hasher.Verify(u.PasswordHash, form.Password); err != nil {
		return User{}, err
	}
	return u, nil
}

// Identity resolves a session user id to a User. A missing user yields
// nil, which callers treat as anonymous.
func (a *Auth) Identity(ctx context.Context, id int64) (*User, error) {
	u, err := a.store.UserByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsAdmin reports whether identity may create, edit and delete posts.
func IsAdmin(identity *User) bool {
	return identity != nil && identity.Role == RoleAdmin
}
