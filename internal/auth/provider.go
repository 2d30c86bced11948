// Package auth abstracts the identity service behind a small capability
// interface so the session coordinator and its tests never depend on a real
// network identity provider.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RamaShankarRay/XGpt/internal/domain"
)

// User is the authenticated identity owning chats and messages.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// Provider is the identity capability set.
type Provider interface {
	// CurrentUser returns the signed-in user, or nil.
	CurrentUser() *User

	// SignIn authenticates and makes the user current.
	SignIn(ctx context.Context, email, password string) (*User, error)

	// SignOut clears the current user.
	SignOut(ctx context.Context) error

	// OnChange registers a callback invoked with the new current user
	// (nil on sign-out). The returned function deregisters it.
	OnChange(fn func(*User)) func()
}

type account struct {
	user         *User
	passwordHash []byte
}

// DemoProvider is an in-memory identity provider. Unknown emails are
// registered on first sign-in; known emails must present the same password.
type DemoProvider struct {
	mu        sync.Mutex
	accounts  map[string]*account
	current   *User
	listeners map[int]func(*User)
	nextID    int
}

// NewDemoProvider creates an empty provider.
func NewDemoProvider() *DemoProvider {
	return &DemoProvider{
		accounts:  make(map[string]*account),
		listeners: make(map[int]func(*User)),
	}
}

// CurrentUser returns the signed-in user, or nil.
func (p *DemoProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneUser(p.current)
}

// SignIn validates credentials and makes the user current. The first
// sign-in with a new email registers the account.
func (p *DemoProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewInvalidInputError("a valid email address is required")
	}
	if len(password) < 6 {
		return nil, domain.NewInvalidInputError("password must be at least 6 characters")
	}

	p.mu.Lock()
	acc, ok := p.accounts[email]
	p.mu.Unlock()

	if ok {
		if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
			// One message for unknown email and wrong password alike.
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		p.setCurrent(acc.user)
		return cloneUser(acc.user), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		UID:         uuid.New().String(),
		Email:       email,
		DisplayName: displayNameFromEmail(email),
		CreatedAt:   time.Now().UnixMilli(),
	}

	p.mu.Lock()
	p.accounts[email] = &account{user: user, passwordHash: hash}
	p.mu.Unlock()

	p.setCurrent(user)
	return cloneUser(user), nil
}

// SignOut clears the current user.
func (p *DemoProvider) SignOut(ctx context.Context) error {
	p.setCurrent(nil)
	return nil
}

// OnChange registers a state-change callback.
func (p *DemoProvider) OnChange(fn func(*User)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *DemoProvider) setCurrent(user *User) {
	p.mu.Lock()
	p.current = user
	listeners := make([]func(*User), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(cloneUser(user))
	}
}

func displayNameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	if name == "" {
		return email
	}
	return name
}

func cloneUser(user *User) *User {
	if user == nil {
		return nil
	}
	copied := *user
	return &copied
}
