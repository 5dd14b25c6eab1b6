// Package session tracks the signed-in user. In mock mode any password is
// accepted and the user is derived from the email address; in password
// mode credentials are bcrypt-hashed and checked.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

// Modes.
const (
	ModeMock     = "mock"
	ModePassword = "password"
)

// MinPasswordLen is the shortest password accepted in password mode.
const MinPasswordLen = 8

var (
	ErrInvalid            = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoSession          = errors.New("not signed in")
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// account is a stored credential.
type account struct {
	User         model.User `json:"user"`
	PasswordHash string     `json:"passwordHash"`
}

// Provider is the identity provider. It is safe for concurrent use.
type Provider struct {
	backend store.Backend
	mode    string
	logger  *slog.Logger
	now     func() time.Time
	cost    int

	mu      sync.RWMutex
	current *model.User
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithBcryptCost overrides bcrypt.DefaultCost, mainly to keep tests fast.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// New creates a provider persisting to backend in the given mode.
func New(backend store.Backend, mode string, opts ...Option) (*Provider, error) {
	if mode != ModeMock && mode != ModePassword {
		return nil, fmt.Errorf("session mode %q: %w", mode, ErrInvalid)
	}
	p := &Provider{
		backend: backend,
		mode:    mode,
		logger:  slog.Default(),
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Mode returns the provider mode.
func (p *Provider) Mode() string { return p.mode }

// Restore loads the persisted current user, if any.
func (p *Provider) Restore(ctx context.Context) (model.User, bool, error) {
	u, ok, err := store.LoadJSON[model.User](ctx, p.backend, store.KeySessionCurrent)
	if err != nil {
		return model.User{}, false, fmt.Errorf("restoring session: %w", err)
	}
	if !ok || u.ID == "" {
		return model.User{}, false, nil
	}

	p.mu.Lock()
	p.current = &u
	p.mu.Unlock()
	return u, true, nil
}

// Current returns the signed-in user.
func (p *Provider) Current() (model.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return model.User{}, false
	}
	return *p.current, true
}

// Login signs a user in. In mock mode any password succeeds.
func (p *Provider) Login(ctx context.Context, email, password string) (model.User, error) {
	email, err := p.normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}

	var u model.User
	switch p.mode {
	case ModeMock:
		u = p.mockUser(email)
	case ModePassword:
		accounts, err := p.accounts(ctx)
		if err != nil {
			return model.User{}, err
		}
		acct, ok := findAccount(accounts, email)
		if !ok {
			return model.User{}, ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
			return model.User{}, ErrInvalidCredentials
		}
		u = acct.User
	}

	if err := p.setCurrent(ctx, &u); err != nil {
		return u, err
	}
	p.logger.Info("signed in", slog.String("user", u.ID), slog.String("mode", p.mode))
	return u, nil
}

// Register creates an account and signs it in. In mock mode it behaves like
// Login with the given display name.
func (p *Provider) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email, err := p.normalizeEmail(in.Email)
	if err != nil {
		return model.User{}, err
	}
	name := strings.TrimSpace(in.Name)

	if p.mode == ModeMock {
		u := p.mockUser(email)
		if name != "" {
			u.Name = name
		}
		if err := p.setCurrent(ctx, &u); err != nil {
			return u, err
		}
		return u, nil
	}

	if len(in.Password) < MinPasswordLen {
		return model.User{}, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, ErrInvalid)
	}
	accounts, err := p.accounts(ctx)
	if err != nil {
		return model.User{}, err
	}
	if _, ok := findAccount(accounts, email); ok {
		return model.User{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	u := model.User{
		ID:        ident.New(),
		Name:      name,
		Email:     email,
		Role:      model.RoleMember,
		CreatedAt: p.now(),
	}
	if u.Name == "" {
		u.Name = nameFromEmail(email)
	}
	accounts = append(accounts, account{User: u, PasswordHash: string(hash)})
	if err := store.SaveJSON(ctx, p.backend, store.KeySessionUsers, accounts); err != nil {
		return model.User{}, err
	}
	if err := p.setCurrent(ctx, &u); err != nil {
		return u, err
	}
	p.logger.Info("registered", slog.String("user", u.ID))
	return u, nil
}

// Logout clears the session.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	if err := p.backend.Delete(ctx, store.KeySessionCurrent); err != nil {
		return &store.SaveError{Key: store.KeySessionCurrent, Err: err}
	}
	return nil
}

// UpdateProfile edits the signed-in user. In password mode the stored
// account is updated too.
func (p *Provider) UpdateProfile(ctx context.Context, patch model.UserPatch) (model.User, error) {
	cur, ok := p.Current()
	if !ok {
		return model.User{}, ErrNoSession
	}

	next := cur
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.User{}, fmt.Errorf("name must not be empty: %w", ErrInvalid)
		}
		next.Name = name
	}
	if patch.Email != nil {
		email, err := p.normalizeEmail(*patch.Email)
		if err != nil {
			return model.User{}, err
		}
		next.Email = email
	}
	if patch.Avatar != nil {
		next.Avatar = *patch.Avatar
	}
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Department != nil {
		next.Department = *patch.Department
	}
	if patch.Bio != nil {
		next.Bio = *patch.Bio
	}

	if p.mode == ModePassword {
		accounts, err := p.accounts(ctx)
		if err != nil {
			return model.User{}, err
		}
		idx := -1
		for i, a := range accounts {
			if a.User.ID == cur.ID {
				idx = i
			} else if a.User.Email == next.Email {
				return model.User{}, ErrEmailTaken
			}
		}
		if idx >= 0 {
			accounts[idx].User = next
			if err := store.SaveJSON(ctx, p.backend, store.KeySessionUsers, accounts); err != nil {
				return model.User{}, err
			}
		}
	}

	if err := p.setCurrent(ctx, &next); err != nil {
		return next, err
	}
	return next, nil
}

// setCurrent swaps the current user and persists it. On a write failure the
// user stays signed in for this process.
func (p *Provider) setCurrent(ctx context.Context, u *model.User) error {
	cp := *u
	p.mu.Lock()
	p.current = &cp
	p.mu.Unlock()

	if err := store.SaveJSON(ctx, p.backend, store.KeySessionCurrent, cp); err != nil {
		p.logger.Warn("persisting session failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (p *Provider) accounts(ctx context.Context) ([]account, error) {
	accounts, _, err := store.LoadJSON[[]account](ctx, p.backend, store.KeySessionUsers)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return accounts, nil
}

// mockUser synthesizes a stable user for email.
func (p *Provider) mockUser(email string) model.User {
	return model.User{
		ID:        ident.FromName("user/" + email),
		Name:      nameFromEmail(email),
		Email:     email,
		Role:      model.RoleMember,
		CreatedAt: p.now(),
	}
}

func findAccount(accounts []account, email string) (account, bool) {
	for _, a := range accounts {
		if a.User.Email == email {
			return a, true
		}
	}
	return account{}, false
}

// normalizeEmail lowercases and trims raw. Mock mode takes any non-empty
// identifier, unwrapping "Name <addr>" forms; password mode requires a bare
// address.
func (p *Provider) normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("email must not be empty: %w", ErrInvalid)
	}
	if p.mode == ModeMock {
		if addr, err := mail.ParseAddress(email); err == nil {
			return addr.Address, nil
		}
		return email, nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("email %q: %w", raw, ErrInvalid)
	}
	return email, nil
}

// nameFromEmail turns "jane.doe@x.io" into "Jane Doe".
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	for i, part := range parts {
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	if len(parts) == 0 {
		return local
	}
	return strings.Join(parts, " ")
}
