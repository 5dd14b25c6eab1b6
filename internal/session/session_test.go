package session

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

var epoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestProvider(t *testing.T, mode string) (*Provider, store.Backend) {
	t.Helper()
	b := store.NewMemoryStore()
	p, err := New(b, mode,
		WithClock(func() time.Time { return epoch }),
		WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return p, b
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New(store.NewMemoryStore(), "oauth")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestMockLogin(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t, ModeMock)

	u, err := p.Login(ctx, "Jane.Doe@Example.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", u.Email)
	assert.Equal(t, "Jane Doe", u.Name)
	assert.NotEmpty(t, u.ID)

	again, err := p.Login(ctx, "jane.doe@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID, "same email yields the same id")

	other, err := p.Login(ctx, "john@example.com", "x")
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, other.ID)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, other.ID, cur.ID)
}

func TestMockLogin_AnyIdentifier(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t, ModeMock)

	u, err := p.Login(ctx, " Alice ", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Email)
	assert.Equal(t, "Alice", u.Name)

	again, err := p.Login(ctx, "alice", "x")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	wrapped, err := p.Login(ctx, "Jane Doe <Jane@X.io>", "")
	require.NoError(t, err)
	assert.Equal(t, "jane@x.io", wrapped.Email)
	assert.Equal(t, "Jane", wrapped.Name)

	reg, err := p.Register(ctx, RegisterInput{Name: "Bob", Email: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", reg.Email)
	assert.Equal(t, "Bob", reg.Name)
}

func TestLogin_InvalidEmail(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []string{ModeMock, ModePassword} {
		t.Run(mode, func(t *testing.T) {
			p, _ := newTestProvider(t, mode)
			_, err := p.Login(ctx, "  ", "password1")
			require.ErrorIs(t, err, ErrInvalid)
			_, ok := p.Current()
			assert.False(t, ok)
		})
	}

	t.Run("password mode needs an address", func(t *testing.T) {
		p, _ := newTestProvider(t, ModePassword)
		_, err := p.Register(ctx, RegisterInput{Email: "not an email", Password: "password1"})
		require.ErrorIs(t, err, ErrInvalid)
		_, err = p.Login(ctx, "Jane <jane@x.io>", "password1")
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestPasswordMode(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t, ModePassword)

	_, err := p.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.io", Password: "short"})
	require.ErrorIs(t, err, ErrInvalid)

	u, err := p.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.io", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, epoch, u.CreatedAt)

	_, err = p.Register(ctx, RegisterInput{Name: "Imposter", Email: "ANA@x.io", Password: "another one"})
	require.ErrorIs(t, err, ErrEmailTaken)

	require.NoError(t, p.Logout(ctx))

	_, err = p.Login(ctx, "ana@x.io", "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.Login(ctx, "nobody@x.io", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := p.Login(ctx, "ana@x.io", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRestoreAndLogout(t *testing.T) {
	ctx := context.Background()
	p, b := newTestProvider(t, ModeMock)

	u, err := p.Login(ctx, "sam@x.io", "")
	require.NoError(t, err)

	restored, err := New(b, ModeMock)
	require.NoError(t, err)
	got, ok, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u, got)

	require.NoError(t, restored.Logout(ctx))
	_, ok = restored.Current()
	assert.False(t, ok)

	again, err := New(b, ModeMock)
	require.NoError(t, err)
	_, ok, err = again.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	title := "Engineer"

	t.Run("requires a session", func(t *testing.T) {
		p, _ := newTestProvider(t, ModeMock)
		_, err := p.UpdateProfile(ctx, model.UserPatch{Title: &title})
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("password mode updates the account", func(t *testing.T) {
		p, _ := newTestProvider(t, ModePassword)
		_, err := p.Register(ctx, RegisterInput{Email: "lee@x.io", Password: "password123"})
		require.NoError(t, err)
		_, err = p.Register(ctx, RegisterInput{Email: "kim@x.io", Password: "password123"})
		require.NoError(t, err)

		_, err = p.UpdateProfile(ctx, model.UserPatch{Email: ptr("lee@x.io")})
		require.ErrorIs(t, err, ErrEmailTaken)

		name := "Kim Park"
		u, err := p.UpdateProfile(ctx, model.UserPatch{Name: &name, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Kim Park", u.Name)
		assert.Equal(t, "Engineer", u.Title)

		require.NoError(t, p.Logout(ctx))
		again, err := p.Login(ctx, "kim@x.io", "password123")
		require.NoError(t, err)
		assert.Equal(t, "Kim Park", again.Name)
	})

	t.Run("empty name", func(t *testing.T) {
		p, _ := newTestProvider(t, ModeMock)
		_, err := p.Login(ctx, "a@x.io", "")
		require.NoError(t, err)
		_, err = p.UpdateProfile(ctx, model.UserPatch{Name: ptr(" ")})
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestKeyringBackedSession(t *testing.T) {
	ctx := context.Background()
	ring := keyring.NewArrayKeyring(nil)
	b := store.NewKeyringStore(ring)

	p, err := New(b, ModeMock)
	require.NoError(t, err)
	u, err := p.Login(ctx, "crew@x.io", "")
	require.NoError(t, err)

	item, err := ring.Get(store.KeySessionCurrent)
	require.NoError(t, err)
	assert.Contains(t, string(item.Data), u.ID)
}

func TestNameFromEmail(t *testing.T) {
	tests := map[string]string{
		"jane.doe@x.io":  "Jane Doe",
		"bob@x.io":       "Bob",
		"a_b-c+tag@x.io": "A B C Tag",
	}
	for email, want := range tests {
		assert.Equal(t, want, nameFromEmail(email), email)
	}
}

func ptr[T any](v T) *T { return &v }
