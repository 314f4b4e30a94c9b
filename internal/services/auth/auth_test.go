package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/logger"
	"watchlist/proj/internal/lib/validator"
	"watchlist/proj/internal/storage/sqlite"
)

type syncExecutor struct{}

func (syncExecutor) Add(task func()) { task() }

type mailerMock struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mailerMock) Send(recipient string, tmplName string, tmplData any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recipient+":"+tmplName)
	return m.err
}

const (
	testTTL       = 7 * 24 * time.Hour
	testUpdateAge = 24 * time.Hour
)

func newTestService(t *testing.T) (*AuthService, *LocalProvider, *mailerMock) {
	t.Helper()
	store, err := sqlite.New(context.Background(), logger.Discard(), filepath.Join(t.TempDir(), "auth.db"), 4)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	provider := NewLocalProvider(logger.Discard(), store, store, syncExecutor{}, LocalProviderConfig{
		SessionTTL:       testTTL,
		SessionUpdateAge: testUpdateAge,
		BcryptCost:       bcrypt.MinCost,
	})
	mailer := &mailerMock{}
	return New(logger.Discard(), provider, mailer, syncExecutor{}), provider, mailer
}

var alice = SignupInput{Name: "Alice", Email: "alice@example.com", Password: "correct horse"}

func TestSignup(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Name: " Alice ", Email: "Alice@Example.com ", Password: alice.Password})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, []byte(alice.Password), user.PasswordHash)
	assert.Equal(t, []string{"alice@example.com:user_welcome.html"}, mailer.sent)

	_, err = svc.Signup(ctx, alice)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"short password", SignupInput{Name: "Bob", Email: "bob@example.com", Password: "short"}, "password"},
		{"invalid email", SignupInput{Name: "Bob", Email: "bob", Password: "long enough"}, "email"},
		{"short name", SignupInput{Name: "B", Email: "bob@example.com", Password: "long enough"}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			vErr, ok := validator.IsValidationError(err)
			require.True(t, ok)
			assert.Contains(t, vErr.Errors, tt.field)
		})
	}
}

func TestSignup_MailFailureDoesNotFailSignup(t *testing.T) {
	svc, _, mailer := newTestService(t)
	mailer.err = errors.New("smtp down")
	_, err := svc.Signup(context.Background(), alice)
	assert.NoError(t, err)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user, err := svc.Signup(ctx, alice)
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: alice.Email, Password: "wrong password"}, models.ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: alice.Password}, models.ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: alice.Password}, models.ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, res.Token, res.Session.TokenHash)
	assert.Equal(t, user.ID, res.Session.UserID)
	assert.Equal(t, "10.0.0.1", res.Session.IPAddress)

	principal, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, models.Identity{UserID: user.ID, SessionID: res.Session.ID}, principal.Identity())

	t.Run("unknown and empty tokens are anonymous", func(t *testing.T) {
		for _, token := range []string{"", "not-a-token"} {
			p, err := svc.Authenticate(ctx, token)
			assert.NoError(t, err)
			assert.Nil(t, p)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, res.Token))
		p, err := svc.Authenticate(ctx, res.Token)
		assert.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, svc.Logout(ctx, res.Token))
	})
}

func TestResolve_Expiry(t *testing.T) {
	svc, provider, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, alice)
	require.NoError(t, err)
	res, err := svc.Login(ctx, LoginInput{Email: alice.Email, Password: alice.Password}, models.ClientInfo{})
	require.NoError(t, err)
	issuedExpiry := res.Session.ExpiresAt

	t.Run("fresh session is not refreshed", func(t *testing.T) {
		p, err := provider.Resolve(ctx, res.Token)
		require.NoError(t, err)
		assert.True(t, issuedExpiry.Equal(p.Session.ExpiresAt))
	})

	t.Run("session older than update age slides", func(t *testing.T) {
		later := time.Now().Add(2 * testUpdateAge)
		provider.now = func() time.Time { return later }
		p, err := provider.Resolve(ctx, res.Token)
		require.NoError(t, err)
		assert.True(t, p.Session.ExpiresAt.After(issuedExpiry))

		provider.now = time.Now
		stored, err := provider.Resolve(ctx, res.Token)
		require.NoError(t, err)
		assert.True(t, stored.Session.ExpiresAt.After(issuedExpiry))
	})

	t.Run("expired session is rejected and removed", func(t *testing.T) {
		provider.now = func() time.Time { return time.Now().Add(30 * testTTL) }
		defer func() { provider.now = time.Now }()
		_, err := provider.Resolve(ctx, res.Token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		provider.now = time.Now
		_, err = provider.Resolve(ctx, res.Token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestCurrentIdentity(t *testing.T) {
	ctx := context.Background()
	_, err := CurrentIdentity(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = CurrentIdentity(WithPrincipal(ctx, nil))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	p := &Principal{User: &models.User{ID: "u1"}, Session: &models.Session{ID: "s1"}}
	identity, err := CurrentIdentity(WithPrincipal(ctx, p))
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: "u1", SessionID: "s1"}, identity)
	assert.Same(t, p, PrincipalFrom(WithPrincipal(ctx, p)))
}
