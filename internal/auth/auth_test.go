package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// memSettings is an in-memory SettingsRepository.
type memSettings struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func (m *memSettings) Setting(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], m.err
}

func (m *memSettings) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

var loginTime = time.Date(2025, time.February, 14, 9, 0, 0, 0, time.UTC)

func newAuth(t *testing.T, clock engine.Clock) (*Authenticator, *memSettings) {
	t.Helper()
	repo := &memSettings{}
	a, err := New(NewSettingsPasswordStore(repo), config.JWTSettings{
		Secret: "test-secret",
		Issuer: config.DefaultJWTIssuer,
		TTL:    time.Hour,
	}, clock)
	require.NoError(t, err)
	return a, repo
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(NewSettingsPasswordStore(&memSettings{}), config.JWTSettings{}, nil)
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	a, repo := newAuth(t, engine.FixedClock{At: loginTime})

	_, err := a.Login(ctx, "anything")
	assert.ErrorIs(t, err, ErrPasswordUnset)

	require.NoError(t, a.SetPassword(ctx, "forever"))
	assert.NotEqual(t, "forever", repo.data[config.SettingAdminPassword], "only the hash is stored")

	_, err = a.Login(ctx, "never")
	assert.ErrorIs(t, err, ErrUnauthorized)

	tok, err := a.Login(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, loginTime.Add(time.Hour), tok.ExpiresAt)

	claims, err := a.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, config.KeyringUser, claims.Subject)
	assert.Equal(t, config.DefaultJWTIssuer, claims.Issuer)
}

func TestSetPassword_Empty(t *testing.T) {
	a, _ := newAuth(t, nil)
	assert.ErrorIs(t, a.SetPassword(context.Background(), "  "), ErrPasswordEmpty)
}

func TestLogin_StoreError(t *testing.T) {
	boom := errors.New("db down")
	a, repo := newAuth(t, nil)
	repo.err = boom

	_, err := a.Login(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	clock := &engine.FixedClock{At: loginTime}
	a, _ := newAuth(t, clock)
	require.NoError(t, a.SetPassword(ctx, "forever"))

	tok, err := a.Login(ctx, "forever")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later, _ := newAuth(t, engine.FixedClock{At: loginTime.Add(2 * time.Hour)})
		_, err := later.Verify(tok.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := New(NewSettingsPasswordStore(&memSettings{}), config.JWTSettings{
			Secret: "another", Issuer: config.DefaultJWTIssuer, TTL: time.Hour,
		}, engine.FixedClock{At: loginTime})
		require.NoError(t, err)
		_, err = other.Verify(tok.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(loginTime.Add(time.Hour)),
			Issuer:    config.DefaultJWTIssuer,
		}})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = a.Verify(s)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}

func TestKeyringPasswordStore(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	store := NewKeyringPasswordStore()

	h, err := store.Hash(ctx)
	require.NoError(t, err)
	assert.Empty(t, h, "missing secret reads as unset")

	require.NoError(t, SetPassword(ctx, store, "forever"))

	a, err := New(store, config.JWTSettings{Secret: "s"}, nil)
	require.NoError(t, err)
	_, err = a.Login(ctx, "forever")
	assert.NoError(t, err)
}

func TestKeyringPasswordStore_Error(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	_, err := NewKeyringPasswordStore().Hash(context.Background())
	assert.ErrorContains(t, err, config.ErrKeyring)
	keyring.MockInit()
}

func TestNewPasswordStore(t *testing.T) {
	s, err := NewPasswordStore(config.PasswordSourceStore, &memSettings{})
	require.NoError(t, err)
	assert.IsType(t, &SettingsPasswordStore{}, s)

	s, err = NewPasswordStore(config.PasswordSourceKeyring, nil)
	require.NoError(t, err)
	assert.IsType(t, &KeyringPasswordStore{}, s)

	_, err = NewPasswordStore("vault", nil)
	assert.ErrorContains(t, err, config.ErrPasswordSource)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
