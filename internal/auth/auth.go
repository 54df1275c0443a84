package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/engine"
)

var (
	ErrUnauthorized  = errors.New(config.ErrUnauthorized)
	ErrTokenInvalid  = errors.New(config.ErrTokenInvalid)
	ErrPasswordUnset = errors.New(config.ErrPasswordUnset)
	ErrPasswordEmpty = errors.New(config.ErrPasswordEmpty)
	ErrSecretMissing = errors.New(config.ErrJWTSecret)
)

// Claims represents the JWT claims of an admin session.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is returned by a successful login.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Authenticator guards the admin panel with a single shared password.
type Authenticator struct {
	store  PasswordStore
	secret []byte
	issuer string
	ttl    time.Duration
	clock  engine.Clock
	log    *slog.Logger
}

// New validates the JWT settings and builds an Authenticator.
func New(store PasswordStore, cfg config.JWTSettings, clock engine.Clock) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretMissing
	}
	if clock == nil {
		clock = engine.RealClock{}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = config.DefaultJWTTTL
	}
	return &Authenticator{
		store:  store,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		clock:  clock,
		log:    slog.With(config.LogKeyComponent, config.CompAuth),
	}, nil
}

// RandomSecret returns a hex encoded 256-bit key. Tokens signed with it do not
// survive a restart.
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashPassword bcrypt-hashes a new admin password.
func HashPassword(plain string) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", ErrPasswordEmpty
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// SetPassword replaces the admin password.
func (a *Authenticator) SetPassword(ctx context.Context, plain string) error {
	return SetPassword(ctx, a.store, plain)
}

// SetPassword hashes plain into store. Used by the CLI, which has no JWT secret.
func SetPassword(ctx context.Context, store PasswordStore, plain string) error {
	h, err := HashPassword(plain)
	if err != nil {
		return err
	}
	return store.SetHash(ctx, h)
}

// Login checks the password and issues a session token.
func (a *Authenticator) Login(ctx context.Context, password string) (Token, error) {
	hash, err := a.store.Hash(ctx)
	if err != nil {
		return Token{}, err
	}
	if hash == "" {
		return Token{}, ErrPasswordUnset
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		a.log.Warn(config.MsgLoginFailed)
		return Token{}, ErrUnauthorized
	}

	tok, exp, err := a.issue()
	if err != nil {
		return Token{}, err
	}
	a.log.Info(config.MsgLoginOK)
	return Token{AccessToken: tok, TokenType: strings.TrimSpace(config.BearerPrefix), ExpiresAt: exp}, nil
}

func (a *Authenticator) issue() (string, time.Time, error) {
	now := a.clock.Now()
	exp := now.Add(a.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   config.KeyringUser,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Verify parses and validates a session token.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// BearerToken extracts the token of an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, config.BearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, config.BearerPrefix))
	return tok, tok != ""
}
