package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-valentine/internal/config"
)

// PasswordStore persists the bcrypt hash of the admin password.
type PasswordStore interface {
	// Hash returns "" when no password was set yet.
	Hash(ctx context.Context) (string, error)
	SetHash(ctx context.Context, hash string) error
}

// SettingsRepository is the slice of the content store the settings-backed
// password store needs.
type SettingsRepository interface {
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// SettingsPasswordStore keeps the hash in the site settings table.
type SettingsPasswordStore struct {
	repo SettingsRepository
}

func NewSettingsPasswordStore(repo SettingsRepository) *SettingsPasswordStore {
	return &SettingsPasswordStore{repo: repo}
}

func (s *SettingsPasswordStore) Hash(ctx context.Context) (string, error) {
	return s.repo.Setting(ctx, config.SettingAdminPassword)
}

func (s *SettingsPasswordStore) SetHash(ctx context.Context, hash string) error {
	return s.repo.SetSetting(ctx, config.SettingAdminPassword, hash)
}

// KeyringPasswordStore keeps the hash in the OS secret store.
type KeyringPasswordStore struct {
	service string
	user    string
}

func NewKeyringPasswordStore() *KeyringPasswordStore {
	return &KeyringPasswordStore{service: config.KeyringService, user: config.KeyringUser}
}

func (k *KeyringPasswordStore) Hash(_ context.Context) (string, error) {
	h, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return h, nil
}

func (k *KeyringPasswordStore) SetHash(_ context.Context, hash string) error {
	if err := keyring.Set(k.service, k.user, hash); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return nil
}

// NewPasswordStore picks the store named by admin.password_source.
func NewPasswordStore(source string, repo SettingsRepository) (PasswordStore, error) {
	switch source {
	case config.PasswordSourceStore:
		return NewSettingsPasswordStore(repo), nil
	case config.PasswordSourceKeyring:
		return NewKeyringPasswordStore(), nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrPasswordSource, source)
	}
}
