// Package preferences holds the user's persisted API credential and base
// currency. Preferences are loaded once at startup and written back
// explicitly whenever they change.
package preferences

import (
	"context"
	"fmt"
	"strings"

	"metalpriceservice/internal/rates"
)

// Storage keys.
const (
	KeyAPIKey       = "metals_api_key"
	KeyBaseCurrency = "base_currency"
)

// Store is a durable key-value store for preferences.
type Store interface {
	GetPreference(ctx context.Context, key string) (value string, found bool, err error)
	SetPreference(ctx context.Context, key, value string) error
}

// Preferences is the last-used credential and base currency.
type Preferences struct {
	APIKey       string
	BaseCurrency rates.Code
}

// HasAPIKey reports whether a credential is set.
func (p Preferences) HasAPIKey() bool {
	return p.APIKey != ""
}

// MaskedAPIKey returns the key with all but the last four characters hidden.
func (p Preferences) MaskedAPIKey() string {
	n := len(p.APIKey)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	return strings.Repeat("*", n-4) + p.APIKey[n-4:]
}

// Load reads preferences from store. A missing key falls back to defaults.
// A stored empty API key means the key was cleared and is kept; an empty
// stored base currency falls back to the default base.
func Load(ctx context.Context, store Store, defaults Preferences) (Preferences, error) {
	prefs := defaults

	key, found, err := store.GetPreference(ctx, KeyAPIKey)
	if err != nil {
		return Preferences{}, fmt.Errorf("load %s: %w", KeyAPIKey, err)
	}
	if found {
		prefs.APIKey = key
	}

	base, found, err := store.GetPreference(ctx, KeyBaseCurrency)
	if err != nil {
		return Preferences{}, fmt.Errorf("load %s: %w", KeyBaseCurrency, err)
	}
	if found && base != "" {
		prefs.BaseCurrency = rates.Code(base)
	}

	return prefs, nil
}

// Save writes both preference keys to store.
func Save(ctx context.Context, store Store, prefs Preferences) error {
	if err := store.SetPreference(ctx, KeyAPIKey, prefs.APIKey); err != nil {
		return fmt.Errorf("save %s: %w", KeyAPIKey, err)
	}
	if err := store.SetPreference(ctx, KeyBaseCurrency, string(prefs.BaseCurrency)); err != nil {
		return fmt.Errorf("save %s: %w", KeyBaseCurrency, err)
	}
	return nil
}
