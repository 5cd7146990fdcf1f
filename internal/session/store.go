// Package session persists per-user client state in Redis: the cart and the
// UI preferences the storefront would otherwise keep in browser storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pharma-portal/internal/cart"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Supported UI languages
const (
	LanguageGerman  = "de"
	LanguageEnglish = "en"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Preferences are the per-user UI settings
type Preferences struct {
	Language              string `json:"language"`
	DocCheckAuthenticated bool   `json:"docCheckAuthenticated"`
}

// Store is the load/save boundary for client state
type Store interface {
	LoadCart(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	SaveCart(ctx context.Context, userID uuid.UUID, c *cart.Cart) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
	LoadPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	SavePreferences(ctx context.Context, userID uuid.UUID, p *Preferences) error
}

type redisStore struct {
	client          *redis.Client
	defaultLanguage string
}

// NewRedisStore creates a Store backed by Redis
func NewRedisStore(client *redis.Client, defaultLanguage string) Store {
	if defaultLanguage == "" {
		defaultLanguage = LanguageGerman
	}
	return &redisStore{client: client, defaultLanguage: defaultLanguage}
}

func cartKey(userID uuid.UUID) string  { return "cart:" + userID.String() }
func prefsKey(userID uuid.UUID) string { return "prefs:" + userID.String() }

// LoadCart returns the stored cart, or an empty cart when none was saved
func (s *redisStore) LoadCart(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []cart.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt entry is dropped rather than blocking the user
		return cart.New(nil), nil
	}
	return cart.New(items), nil
}

// SaveCart stores the cart lines as a JSON array
func (s *redisStore) SaveCart(ctx context.Context, userID uuid.UUID, c *cart.Cart) error {
	raw, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// ClearCart removes the stored cart
func (s *redisStore) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// LoadPreferences returns stored preferences or the defaults
func (s *redisStore) LoadPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	defaults := &Preferences{Language: s.defaultLanguage}

	raw, err := s.client.Get(ctx, prefsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var p Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return defaults, nil
	}
	if !IsSupportedLanguage(p.Language) {
		p.Language = s.defaultLanguage
	}
	return &p, nil
}

// SavePreferences stores the preferences after checking the language
func (s *redisStore) SavePreferences(ctx context.Context, userID uuid.UUID, p *Preferences) error {
	if !IsSupportedLanguage(p.Language) {
		return ErrUnsupportedLanguage
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, prefsKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// IsSupportedLanguage reports whether lang has a translation
func IsSupportedLanguage(lang string) bool {
	return lang == LanguageGerman || lang == LanguageEnglish
}
