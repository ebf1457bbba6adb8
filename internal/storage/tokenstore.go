package storage

import (
	"database/sql"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenStoreManager persists OAuth2 tokens per provider so integrations
// survive restarts without re-authorizing.
type TokenStoreManager interface {
	SaveToken(provider string, token *oauth2.Token) error
	GetToken(provider string) (*oauth2.Token, error)
	DeleteToken(provider string) error
}

type sqliteTokenStore struct {
	db *sql.DB
}

// NewTokenStoreManager creates a TokenStoreManager backed by the given
// database handle (see OpenDB).
func NewTokenStoreManager(db *sql.DB) TokenStoreManager {
	return &sqliteTokenStore{db: db}
}

// SaveToken upserts the token for a provider.
func (s *sqliteTokenStore) SaveToken(provider string, token *oauth2.Token) error {
	if provider == "" {
		return fmt.Errorf("saving token: provider must not be empty")
	}
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("saving token for %s: token must not be empty", provider)
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO oauth_tokens (provider, access_token, token_type, refresh_token, expiry)
		VALUES (?, ?, ?, ?, ?)`,
		provider, token.AccessToken, token.TokenType, token.RefreshToken, token.Expiry.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving token for %s: %w", provider, err)
	}
	return nil
}

// GetToken returns the stored token for a provider, or nil when none exists.
func (s *sqliteTokenStore) GetToken(provider string) (*oauth2.Token, error) {
	row := s.db.QueryRow(`
		SELECT access_token, token_type, refresh_token, expiry
		FROM oauth_tokens WHERE provider = ?`, provider)

	var (
		token  oauth2.Token
		expiry sql.NullTime
	)
	err := row.Scan(&token.AccessToken, &token.TokenType, &token.RefreshToken, &expiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading token for %s: %w", provider, err)
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return &token, nil
}

// DeleteToken removes a provider's stored token.
func (s *sqliteTokenStore) DeleteToken(provider string) error {
	if _, err := s.db.Exec(`DELETE FROM oauth_tokens WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("deleting token for %s: %w", provider, err)
	}
	return nil
}
