// Package integration connects Luna to third-party task and calendar
// services over OAuth2. Tokens are persisted in the token store; refreshed
// tokens are saved back transparently.
package integration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/ebetancourt/luna/internal/storage"
	"github.com/ebetancourt/luna/pkg/models"
)

// Provider names used as token-store keys.
const (
	ProviderTodoist = "todoist"
	ProviderGoogle  = "google"
)

// OAuthConfig builds the oauth2.Config for a named provider.
func OAuthConfig(provider string, cfg models.OAuthProviderConfig) (*oauth2.Config, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%s: client_id is not configured", provider)
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
	}

	switch provider {
	case ProviderTodoist:
		oc.Endpoint = oauth2.Endpoint{
			AuthURL:  "https://todoist.com/oauth/authorize",
			TokenURL: "https://todoist.com/oauth/access_token",
		}
		if len(oc.Scopes) == 0 {
			oc.Scopes = []string{"data:read"}
		}
	case ProviderGoogle:
		oc.Endpoint = oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		}
		if len(oc.Scopes) == 0 {
			oc.Scopes = []string{"https://www.googleapis.com/auth/calendar.readonly"}
		}
	default:
		return nil, fmt.Errorf("unknown OAuth provider %q", provider)
	}

	if oc.RedirectURL == "" {
		oc.RedirectURL = "http://127.0.0.1:8976/callback"
	}
	return oc, nil
}

// Authorize runs the authorization-code flow for a provider: it returns the
// URL the user must open, listens on the redirect address for the callback,
// exchanges the code, and persists the token. It blocks until the callback
// arrives or ctx is done.
func Authorize(ctx context.Context, provider string, cfg models.OAuthProviderConfig, tokens storage.TokenStoreManager, openURL func(string)) error {
	oc, err := OAuthConfig(provider, cfg)
	if err != nil {
		return err
	}

	state, err := randomState()
	if err != nil {
		return fmt.Errorf("generating state: %w", err)
	}

	code, err := waitForCallback(ctx, oc, state, openURL)
	if err != nil {
		return fmt.Errorf("authorizing %s: %w", provider, err)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging code for %s: %w", provider, err)
	}
	if err := tokens.SaveToken(provider, token); err != nil {
		return err
	}
	return nil
}

// waitForCallback serves the redirect endpoint until one valid callback
// arrives, handing the auth URL to openURL once the listener is up.
func waitForCallback(ctx context.Context, oc *oauth2.Config, state string, openURL func(string)) (string, error) {
	redirect, err := redirectAddr(oc.RedirectURL)
	if err != nil {
		return "", err
	}

	ln, err := net.Listen("tcp", redirect)
	if err != nil {
		return "", fmt.Errorf("listening on %s: %w", redirect, err)
	}
	defer func() { _ = ln.Close() }()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			done <- result{err: fmt.Errorf("state mismatch in callback")}
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			done <- result{err: fmt.Errorf("authorization denied: %s", errMsg)}
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab and return to Luna.")
		done <- result{code: q.Get("code")}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	if openURL != nil {
		openURL(oc.AuthCodeURL(state, oauth2.AccessTypeOffline))
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.code, res.err
	}
}

// redirectAddr extracts host:port from the redirect URL for the local listener.
func redirectAddr(redirectURL string) (string, error) {
	for _, prefix := range []string{"http://", "https://"} {
		if len(redirectURL) > len(prefix) && redirectURL[:len(prefix)] == prefix {
			rest := redirectURL[len(prefix):]
			for i := 0; i < len(rest); i++ {
				if rest[i] == '/' {
					return rest[:i], nil
				}
			}
			return rest, nil
		}
	}
	return "", fmt.Errorf("redirect URL %q must be http(s)://host:port/path", redirectURL)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HTTPClient returns an authenticated *http.Client for a provider, or an
// error when no token is stored. Refreshed tokens are written back to the
// token store, best effort.
func HTTPClient(ctx context.Context, provider string, cfg models.OAuthProviderConfig, tokens storage.TokenStoreManager) (*http.Client, error) {
	oc, err := OAuthConfig(provider, cfg)
	if err != nil {
		return nil, err
	}
	token, err := tokens.GetToken(provider)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%s is not connected; run `luna connect %s` first", provider, provider)
	}

	ts := oc.TokenSource(ctx, token)
	return oauth2.NewClient(ctx, &savingTokenSource{
		ts:       ts,
		provider: provider,
		tokens:   tokens,
	}), nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts       oauth2.TokenSource
	provider string
	tokens   storage.TokenStoreManager
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = s.tokens.SaveToken(s.provider, tok)
	return tok, nil
}
