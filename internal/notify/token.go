package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// GmailScope grants SMTP access to the mailbox
const GmailScope = "https://mail.google.com/"

// LoadOAuthConfig reads a Google client secret file (installed app)
func LoadOAuthConfig(clientSecretPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read client secret: %v", contracts.ErrAuth, err)
	}

	conf, err := google.ConfigFromJSON(data, GmailScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secret: %v", contracts.ErrAuth, err)
	}
	return conf, nil
}

// FileTokenProvider serves access tokens from a persisted OAuth2 token,
// refreshing and re-saving it when it expires
// ⭐ SSOT: OAuth2 토큰 읽기/갱신/저장은 여기서만
type FileTokenProvider struct {
	conf   *oauth2.Config
	path   string
	logger *logger.Logger

	mu      sync.Mutex
	current *oauth2.Token
}

var _ contracts.TokenProvider = (*FileTokenProvider)(nil)

// NewFileTokenProvider creates a provider for the token stored at path
func NewFileTokenProvider(conf *oauth2.Config, path string, log *logger.Logger) *FileTokenProvider {
	return &FileTokenProvider{
		conf:   conf,
		path:   path,
		logger: log,
	}
}

// AccessToken returns a valid access token. Every failure wraps contracts.ErrAuth.
func (p *FileTokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		tok, err := ReadToken(p.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: no token at %s; run `schloss auth` first", contracts.ErrAuth, p.path)
			}
			return "", fmt.Errorf("%w: %v", contracts.ErrAuth, err)
		}
		p.current = tok
	}

	fresh, err := p.conf.TokenSource(ctx, p.current).Token()
	if err != nil {
		return "", fmt.Errorf("%w: refresh token: %v", contracts.ErrAuth, err)
	}

	if fresh.AccessToken != p.current.AccessToken {
		if err := SaveToken(p.path, fresh); err != nil {
			// the new token still works for this run
			p.logger.WithError(err).Warn("Failed to persist refreshed token")
		} else {
			p.logger.WithField("expiry", fresh.Expiry).Info("OAuth2 access token refreshed")
		}
	}
	p.current = fresh

	return fresh.AccessToken, nil
}

// ReadToken loads a token JSON file
func ReadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes a token JSON file readable only by the owner
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
