// Package x posts to the X (Twitter) v2 API with OAuth1 user-context auth.
package x

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

const (
	tweetPath      = "/2/tweets"
	maxErrBodyLen  = 512
	defaultTimeout = 30 * time.Second
)

// Config holds the four OAuth1 secrets plus endpoint settings.
type Config struct {
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
	BaseURL           string
	Timeout           time.Duration
}

// Poster implements feed.Poster against POST /2/tweets.
type Poster struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// New builds a Poster with an OAuth1-signing HTTP client.
func New(cfg Config, logger *zap.Logger) (*Poster, error) {
	if cfg.APIKey == "" || cfg.APIKeySecret == "" || cfg.AccessToken == "" || cfg.AccessTokenSecret == "" {
		return nil, errors.New("incomplete poster credentials")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("poster base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APIKeySecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
	client := oauthCfg.Client(oauth1.NoContext, token)
	client.Timeout = cfg.Timeout

	return &Poster{
		client:  client,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}, nil
}

// Post publishes one tweet. HTTP 429 maps to feed.ErrRateLimited; other
// non-2xx responses surface as ordinary errors for the caller to skip past.
func (p *Poster) Post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+tweetPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send tweet: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("tweet rejected with 429: %w", feed.ErrRateLimited)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		p.logger.Debug("tweet accepted", zap.Int("status", resp.StatusCode))
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyLen))
		return fmt.Errorf("tweet rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
}
