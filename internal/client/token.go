package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"paxum-payment-service/internal/config"
	"paxum-payment-service/internal/model"
)

// tokenSafetyMargin is subtracted from the provider-reported lifetime so a
// token is refreshed before it can expire mid-request.
const tokenSafetyMargin = 60 * time.Second

type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	ClearCache()
	Info() TokenInfo
}

type TokenInfo struct {
	HasToken  bool
	ExpiresAt time.Time
}

type tokenManagerImpl struct {
	httpClient   *http.Client
	oauthURL     string
	clientID     string
	clientSecret string
	logger       *zap.SugaredLogger

	mu      sync.Mutex
	token   string
	expires time.Time

	now func() time.Time
}

func NewTokenManager(paxosCfg *config.Paxos, logger *zap.SugaredLogger) TokenManager {
	return &tokenManagerImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		oauthURL:     paxosCfg.OAuthURL,
		clientID:     paxosCfg.ClientID,
		clientSecret: paxosCfg.ClientSecret,
		logger:       logger,
		now:          time.Now,
	}
}

// GetToken returns a bearer token for provider API calls, reusing the cached
// one while it is still inside its validity window. Concurrent callers may
// race to refresh an expired token; any valid token works for any caller so
// the redundant exchange is tolerated.
func (m *tokenManagerImpl) GetToken(ctx context.Context) (string, error) {
	if m.clientID == "" || m.clientSecret == "" {
		return "", ErrCredentialsNotConfigured
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expires) {
		return m.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {m.clientID},
		"client_secret": {m.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.oauthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token endpoint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var res model.PaxosTokenResponse
	if err := decodeJSON(resp.Body, &res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: "empty access_token"}
	}

	m.token = res.AccessToken
	m.expires = m.now().Add(time.Duration(res.ExpiresIn)*time.Second - tokenSafetyMargin)
	m.logger.Debugw("acquired paxos token", "expires_at", m.expires)

	return m.token, nil
}

// ClearCache drops the cached token, forcing the next GetToken to
// re-authenticate. Used for tests and forced-refresh recovery.
func (m *tokenManagerImpl) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expires = time.Time{}
}

func (m *tokenManagerImpl) Info() TokenInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return TokenInfo{
		HasToken:  m.token != "",
		ExpiresAt: m.expires,
	}
}
