// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/stellio-hub/ngsild/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	grantType = "client_credentials"

	// defaultTokenMargin is subtracted from the server-declared lifetime so a
	// token is renewed before it can expire mid-flight.
	defaultTokenMargin = 10 * time.Second
)

// Token is an OAuth2 access token with its absolute expiry, the safety margin
// already applied. Tokens are immutable; renewal replaces the whole value.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// tokenRes is the relevant part of the SSO token endpoint response.
type tokenRes struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenManager obtains, caches and renews client-credentials tokens against
// the configured SSO endpoint. Concurrent renewals collapse into a single
// in-flight exchange; waiters all receive its result.
type tokenManager struct {
	url          string
	clientID     string
	clientSecret string
	margin       time.Duration
	client       *http.Client
	logger       *slog.Logger

	mu      sync.RWMutex
	current Token
	group   singleflight.Group
}

// Access returns a currently valid access token, performing the
// client-credentials exchange first when no valid token is cached.
func (tm *tokenManager) Access(ctx context.Context) (string, errors.SDKError) {
	if token, ok := tm.cached(); ok {
		return token, nil
	}

	return tm.renew(ctx)
}

// ForceRenew discards the cached token and performs a fresh exchange. Used
// when the broker rejects a token that is still inside its local validity
// window.
func (tm *tokenManager) ForceRenew(ctx context.Context) (string, errors.SDKError) {
	tm.mu.Lock()
	tm.current = Token{}
	tm.mu.Unlock()

	return tm.renew(ctx)
}

func (tm *tokenManager) cached() (string, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if tm.current.AccessToken == "" || !time.Now().Before(tm.current.ExpiresAt) {
		return "", false
	}

	return tm.current.AccessToken, true
}

func (tm *tokenManager) renew(ctx context.Context) (string, errors.SDKError) {
	v, err, _ := tm.group.Do("token", func() (interface{}, error) {
		// A waiter queued behind a finished exchange sees the fresh token.
		if token, ok := tm.cached(); ok {
			return token, nil
		}

		return tm.exchange(ctx)
	})
	if err != nil {
		if sdkerr, ok := err.(errors.SDKError); ok {
			return "", sdkerr
		}
		return "", errors.NewSDKError(err)
	}

	return v.(string), nil
}

// exchange performs the OAuth2 client-credentials grant and stores the
// resulting token. On failure the cached token is left untouched.
func (tm *tokenManager) exchange(ctx context.Context) (string, errors.SDKError) {
	form := url.Values{
		"client_id":     []string{tm.clientID},
		"client_secret": []string{tm.clientSecret},
		"grant_type":    []string{grantType},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.NewSDKError(errors.Wrap(errors.ErrAuthentication, err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tm.client.Do(req)
	if err != nil {
		return "", errors.NewSDKError(errors.Wrap(errors.ErrAuthentication, errors.Wrap(errors.ErrTransport, err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		cause := errors.New(strings.TrimSpace(string(body)))
		return "", errors.NewSDKErrorWithStatus(errors.Wrap(errors.ErrAuthentication, cause), resp.StatusCode)
	}

	var res tokenRes
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", errors.NewSDKError(errors.Wrap(errors.ErrAuthentication, err))
	}
	if res.AccessToken == "" {
		return "", errors.NewSDKError(errors.Wrap(errors.ErrAuthentication, errors.New("response carried no access token")))
	}

	margin := tm.margin
	if margin == 0 {
		margin = defaultTokenMargin
	}

	token := Token{
		AccessToken: res.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(res.ExpiresIn)*time.Second - margin),
	}

	tm.mu.Lock()
	tm.current = token
	tm.mu.Unlock()

	tm.logger.Debug("access token renewed", slog.Time("expires_at", token.ExpiresAt))

	return token.AccessToken, nil
}
