// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package sdk_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	sdk "github.com/stellio-hub/ngsild/pkg/sdk"
)

const (
	clientID     = "ngsild-client"
	clientSecret = "strongsecret"
	contentType  = "application/ld+json"
)

// ssoStub is an SSO token endpoint implementing the OAuth2 client-credentials
// grant. Each exchange issues token-1, token-2, ... so renewals are
// observable.
type ssoStub struct {
	server    *httptest.Server
	exchanges atomic.Int32
	failing   atomic.Bool
	expiresIn int64
	delay     time.Duration
}

func newSSOStub(expiresIn int64) *ssoStub {
	stub := &ssoStub{expiresIn: expiresIn}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stub.delay > 0 {
			time.Sleep(stub.delay)
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.Form.Get("grant_type") != "client_credentials" ||
			r.Form.Get("client_id") != clientID ||
			r.Form.Get("client_secret") != clientSecret {
			http.Error(w, "invalid_client", http.StatusUnauthorized)
			return
		}
		if stub.failing.Load() {
			http.Error(w, "temporarily_unavailable", http.StatusServiceUnavailable)
			return
		}

		n := stub.exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": stub.token(n),
			"token_type":   "Bearer",
			"expires_in":   stub.expiresIn,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))

	return stub
}

func (s *ssoStub) token(n int32) string {
	return fmt.Sprintf("token-%d", n)
}

func (s *ssoStub) Close() {
	s.server.Close()
}

// newTestSDK wires an SDK against the given broker and SSO endpoints with a
// long-lived token.
func newTestSDK(brokerURL, tokenURL string) sdk.SDK {
	return sdk.NewSDK(sdk.Config{
		BrokerURL:       brokerURL,
		TokenURL:        tokenURL,
		ClientID:        clientID,
		ClientSecret:    clientSecret,
		ContentType:     contentType,
		Timeout:         time.Minute,
		TokenMargin:     time.Second,
		TLSVerification: true,
	})
}
