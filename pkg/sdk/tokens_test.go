// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package sdk_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stellio-hub/ngsild/pkg/errors"
	sdk "github.com/stellio-hub/ngsild/pkg/sdk"
	"github.com/stretchr/testify/assert"
)

func TestAccessTokenCachesWhileValid(t *testing.T) {
	sso := newSSOStub(3600)
	defer sso.Close()

	client := newTestSDK("http://localhost", sso.server.URL)

	first, sdkerr := client.AccessToken(context.Background())
	assert.Nil(t, sdkerr, fmt.Sprintf("unexpected error: %s", sdkerr))
	assert.Equal(t, "token-1", first, fmt.Sprintf("expected token-1 got %s", first))

	second, sdkerr := client.AccessToken(context.Background())
	assert.Nil(t, sdkerr, fmt.Sprintf("unexpected error: %s", sdkerr))
	assert.Equal(t, first, second, "expected the cached token to be reused")
	assert.Equal(t, int32(1), sso.exchanges.Load(), "expected a single exchange for a valid token")
}

func TestAccessTokenRenewsWhenExpired(t *testing.T) {
	sso := newSSOStub(3600)
	defer sso.Close()

	// The margin exceeds the declared lifetime, so every call sees an
	// expired token and must renew.
	client := sdk.NewSDK(sdk.Config{
		BrokerURL:    "http://localhost",
		TokenURL:     sso.server.URL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenMargin:  2 * time.Hour,
		Timeout:      time.Minute,
	})

	first, sdkerr := client.AccessToken(context.Background())
	assert.Nil(t, sdkerr, fmt.Sprintf("unexpected error: %s", sdkerr))
	second, sdkerr := client.AccessToken(context.Background())
	assert.Nil(t, sdkerr, fmt.Sprintf("unexpected error: %s", sdkerr))

	assert.Equal(t, "token-1", first, fmt.Sprintf("expected token-1 got %s", first))
	assert.Equal(t, "token-2", second, fmt.Sprintf("expected token-2 got %s", second))
	assert.Equal(t, int32(2), sso.exchanges.Load(), "expected one exchange per expired call")
}

func TestAccessTokenConcurrentRenewal(t *testing.T) {
	sso := newSSOStub(3600)
	sso.delay = 200 * time.Millisecond
	defer sso.Close()

	client := newTestSDK("http://localhost", sso.server.URL)

	const callers = 10
	tokens := make([]string, callers)
	errs := make([]errors.SDKError, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = client.AccessToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.Nil(t, errs[i], fmt.Sprintf("caller %d: unexpected error %s\n", i, errs[i]))
		assert.Equal(t, "token-1", tokens[i], fmt.Sprintf("caller %d: expected the shared token got %s\n", i, tokens[i]))
	}
	assert.Equal(t, int32(1), sso.exchanges.Load(), "expected concurrent callers to share a single exchange")
}

func TestAccessTokenExchangeFailure(t *testing.T) {
	sso := newSSOStub(3600)
	sso.failing.Store(true)
	defer sso.Close()

	client := newTestSDK("http://localhost", sso.server.URL)

	_, sdkerr := client.AccessToken(context.Background())
	assert.NotNil(t, sdkerr, "expected an error from a failing exchange")
	assert.True(t, errors.Contains(sdkerr, errors.ErrAuthentication), fmt.Sprintf("expected %v to contain %v\n", sdkerr, errors.ErrAuthentication))
	assert.Equal(t, int32(0), sso.exchanges.Load(), "expected no token to be issued")
}

func TestAccessTokenBadCredentials(t *testing.T) {
	sso := newSSOStub(3600)
	defer sso.Close()

	client := sdk.NewSDK(sdk.Config{
		BrokerURL:    "http://localhost",
		TokenURL:     sso.server.URL,
		ClientID:     clientID,
		ClientSecret: "wrong",
		Timeout:      time.Minute,
	})

	_, sdkerr := client.AccessToken(context.Background())
	assert.NotNil(t, sdkerr, "expected an error for bad credentials")
	assert.True(t, errors.Contains(sdkerr, errors.ErrAuthentication), fmt.Sprintf("expected %v to contain %v\n", sdkerr, errors.ErrAuthentication))
}

func TestAccessTokenTransportFailure(t *testing.T) {
	sso := newSSOStub(3600)
	sso.Close()

	client := newTestSDK("http://localhost", sso.server.URL)

	_, sdkerr := client.AccessToken(context.Background())
	assert.NotNil(t, sdkerr, "expected an error for an unreachable SSO server")
	assert.True(t, errors.Contains(sdkerr, errors.ErrAuthentication), fmt.Sprintf("expected %v to contain %v\n", sdkerr, errors.ErrAuthentication))
}
