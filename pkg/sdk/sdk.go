// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stellio-hub/ngsild/pkg/errors"
	"github.com/stellio-hub/ngsild/pkg/ngsild"
	"moul.io/http2curl"
)

const (
	// CTAppLDJSON represents the JSON-LD content type NGSI-LD brokers expect.
	CTAppLDJSON ContentType = "application/ld+json"

	// CTAppJSON represents the plain JSON content type.
	CTAppJSON ContentType = "application/json"

	BearerPrefix = "Bearer "

	entitiesEndpoint = "ngsi-ld/v1/entities"
)

// ContentType represents all possible content types.
type ContentType string

var _ SDK = (*cbSDK)(nil)

// SDK contains the NGSI-LD context broker API. Every operation acquires a
// bearer token from the SDK's token manager before the request; a 401 from the
// broker forces exactly one token renewal and one retry before the error is
// surfaced.
type SDK interface {
	// CreateEntity creates the entity in the broker and returns the created
	// entity's URI.
	//
	// example:
	//  entity, _ := ngsild.NewEntity("urn:ngsi-ld:Sensor:001", "Sensor")
	//  _ = entity.Add(ngsild.NewProperty("temperature", 21.5))
	//  location, _ := sdk.CreateEntity(ctx, entity)
	//  fmt.Println(location)
	CreateEntity(ctx context.Context, entity *ngsild.Entity) (string, errors.SDKError)

	// Entity retrieves an entity document by id.
	//
	// example:
	//  doc, _ := sdk.Entity(ctx, "urn:ngsi-ld:Sensor:001")
	//  fmt.Println(doc.ID())
	Entity(ctx context.Context, id string) (EntityDocument, errors.SDKError)

	// QueryEntities queries the broker and returns the matching entity
	// documents, following broker pagination when no explicit limit is given.
	//
	// example:
	//  qp := sdk.QueryParams{
	//    Type:  "Sensor",
	//    Query: `temperature>20`,
	//  }
	//  docs, _ := sdk.QueryEntities(ctx, qp)
	//  fmt.Println(len(docs))
	QueryEntities(ctx context.Context, qp QueryParams) ([]EntityDocument, errors.SDKError)

	// UpdateEntityAttrs patches the given attributes into the existing
	// entity; attributes not named are left untouched.
	//
	// example:
	//  err := sdk.UpdateEntityAttrs(ctx, "urn:ngsi-ld:Sensor:001", ngsild.NewProperty("temperature", 23.0))
	//  fmt.Println(err)
	UpdateEntityAttrs(ctx context.Context, id string, attrs ...ngsild.Attribute) errors.SDKError

	// AppendEntityAttrs appends new attributes to the entity. With
	// NoOverwrite set, the broker rejects attribute names that already exist.
	//
	// example:
	//  opts := sdk.AppendOptions{NoOverwrite: true}
	//  err := sdk.AppendEntityAttrs(ctx, "urn:ngsi-ld:Sensor:001", opts, ngsild.NewProperty("humidity", 40.0))
	//  fmt.Println(err)
	AppendEntityAttrs(ctx context.Context, id string, opts AppendOptions, attrs ...ngsild.Attribute) errors.SDKError

	// DeleteEntity deletes an entity by id.
	//
	// example:
	//  err := sdk.DeleteEntity(ctx, "urn:ngsi-ld:Sensor:001")
	//  fmt.Println(err)
	DeleteEntity(ctx context.Context, id string) errors.SDKError

	// AccessToken returns a currently valid bearer token, renewing it first
	// when the cached one has expired.
	//
	// example:
	//  token, _ := sdk.AccessToken(ctx)
	//  fmt.Println(token)
	AccessToken(ctx context.Context) (string, errors.SDKError)
}

type cbSDK struct {
	brokerURL string

	contentType ContentType
	headers     map[string]string
	client      *http.Client
	tokens      *tokenManager
	logger      *slog.Logger
	curlFlag    bool
}

// Config contains sdk configuration parameters. The env tags allow the struct
// to be filled from the environment through internal/env.
type Config struct {
	BrokerURL    string `env:"NGSILD_BROKER_URL"`
	TokenURL     string `env:"NGSILD_TOKEN_URL"`
	ClientID     string `env:"NGSILD_CLIENT_ID"`
	ClientSecret string `env:"NGSILD_CLIENT_SECRET"`

	ContentType     ContentType   `env:"NGSILD_CONTENT_TYPE"  envDefault:"application/ld+json"`
	Timeout         time.Duration `env:"NGSILD_TIMEOUT"       envDefault:"1m"`
	TokenMargin     time.Duration `env:"NGSILD_TOKEN_MARGIN"  envDefault:"10s"`
	TLSVerification bool          `env:"NGSILD_TLS_VERIFY"    envDefault:"true"`

	// Headers are sent with every broker request in addition to the
	// Content-Type and Authorization headers.
	Headers map[string]string

	// Logger receives a debug line per request. Nil disables logging.
	Logger *slog.Logger

	CurlFlag bool
}

// NewSDK returns a new context broker SDK instance.
func NewSDK(conf Config) SDK {
	client := &http.Client{
		Timeout: conf.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !conf.TLSVerification,
			},
		},
	}
	logger := conf.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	contentType := conf.ContentType
	if contentType == "" {
		contentType = CTAppLDJSON
	}

	return &cbSDK{
		brokerURL:   conf.BrokerURL,
		contentType: contentType,
		headers:     conf.Headers,
		client:      client,
		logger:      logger,
		curlFlag:    conf.CurlFlag,
		tokens: &tokenManager{
			url:          conf.TokenURL,
			clientID:     conf.ClientID,
			clientSecret: conf.ClientSecret,
			margin:       conf.TokenMargin,
			client:       client,
			logger:       logger,
		},
	}
}

func (sdk *cbSDK) AccessToken(ctx context.Context) (string, errors.SDKError) {
	return sdk.tokens.Access(ctx)
}

// processRequest sends an authenticated request and checks the response
// status. On a 401 it forces a single token renewal and retries the request
// exactly once; all other failures are surfaced directly.
func (sdk *cbSDK) processRequest(ctx context.Context, method, reqURL string, data []byte, headers map[string]string, expectedRespCodes ...int) (http.Header, []byte, errors.SDKError) {
	token, sdkerr := sdk.tokens.Access(ctx)
	if sdkerr != nil {
		return make(http.Header), []byte{}, sdkerr
	}

	hdr, body, sdkerr := sdk.send(ctx, method, reqURL, token, data, headers, expectedRespCodes...)
	if sdkerr == nil || sdkerr.StatusCode() != http.StatusUnauthorized {
		return hdr, body, sdkerr
	}

	sdk.logger.Debug("broker rejected token, renewing", slog.String("url", reqURL))
	token, sdkerr = sdk.tokens.ForceRenew(ctx)
	if sdkerr != nil {
		return make(http.Header), []byte{}, sdkerr
	}

	return sdk.send(ctx, method, reqURL, token, data, headers, expectedRespCodes...)
}

// send performs a single request attempt.
func (sdk *cbSDK) send(ctx context.Context, method, reqURL, token string, data []byte, headers map[string]string, expectedRespCodes ...int) (http.Header, []byte, errors.SDKError) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(data))
	if err != nil {
		return make(http.Header), []byte{}, errors.NewSDKError(err)
	}

	// Sets a default value for the Content-Type.
	// Overridden if Content-Type is passed in the headers arguments.
	req.Header.Add("Content-Type", string(sdk.contentType))

	for key, value := range sdk.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	req.Header.Set("Authorization", BearerPrefix+token)

	if sdk.curlFlag {
		curlCommand, err := http2curl.GetCurlCommand(req)
		if err != nil {
			return nil, nil, errors.NewSDKError(err)
		}
		sdk.logger.Debug(curlCommand.String())
	}

	sdk.logger.Debug("broker request", slog.String("method", method), slog.String("url", reqURL))

	resp, err := sdk.client.Do(req)
	if err != nil {
		return make(http.Header), []byte{}, errors.NewSDKError(errors.Wrap(errors.ErrTransport, err))
	}
	defer resp.Body.Close()

	sdkerr := errors.CheckError(resp, expectedRespCodes...)
	if sdkerr != nil {
		return make(http.Header), []byte{}, sdkerr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return make(http.Header), []byte{}, errors.NewSDKError(err)
	}

	return resp.Header, body, nil
}
