// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stellio-hub/ngsild/pkg/errors"
	"github.com/stellio-hub/ngsild/pkg/ngsild"
)

// defaultPageLimit is the page size used when a query sets no explicit limit.
const defaultPageLimit = 100

// EntityDocument is a raw NGSI-LD entity as returned by the broker.
type EntityDocument map[string]interface{}

// ID returns the entity identifier, or an empty string when absent.
func (d EntityDocument) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Type returns the entity type name, or an empty string when absent.
func (d EntityDocument) Type() string {
	t, _ := d["type"].(string)
	return t
}

// QueryParams are the NGSI-LD entity query parameters. They are passed
// through to the broker opaquely; see the NGSI-LD API for their semantics.
type QueryParams struct {
	ID          string
	Type        string
	Attrs       []string
	Query       string
	GeoRel      string
	Geometry    string
	Coordinates string
	GeoProperty string
	Options     string
	Offset      uint64
	Limit       uint64
}

func (qp QueryParams) query() string {
	q := url.Values{}
	if qp.ID != "" {
		q.Add("id", qp.ID)
	}
	if qp.Type != "" {
		q.Add("type", qp.Type)
	}
	if len(qp.Attrs) != 0 {
		q.Add("attrs", strings.Join(qp.Attrs, ","))
	}
	if qp.Query != "" {
		q.Add("q", qp.Query)
	}
	if qp.GeoRel != "" {
		q.Add("georel", qp.GeoRel)
	}
	if qp.Geometry != "" {
		q.Add("geometry", qp.Geometry)
	}
	if qp.Coordinates != "" {
		q.Add("coordinates", qp.Coordinates)
	}
	if qp.GeoProperty != "" {
		q.Add("geoproperty", qp.GeoProperty)
	}
	if qp.Options != "" {
		q.Add("options", qp.Options)
	}
	if qp.Offset != 0 {
		q.Add("offset", strconv.FormatUint(qp.Offset, 10))
	}
	if qp.Limit != 0 {
		q.Add("limit", strconv.FormatUint(qp.Limit, 10))
	}

	return q.Encode()
}

// AppendOptions control AppendEntityAttrs behavior.
type AppendOptions struct {
	// NoOverwrite makes the broker reject attribute names that already exist
	// on the entity instead of overwriting them.
	NoOverwrite bool
}

func (sdk *cbSDK) CreateEntity(ctx context.Context, entity *ngsild.Entity) (string, errors.SDKError) {
	data, err := json.Marshal(entity)
	if err != nil {
		return "", errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s", sdk.brokerURL, entitiesEndpoint)

	hdr, _, sdkerr := sdk.processRequest(ctx, http.MethodPost, url, data, nil, http.StatusCreated)
	if sdkerr != nil {
		return "", sdkerr
	}

	location := hdr.Get("Location")
	if location == "" {
		return entity.ID(), nil
	}
	if i := strings.LastIndex(location, "/"); i != -1 {
		location = location[i+1:]
	}

	return location, nil
}

func (sdk *cbSDK) Entity(ctx context.Context, id string) (EntityDocument, errors.SDKError) {
	url := fmt.Sprintf("%s/%s/%s", sdk.brokerURL, entitiesEndpoint, id)

	_, body, sdkerr := sdk.processRequest(ctx, http.MethodGet, url, nil, nil, http.StatusOK)
	if sdkerr != nil {
		return EntityDocument{}, sdkerr
	}

	var doc EntityDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return EntityDocument{}, errors.NewSDKError(err)
	}

	return doc, nil
}

func (sdk *cbSDK) QueryEntities(ctx context.Context, qp QueryParams) ([]EntityDocument, errors.SDKError) {
	// An explicit limit makes a single caller-controlled request; otherwise
	// pages are followed until the broker returns a short page.
	paginate := qp.Limit == 0
	if paginate {
		qp.Limit = defaultPageLimit
	}

	var docs []EntityDocument
	for {
		url := fmt.Sprintf("%s/%s?%s", sdk.brokerURL, entitiesEndpoint, qp.query())

		_, body, sdkerr := sdk.processRequest(ctx, http.MethodGet, url, nil, nil, http.StatusOK)
		if sdkerr != nil {
			return nil, sdkerr
		}

		var page []EntityDocument
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, errors.NewSDKError(err)
		}
		docs = append(docs, page...)

		if !paginate || uint64(len(page)) < qp.Limit {
			return docs, nil
		}
		qp.Offset += qp.Limit
	}
}

func (sdk *cbSDK) UpdateEntityAttrs(ctx context.Context, id string, attrs ...ngsild.Attribute) errors.SDKError {
	frag, err := ngsild.Fragment(attrs...)
	if err != nil {
		return errors.NewSDKError(err)
	}
	data, err := json.Marshal(frag)
	if err != nil {
		return errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s/%s/attrs", sdk.brokerURL, entitiesEndpoint, id)

	_, _, sdkerr := sdk.processRequest(ctx, http.MethodPatch, url, data, nil, http.StatusNoContent, http.StatusMultiStatus)

	return sdkerr
}

func (sdk *cbSDK) AppendEntityAttrs(ctx context.Context, id string, opts AppendOptions, attrs ...ngsild.Attribute) errors.SDKError {
	frag, err := ngsild.Fragment(attrs...)
	if err != nil {
		return errors.NewSDKError(err)
	}
	data, err := json.Marshal(frag)
	if err != nil {
		return errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s/%s/attrs", sdk.brokerURL, entitiesEndpoint, id)
	if opts.NoOverwrite {
		url = fmt.Sprintf("%s?options=noOverwrite", url)
	}

	_, _, sdkerr := sdk.processRequest(ctx, http.MethodPost, url, data, nil, http.StatusNoContent, http.StatusCreated)

	return sdkerr
}

func (sdk *cbSDK) DeleteEntity(ctx context.Context, id string) errors.SDKError {
	url := fmt.Sprintf("%s/%s/%s", sdk.brokerURL, entitiesEndpoint, id)

	_, _, sdkerr := sdk.processRequest(ctx, http.MethodDelete, url, nil, nil, http.StatusNoContent)

	return sdkerr
}
