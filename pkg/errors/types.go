// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package errors

var (
	// ErrComposition indicates an invalid mutation of an attribute graph.
	ErrComposition = New("invalid attribute composition")

	// ErrValidation indicates an invalid attribute or entity field.
	ErrValidation = New("invalid field value")

	// ErrAuthentication indicates failure of the token exchange against the SSO server.
	ErrAuthentication = New("failed to obtain access token")

	// ErrTransport indicates a network or timeout failure while talking to the
	// SSO server or the context broker.
	ErrTransport = New("transport failure")

	// ErrNotFound indicates a non-existent entity request.
	ErrNotFound = New("entity not found")

	// ErrConflict indicates that the entity or attribute already exists.
	ErrConflict = New("entity already exists")

	// ErrMalformedEntity indicates that the broker rejected the entity document.
	ErrMalformedEntity = New("malformed entity")

	// ErrBroker indicates an unexpected non-2xx broker response.
	ErrBroker = New("unexpected broker response")

	// ErrOwned indicates an attempt to attach an attribute that already has an owner.
	ErrOwned = New("attribute is already owned by another container")

	// ErrCycle indicates an attempt to attach an ancestor as a sub-attribute.
	ErrCycle = New("attribute composition must not form a cycle")

	// ErrDuplicateAttribute indicates a (name, datasetId) collision among siblings.
	ErrDuplicateAttribute = New("duplicate attribute name and dataset id")

	// ErrFinalAttribute indicates an attempt to nest attributes under a GeoProperty.
	ErrFinalAttribute = New("geo property cannot hold sub-attributes")

	// ErrEmptyObject indicates a relationship without a target entity URI.
	ErrEmptyObject = New("relationship object must not be empty")

	// ErrGeometryType indicates a geometry type outside the GeoJSON set.
	ErrGeometryType = New("unsupported GeoJSON geometry type")

	// ErrEmptyID indicates an entity without an identifier.
	ErrEmptyID = New("entity id must not be empty")

	// ErrEmptyType indicates an entity without a type name.
	ErrEmptyType = New("entity type must not be empty")
)
