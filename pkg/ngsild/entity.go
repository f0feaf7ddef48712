// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package ngsild

import (
	"encoding/json"
	"fmt"

	"github.com/stellio-hub/ngsild/pkg/errors"
)

// DefaultContext is the NGSI-LD core context used when an entity carries no
// explicit @context.
const DefaultContext = "https://uri.etsi.org/ngsi-ld/v1/ngsi-ld-core-context-v1.6.jsonld"

// Entity is an identified, typed NGSI-LD entity holding top-level attributes
// and the JSON-LD @context.
type Entity struct {
	id         string
	entityType string
	context    interface{}
	attrs      []Attribute
}

// NewEntity returns an Entity with the given identifier URI and type name,
// both required. The identifier and type are immutable afterwards.
func NewEntity(id, entityType string) (*Entity, error) {
	if id == "" {
		return nil, errors.Wrap(errors.ErrValidation, errors.ErrEmptyID)
	}
	if entityType == "" {
		return nil, errors.Wrap(errors.ErrValidation, errors.ErrEmptyType)
	}

	return &Entity{
		id:         id,
		entityType: entityType,
	}, nil
}

// ID returns the entity identifier URI.
func (e *Entity) ID() string {
	return e.id
}

// Type returns the entity type name.
func (e *Entity) Type() string {
	return e.entityType
}

// Context returns the @context the entity serializes with.
func (e *Entity) Context() interface{} {
	if e.context == nil {
		return DefaultContext
	}

	return e.context
}

// SetContext sets the @context: a URI string, a list of URIs, or an inline
// context object. Resolvability is not checked here, the broker does that.
func (e *Entity) SetContext(ctx interface{}) {
	e.context = ctx
}

// Add attaches attributes at the top level of the entity. It fails when an
// attribute already has an owner or collides, with an existing instance or
// within the argument list, on the (name, datasetId) pair. On failure the
// entity is left unchanged. Attributes keep their insertion order.
func (e *Entity) Add(attrs ...Attribute) error {
	for i, attr := range attrs {
		if attr.base().owned {
			return errors.Wrap(errors.ErrComposition, errors.ErrOwned)
		}
		for _, existing := range e.attrs {
			if existing.Name() == attr.Name() && existing.DatasetID() == attr.DatasetID() {
				return errors.Wrap(errors.ErrComposition, errors.ErrDuplicateAttribute)
			}
		}
		for _, prev := range attrs[:i] {
			if prev.Name() == attr.Name() && prev.DatasetID() == attr.DatasetID() {
				return errors.Wrap(errors.ErrComposition, errors.ErrDuplicateAttribute)
			}
		}
	}

	for _, attr := range attrs {
		attr.base().owned = true
		e.attrs = append(e.attrs, attr)
	}

	return nil
}

// SetAttributes replaces the entity's top-level attributes with attrs,
// releasing ownership of the current ones. The same ownership and
// (name, datasetId) uniqueness rules as Add apply; attributes already held by
// this entity may appear in the replacement list. On failure the entity is
// left unchanged.
func (e *Entity) SetAttributes(attrs ...Attribute) error {
	held := make(map[*baseAttribute]bool, len(e.attrs))
	for _, attr := range e.attrs {
		held[attr.base()] = true
	}

	for i, attr := range attrs {
		if attr.base().owned && !held[attr.base()] {
			return errors.Wrap(errors.ErrComposition, errors.ErrOwned)
		}
		for _, prev := range attrs[:i] {
			if prev.Name() == attr.Name() && prev.DatasetID() == attr.DatasetID() {
				return errors.Wrap(errors.ErrComposition, errors.ErrDuplicateAttribute)
			}
		}
	}

	for _, attr := range e.attrs {
		attr.base().owned = false
	}
	for _, attr := range attrs {
		attr.base().owned = true
	}
	e.attrs = append([]Attribute(nil), attrs...)

	return nil
}

// Attributes returns the top-level attributes in insertion order.
func (e *Entity) Attributes() []Attribute {
	return e.attrs
}

// Attribute returns all instances registered under the given name.
func (e *Entity) Attribute(name string) []Attribute {
	var instances []Attribute
	for _, attr := range e.attrs {
		if attr.Name() == name {
			instances = append(instances, attr)
		}
	}

	return instances
}

// NGSILD returns the full NGSI-LD document of the entity: id, type, @context
// and every top-level attribute merged as a sibling key.
func (e *Entity) NGSILD() map[string]interface{} {
	doc := map[string]interface{}{
		"id":       e.id,
		"type":     e.entityType,
		"@context": e.Context(),
	}
	mergeAttributes(doc, e.attrs)

	return doc
}

// MarshalJSON serializes the entity as its NGSI-LD document.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.NGSILD())
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity(id=%q, type=%q)", e.id, e.entityType)
}
