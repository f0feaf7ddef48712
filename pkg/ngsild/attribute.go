// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package ngsild

import (
	"fmt"
	"time"

	"github.com/stellio-hub/ngsild/pkg/errors"
)

const (
	// PropertyType is the NGSI-LD type name of a Property attribute.
	PropertyType = "Property"

	// RelationshipType is the NGSI-LD type name of a Relationship attribute.
	RelationshipType = "Relationship"

	// GeoPropertyType is the NGSI-LD type name of a GeoProperty attribute.
	GeoPropertyType = "GeoProperty"
)

// Attribute is the closed set of NGSI-LD attribute variants: Property,
// Relationship and GeoProperty. All variants share naming, dataset
// discrimination, recursive composition and NGSI-LD serialization.
type Attribute interface {
	// Name returns the attribute key this attribute serializes under.
	Name() string

	// Type returns the NGSI-LD type name of the variant.
	Type() string

	// DatasetID returns the dataset discriminator, or an empty string for the
	// default instance.
	DatasetID() string

	// Add attaches child as a sub-attribute. It fails when child already has
	// an owner, when the attachment would close a cycle, or when a sibling
	// with the same (name, datasetId) pair exists.
	Add(child Attribute) error

	// SubAttributes returns the owned sub-attributes in insertion order.
	SubAttributes() []Attribute

	// NGSILD returns the attribute's JSON-LD object fragment, sub-attributes
	// inlined as sibling keys.
	NGSILD() map[string]interface{}

	base() *baseAttribute
}

var (
	_ Attribute = (*Property)(nil)
	_ Attribute = (*Relationship)(nil)
	_ Attribute = (*GeoProperty)(nil)
)

// baseAttribute carries the state shared by all attribute variants.
type baseAttribute struct {
	name       string
	attrType   string
	observedAt string
	unitCode   string
	datasetID  string

	// owner back-reference, nil for top-level attributes. owned is set also
	// when the owner is the entity itself.
	parent   Attribute
	owned    bool
	children []Attribute
}

func (b *baseAttribute) Name() string {
	return b.name
}

func (b *baseAttribute) Type() string {
	return b.attrType
}

func (b *baseAttribute) DatasetID() string {
	return b.datasetID
}

func (b *baseAttribute) SubAttributes() []Attribute {
	return b.children
}

// SetObservedAt records the observation timestamp, formatted as ISO-8601.
func (b *baseAttribute) SetObservedAt(t time.Time) {
	b.observedAt = t.Format(time.RFC3339Nano)
}

// SetObservedAtString records a pre-formatted ISO-8601 observation timestamp.
// The value passes through to the document unmodified.
func (b *baseAttribute) SetObservedAtString(ts string) {
	b.observedAt = ts
}

// SetDatasetID sets the dataset discriminator. It must be set before the
// attribute is attached to a container; changing it afterwards would bypass
// the container's uniqueness check.
func (b *baseAttribute) SetDatasetID(id string) {
	b.datasetID = id
}

// add attaches child under self, enforcing the composition invariants. self is
// the variant embedding b.
func (b *baseAttribute) add(self, child Attribute) error {
	if child.base().owned {
		return errors.Wrap(errors.ErrComposition, errors.ErrOwned)
	}
	for anc := self; anc != nil; anc = anc.base().parent {
		if anc == child {
			return errors.Wrap(errors.ErrComposition, errors.ErrCycle)
		}
	}
	for _, sibling := range b.children {
		if sibling.Name() == child.Name() && sibling.DatasetID() == child.DatasetID() {
			return errors.Wrap(errors.ErrComposition, errors.ErrDuplicateAttribute)
		}
	}

	child.base().parent = self
	child.base().owned = true
	b.children = append(b.children, child)

	return nil
}

// fragment assembles the variant-independent part of the NGSI-LD object:
// type, optional fields and inlined sub-attributes.
func (b *baseAttribute) fragment() map[string]interface{} {
	frag := map[string]interface{}{
		"type": b.attrType,
	}
	if b.observedAt != "" {
		frag["observedAt"] = b.observedAt
	}
	if b.unitCode != "" {
		frag["unitCode"] = b.unitCode
	}
	if b.datasetID != "" {
		frag["datasetId"] = b.datasetID
	}
	mergeAttributes(frag, b.children)

	return frag
}

// mergeAttributes inlines attrs into dst keyed by attribute name. Instances
// sharing a name (distinct dataset ids) are grouped into a JSON array, per the
// NGSI-LD multi-attribute convention.
func mergeAttributes(dst map[string]interface{}, attrs []Attribute) {
	var order []string
	grouped := make(map[string][]Attribute)
	for _, a := range attrs {
		if _, ok := grouped[a.Name()]; !ok {
			order = append(order, a.Name())
		}
		grouped[a.Name()] = append(grouped[a.Name()], a)
	}
	for _, name := range order {
		group := grouped[name]
		if len(group) == 1 {
			dst[name] = group[0].NGSILD()
			continue
		}
		instances := make([]interface{}, 0, len(group))
		for _, a := range group {
			instances = append(instances, a.NGSILD())
		}
		dst[name] = instances
	}
}

// Fragment returns an NGSI-LD fragment document holding the given attributes
// keyed by name, as used by partial update and append operations. Attributes
// colliding on the (name, datasetId) pair are rejected, the same rule Add
// enforces on containers. Ownership of the attributes is not affected.
func Fragment(attrs ...Attribute) (map[string]interface{}, error) {
	if err := checkSiblings(attrs); err != nil {
		return nil, err
	}

	doc := make(map[string]interface{})
	mergeAttributes(doc, attrs)

	return doc, nil
}

// checkSiblings rejects (name, datasetId) collisions within attrs.
func checkSiblings(attrs []Attribute) error {
	for i, attr := range attrs {
		for _, prev := range attrs[:i] {
			if prev.Name() == attr.Name() && prev.DatasetID() == attr.DatasetID() {
				return errors.Wrap(errors.ErrComposition, errors.ErrDuplicateAttribute)
			}
		}
	}

	return nil
}

// Property is an NGSI-LD attribute carrying a literal or structured value.
type Property struct {
	baseAttribute
	value interface{}
}

// NewProperty returns a Property with the given name and value. The value may
// be any NGSI-LD valid JSON scalar, object or array.
func NewProperty(name string, value interface{}) *Property {
	return &Property{
		baseAttribute: baseAttribute{
			name:     name,
			attrType: PropertyType,
		},
		value: value,
	}
}

// Value returns the property value.
func (p *Property) Value() interface{} {
	return p.value
}

// SetValue replaces the property value.
func (p *Property) SetValue(value interface{}) {
	p.value = value
}

// SetUnitCode sets the UN/CEFACT measurement unit code.
func (p *Property) SetUnitCode(code string) {
	p.unitCode = code
}

func (p *Property) Add(child Attribute) error {
	return p.baseAttribute.add(p, child)
}

func (p *Property) NGSILD() map[string]interface{} {
	frag := p.fragment()
	frag["value"] = p.value

	return frag
}

func (p *Property) String() string {
	return fmt.Sprintf("Property(name=%q, value=%v)", p.name, p.value)
}

func (p *Property) base() *baseAttribute {
	return &p.baseAttribute
}

// Relationship is an NGSI-LD attribute referencing another entity by URI.
type Relationship struct {
	baseAttribute
	object string
}

// NewRelationship returns a Relationship with the given name targeting the
// entity identified by object. An empty object is rejected.
func NewRelationship(name, object string) (*Relationship, error) {
	if object == "" {
		return nil, errors.Wrap(errors.ErrValidation, errors.ErrEmptyObject)
	}

	return &Relationship{
		baseAttribute: baseAttribute{
			name:     name,
			attrType: RelationshipType,
		},
		object: object,
	}, nil
}

// Object returns the target entity URI.
func (r *Relationship) Object() string {
	return r.object
}

// SetObject replaces the target entity URI. An empty object is rejected.
func (r *Relationship) SetObject(object string) error {
	if object == "" {
		return errors.Wrap(errors.ErrValidation, errors.ErrEmptyObject)
	}
	r.object = object

	return nil
}

func (r *Relationship) Add(child Attribute) error {
	return r.baseAttribute.add(r, child)
}

func (r *Relationship) NGSILD() map[string]interface{} {
	frag := r.fragment()
	frag["object"] = r.object

	return frag
}

func (r *Relationship) String() string {
	return fmt.Sprintf("Relationship(name=%q, object=%q)", r.name, r.object)
}

func (r *Relationship) base() *baseAttribute {
	return &r.baseAttribute
}

// GeoProperty is an NGSI-LD attribute whose value is a GeoJSON geometry. It is
// final: no sub-attribute can be attached to it.
type GeoProperty struct {
	baseAttribute
	value Geometry
}

// NewGeoProperty returns a GeoProperty with the given name and geometry. The
// geometry type must be one of the six GeoJSON geometry types.
func NewGeoProperty(name string, value Geometry) (*GeoProperty, error) {
	if err := value.Validate(); err != nil {
		return nil, err
	}

	return &GeoProperty{
		baseAttribute: baseAttribute{
			name:     name,
			attrType: GeoPropertyType,
		},
		value: value,
	}, nil
}

// Value returns the GeoJSON geometry.
func (g *GeoProperty) Value() Geometry {
	return g.value
}

// SetValue replaces the geometry, rejecting unsupported geometry types.
func (g *GeoProperty) SetValue(value Geometry) error {
	if err := value.Validate(); err != nil {
		return err
	}
	g.value = value

	return nil
}

// SetUnitCode sets the UN/CEFACT measurement unit code.
func (g *GeoProperty) SetUnitCode(code string) {
	g.unitCode = code
}

func (g *GeoProperty) Add(child Attribute) error {
	return errors.Wrap(errors.ErrComposition, errors.ErrFinalAttribute)
}

func (g *GeoProperty) NGSILD() map[string]interface{} {
	frag := g.fragment()
	frag["value"] = g.value

	return frag
}

func (g *GeoProperty) String() string {
	return fmt.Sprintf("GeoProperty(name=%q, value=%v)", g.name, g.value)
}

func (g *GeoProperty) base() *baseAttribute {
	return &g.baseAttribute
}
