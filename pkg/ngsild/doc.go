// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

// Package ngsild implements the NGSI-LD entity and attribute information
// model. An Entity is an identified, typed container of attributes; an
// attribute is one of the three NGSI-LD variants (Property, Relationship,
// GeoProperty) and may recursively own sub-attributes of any variant, which
// serialize inline next to the attribute's own fields as per the NGSI-LD
// reification pattern.
//
// Attribute graphs are built and mutated by a single goroutine; once mutation
// has ceased they are safe for concurrent serialization.
package ngsild
