// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package ngsild

import "github.com/stellio-hub/ngsild/pkg/errors"

// GeoJSON geometry types accepted by NGSI-LD geo properties.
const (
	GeometryPoint           = "Point"
	GeometryLineString      = "LineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPoint      = "MultiPoint"
	GeometryMultiLineString = "MultiLineString"
	GeometryMultiPolygon    = "MultiPolygon"
)

var geometryTypes = map[string]struct{}{
	GeometryPoint:           {},
	GeometryLineString:      {},
	GeometryPolygon:         {},
	GeometryMultiPoint:      {},
	GeometryMultiLineString: {},
	GeometryMultiPolygon:    {},
}

// Geometry is a GeoJSON geometry object. Coordinates follow the GeoJSON
// nesting for the given type, e.g. []float64 for a Point, [][]float64 for a
// LineString.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Point returns a Point geometry at the given longitude and latitude.
func Point(lon, lat float64) Geometry {
	return Geometry{
		Type:        GeometryPoint,
		Coordinates: []float64{lon, lat},
	}
}

// Validate checks that the geometry type is one of the GeoJSON geometry types.
func (g Geometry) Validate() error {
	if _, ok := geometryTypes[g.Type]; !ok {
		return errors.Wrap(errors.ErrValidation, errors.ErrGeometryType)
	}

	return nil
}
