// geojson/geojson.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geojson converts reachability zones and annotated centerlines
// to GeoJSON (RFC 7946) feature collections.
package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/geometry"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/zones"
)

const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePolygon           = "Polygon"
	TypeMultiPolygon      = "MultiPolygon"
	TypeLineString        = "LineString"
)

type FeatureCollection struct {
	Type     string    `json:"type" msgpack:"type"`
	Features []Feature `json:"features" msgpack:"features"`
}

type Feature struct {
	Type       string     `json:"type" msgpack:"type"`
	Properties Properties `json:"properties" msgpack:"properties"`
	Geometry   Geometry   `json:"geometry" msgpack:"geometry"`
}

// Properties are shared by zone and line features; zones only carry the
// risk and its color.
type Properties struct {
	ID    string `json:"id,omitempty" msgpack:"id,omitempty"`
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Risk  string `json:"risk" msgpack:"risk"`
	Color string `json:"color" msgpack:"color"`
}

// Geometry is a GeoJSON geometry object. Positions are [longitude,
// latitude], which is also the layout of math.Point2LL. Coordinates holds
// a [][]math.Point2LL for a Polygon, a [][][]math.Point2LL for a
// MultiPolygon, and a []math.Point2LL for a LineString.
type Geometry struct {
	Type        string `json:"type" msgpack:"type"`
	Coordinates any    `json:"coordinates" msgpack:"coordinates"`
}

func NewFeatureCollection(features ...Feature) FeatureCollection {
	// Encode an empty collection as [] rather than null.
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: TypeFeatureCollection, Features: features}
}

func polygonCoordinates(p geometry.Polygon) [][]math.Point2LL {
	rings := make([][]math.Point2LL, len(p))
	for i, r := range p {
		rings[i] = r.Close()
	}
	return rings
}

// FromGeometry converts a polygonal geometry; the returned bool is false
// for an empty geometry, which has no GeoJSON representation here.
func FromGeometry(g geometry.Geometry) (Geometry, bool) {
	switch g.Kind {
	case geometry.KindPolygon:
		return Geometry{Type: TypePolygon, Coordinates: polygonCoordinates(g.Polygons[0])}, true

	case geometry.KindMultiPolygon:
		polys := make([][][]math.Point2LL, len(g.Polygons))
		for i, p := range g.Polygons {
			polys[i] = polygonCoordinates(p)
		}
		return Geometry{Type: TypeMultiPolygon, Coordinates: polys}, true

	default:
		return Geometry{}, false
	}
}

func LineString(pts []math.Point2LL) Geometry {
	return Geometry{Type: TypeLineString, Coordinates: pts}
}

// FromZones returns one feature per category present in the zone map,
// ordered by the configuration's precedence.
func FromZones(z zones.ZoneMap, cfg zones.Config) FeatureCollection {
	var features []Feature
	for _, r := range z.Categories(cfg) {
		g, ok := FromGeometry(z[r])
		if !ok {
			continue
		}
		features = append(features, Feature{
			Type:       TypeFeature,
			Properties: Properties{Risk: r.String(), Color: cfg.Color(r)},
			Geometry:   g,
		})
	}
	return NewFeatureCollection(features...)
}

// FromLines returns a LineString feature for each centerline.
func FromLines(lines []zones.AnnotatedLine) FeatureCollection {
	var features []Feature
	for _, l := range lines {
		features = append(features, Feature{
			Type: TypeFeature,
			Properties: Properties{
				ID:    l.LocationID,
				Name:  l.Name,
				Risk:  l.Category.String(),
				Color: l.Color,
			},
			Geometry: LineString(l.Line),
		})
	}
	return NewFeatureCollection(features...)
}

func (fc FeatureCollection) Marshal() ([]byte, error) {
	b, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}
	return b, nil
}
