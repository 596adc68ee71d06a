package arcgis

import (
	"encoding/json"
	"strconv"
	"strings"
)

// WGS84 is the spatial reference of geocoder output and feature layers.
const WGS84 = 4326

// Esri field and geometry type names.
const (
	GeometryPoint     = "esriGeometryPoint"
	FieldTypeString   = "esriFieldTypeString"
	FieldTypeDouble   = "esriFieldTypeDouble"
	FieldTypeInteger  = "esriFieldTypeInteger"
	FieldTypeObjectID = "esriFieldTypeOID"
)

// FeatureCollection is the inline layer format accepted by analysis tools.
type FeatureCollection struct {
	LayerDefinition LayerDefinition `json:"layerDefinition"`
	FeatureSet      FeatureSet      `json:"featureSet"`
}

type LayerDefinition struct {
	GeometryType string  `json:"geometryType"`
	Fields       []Field `json:"fields"`
}

type Field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Alias string `json:"alias,omitempty"`
}

type FeatureSet struct {
	GeometryType     string           `json:"geometryType,omitempty"`
	SpatialReference SpatialReference `json:"spatialReference"`
	Features         []Feature        `json:"features"`
}

type SpatialReference struct {
	WKID int `json:"wkid"`
}

// Feature is a single record. Geometry is kept raw since route features
// carry polylines the pipeline never reads.
type Feature struct {
	Geometry   json.RawMessage `json:"geometry,omitempty"`
	Attributes map[string]any  `json:"attributes"`
}

// PointGeometry is the geometry of point features.
type PointGeometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPointFeature builds a point feature in WGS84.
func NewPointFeature(x, y float64, attrs map[string]any) Feature {
	g, _ := json.Marshal(PointGeometry{X: x, Y: y})
	return Feature{Geometry: g, Attributes: attrs}
}

// String returns the attribute as a string. Numbers are formatted without
// a trailing fraction.
func (f Feature) String(name string) string {
	switch v := f.Attributes[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		b, _ := json.Marshal(v)
		return strings.Trim(string(b), `"`)
	}
}

// Float returns the numeric attribute, or 0 when absent or not a number.
func (f Feature) Float(name string) float64 {
	switch v := f.Attributes[name].(type) {
	case json.Number:
		n, _ := v.Float64()
		return n
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n
	default:
		return 0
	}
}
