package commute

import (
	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/core/model"
)

// Attribute names of the point layers sent to the routing job.
const (
	FieldAddressType = "Employee_Address_Type"
	FieldLat         = "Lat"
	FieldLon         = "Lon"
)

// ToFeatureCollection builds the point layer for the given locations. Each
// feature carries its employee number as route ID.
func ToFeatureCollection(locations []model.Location) arcgis.FeatureCollection {
	features := make([]arcgis.Feature, 0, len(locations))
	for _, l := range locations {
		features = append(features, arcgis.NewPointFeature(l.Point.X, l.Point.Y, map[string]any{
			arcgis.RouteIDField: l.Employee,
			FieldAddressType:    string(l.Type),
			FieldLat:            l.Point.Lat(),
			FieldLon:            l.Point.Lon(),
		}))
	}
	return arcgis.FeatureCollection{
		LayerDefinition: arcgis.LayerDefinition{
			GeometryType: arcgis.GeometryPoint,
			Fields: []arcgis.Field{
				{Name: arcgis.RouteIDField, Type: arcgis.FieldTypeString, Alias: "Employee Number"},
				{Name: FieldAddressType, Type: arcgis.FieldTypeString, Alias: "Employee Address Type"},
				{Name: FieldLat, Type: arcgis.FieldTypeDouble},
				{Name: FieldLon, Type: arcgis.FieldTypeDouble},
			},
		},
		FeatureSet: arcgis.FeatureSet{
			GeometryType:     arcgis.GeometryPoint,
			SpatialReference: arcgis.SpatialReference{WKID: arcgis.WGS84},
			Features:         features,
		},
	}
}
