package api

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// AreaFeatures converts area rows into a GeoJSON FeatureCollection of points
// (longitude, latitude) in WGS84.
func AreaFeatures(areas []AreaView) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(areas))}
	for _, a := range areas {
		props := map[string]any{
			"City":       a.City,
			"Area":       a.Area,
			"Risk Level": a.RiskLevel,
		}
		if a.CrimeFrequency != nil {
			props["Crime Frequency"] = *a.CrimeFrequency
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{a.Longitude, a.Latitude}),
			Properties: props,
		})
	}
	return fc
}
