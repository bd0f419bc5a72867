// Package model defines the crime record and risk table types shared across the pipeline.
package model

// CrimeRecord is one source row from the crime dataset.
type CrimeRecord struct {
	City           string  `json:"City"`
	Area           string  `json:"Area"`
	Latitude       float64 `json:"Latitude"`
	Longitude      float64 `json:"Longitude"`
	CrimeFrequency float64 `json:"Crime Frequency"`
}

// AreaKey is the grouping tuple for area aggregation.
type AreaKey struct {
	City      string
	Area      string
	Latitude  float64
	Longitude float64
}

// Key returns the grouping tuple of the record.
func (r CrimeRecord) Key() AreaKey {
	return AreaKey{City: r.City, Area: r.Area, Latitude: r.Latitude, Longitude: r.Longitude}
}

// AreaAggregate is one area with its summed crime frequency and assigned risk.
type AreaAggregate struct {
	City           string    `json:"City"`
	Area           string    `json:"Area"`
	Latitude       float64   `json:"Latitude"`
	Longitude      float64   `json:"Longitude"`
	CrimeFrequency float64   `json:"Crime Frequency"`
	RiskLevel      RiskLevel `json:"Risk Level"`
}

// Key returns the grouping tuple of the area.
func (a AreaAggregate) Key() AreaKey {
	return AreaKey{City: a.City, Area: a.Area, Latitude: a.Latitude, Longitude: a.Longitude}
}

// CityRisk is the predicted risk level for a whole city.
type CityRisk struct {
	City               string    `json:"City"`
	PredictedRiskLevel RiskLevel `json:"Predicted Risk Level"`
}
