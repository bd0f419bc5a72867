// Package api serves the precomputed area and city risk tables over HTTP.
package api

import (
	"errors"

	"golang.org/x/text/cases"

	"github.com/sells-group/area-risk/internal/model"
	"github.com/sells-group/area-risk/internal/pipeline"
)

// Not-found results. The messages are the response bodies.
var (
	ErrCityNotFound  = errors.New("City not found")
	ErrAreasNotFound = errors.New("City not found or no areas listed")
)

// AreaView is one row of the area-risk response. CrimeFrequency is only set
// on the unfiltered listing.
type AreaView struct {
	City           string          `json:"City"`
	Area           string          `json:"Area"`
	RiskLevel      model.RiskLevel `json:"Risk Level"`
	Latitude       float64         `json:"Latitude"`
	Longitude      float64         `json:"Longitude"`
	CrimeFrequency *float64        `json:"Crime Frequency,omitempty"`
}

// Service answers risk queries against an immutable pipeline.State.
type Service struct {
	state   *pipeline.State
	cityIdx map[string][]int // folded city -> indexes into state.Cities
	areaIdx map[string][]int // folded city -> indexes into state.Areas
}

// NewService indexes state by case-folded city name.
func NewService(state *pipeline.State) *Service {
	s := &Service{
		state:   state,
		cityIdx: make(map[string][]int),
		areaIdx: make(map[string][]int),
	}
	for i, c := range state.Cities {
		k := fold(c.City)
		s.cityIdx[k] = append(s.cityIdx[k], i)
	}
	for i, a := range state.Areas {
		k := fold(a.City)
		s.areaIdx[k] = append(s.areaIdx[k], i)
	}
	return s
}

// fold returns the Unicode case folding of s.
func fold(s string) string {
	return cases.Fold().String(s)
}

// State returns the underlying tables.
func (s *Service) State() *pipeline.State {
	return s.state
}

// CityRisk returns every city when city is empty, otherwise the city whose
// name matches case-insensitively.
func (s *Service) CityRisk(city string) ([]model.CityRisk, error) {
	if city == "" {
		return s.state.Cities, nil
	}
	idx, ok := s.cityIdx[fold(city)]
	if !ok {
		return nil, ErrCityNotFound
	}
	out := make([]model.CityRisk, len(idx))
	for i, j := range idx {
		out[i] = s.state.Cities[j]
	}
	return out, nil
}

// AreaRisk returns every area when city is empty, otherwise the areas of the
// city whose name matches case-insensitively.
func (s *Service) AreaRisk(city string) ([]AreaView, error) {
	if city == "" {
		out := make([]AreaView, len(s.state.Areas))
		for i, a := range s.state.Areas {
			out[i] = areaView(a)
			freq := a.CrimeFrequency
			out[i].CrimeFrequency = &freq
		}
		return out, nil
	}

	idx, ok := s.areaIdx[fold(city)]
	if !ok {
		return nil, ErrAreasNotFound
	}
	out := make([]AreaView, len(idx))
	for i, j := range idx {
		out[i] = areaView(s.state.Areas[j])
	}
	return out, nil
}

func areaView(a model.AreaAggregate) AreaView {
	return AreaView{
		City:      a.City,
		Area:      a.Area,
		RiskLevel: a.RiskLevel,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}
