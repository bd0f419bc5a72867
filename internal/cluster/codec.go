package cluster

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/area-risk/internal/model"
)

// SchemaVersion is the current persisted model schema.
const SchemaVersion = 1

// document is the on-disk representation of a Model.
type document struct {
	SchemaVersion int               `json:"schema_version"`
	ID            string            `json:"id"`
	K             int               `json:"k"`
	Seed          int64             `json:"seed"`
	Centroids     []float64         `json:"centroids"`
	Levels        []model.RiskLevel `json:"levels"`
	Inertia       float64           `json:"inertia"`
	Samples       int               `json:"samples"`
	FittedAt      time.Time         `json:"fitted_at"`
}

// EncodeModel serializes m into the versioned JSON schema.
func EncodeModel(m *Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, eris.Wrap(err, "cluster: encode")
	}
	data, err := json.MarshalIndent(document{
		SchemaVersion: SchemaVersion,
		ID:            m.ID,
		K:             m.K,
		Seed:          m.Seed,
		Centroids:     m.Centroids,
		Levels:        m.Levels,
		Inertia:       m.Inertia,
		Samples:       m.Samples,
		FittedAt:      m.FittedAt,
	}, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "cluster: marshal model")
	}
	return data, nil
}

// DecodeModel parses a persisted model and validates it.
func DecodeModel(data []byte) (*Model, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "cluster: unmarshal model")
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, eris.Errorf("cluster: unsupported schema version %d (want %d)", doc.SchemaVersion, SchemaVersion)
	}

	m := &Model{
		Version:   doc.SchemaVersion,
		ID:        doc.ID,
		K:         doc.K,
		Seed:      doc.Seed,
		Centroids: doc.Centroids,
		Levels:    doc.Levels,
		Inertia:   doc.Inertia,
		Samples:   doc.Samples,
		FittedAt:  doc.FittedAt,
	}
	if err := m.Validate(); err != nil {
		return nil, eris.Wrap(err, "cluster: decode")
	}
	return m, nil
}
