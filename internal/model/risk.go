package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// RiskLevel is the ordinal risk classification assigned by clustering.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels lists every level in ascending order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// Score returns the ordinal score of the level (Low=0, Medium=1, High=2).
// Unknown levels score -1.
func (l RiskLevel) Score() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// Valid reports whether l is one of the known levels.
func (l RiskLevel) Valid() bool {
	return l.Score() >= 0
}

// RiskLevelFromScore maps an ordinal score back to its level.
func RiskLevelFromScore(score int) (RiskLevel, error) {
	if score < 0 || score >= len(RiskLevels) {
		return "", eris.Errorf("model: risk score %d out of range", score)
	}
	return RiskLevels[score], nil
}

// ParseRiskLevel parses a level name case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, l := range RiskLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", eris.Errorf("model: unknown risk level %q", s)
}
