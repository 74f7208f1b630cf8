package model

import "time"

// Confidence is the upstream confidence attached to a dimension score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Level is the qualitative bucket of a normalized score.
type Level string

const (
	LevelPositive Level = "positive"
	LevelNeutral  Level = "neutral"
	LevelNegative Level = "negative"
)

// DimensionScore is the raw aggregate sentiment for one dimension, nominally in [-0.1, 0.1].
type DimensionScore struct {
	Raw         float64    `json:"score" bson:"score" yaml:"score"`
	Confidence  Confidence `json:"confidence" bson:"confidence" yaml:"confidence"`
	Explanation string     `json:"explanation" bson:"explanation" yaml:"explanation"`
}

// NormalizedInsight is a dimension score mapped onto the 1-10 display scale.
// It is derived on every read and never persisted.
type NormalizedInsight struct {
	Dimension      string     `json:"dimension"`
	DisplayScore   float64    `json:"displayScore"`
	Level          Level      `json:"level"`
	Label          string     `json:"label"`
	Confidence     Confidence `json:"confidence,omitempty"`
	Explanation    string     `json:"explanation,omitempty"`
	Themes         []string   `json:"themes"`
	Recommendation string     `json:"recommendation"`
}

// InsightSummary partitions dimensions into strengths and improvement areas.
// Dimensions scoring in the neutral middle appear in neither list.
type InsightSummary struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	TopDrivers   []string `json:"topDrivers"`
}

// DepartmentInsights is the externally supplied aggregate for a department.
type DepartmentInsights struct {
	Department   string                    `json:"department" bson:"_id" yaml:"department"`
	NumEmployees int                       `json:"numEmployees" bson:"numEmployees" yaml:"numEmployees"`
	Dimensions   map[string]DimensionScore `json:"dimensions" bson:"dimensions" yaml:"dimensions"`
	UpdatedAt    time.Time                 `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// InsightReport is what a manager sees for a department.
type InsightReport struct {
	Department   string              `json:"department"`
	NumEmployees int                 `json:"numEmployees"`
	Insights     []NormalizedInsight `json:"insights"`
	Summary      InsightSummary      `json:"summary"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}
