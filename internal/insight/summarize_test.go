package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"secureview/internal/model"
)

func TestSummarize_QuietMiddleInNeitherBucket(t *testing.T) {
	got := Summarize(map[string]model.NormalizedInsight{
		"teamwork":      {DisplayScore: 6.5},
		"support":       {DisplayScore: 5.5},
		"efficiency":    {DisplayScore: 5.0},
		"communication": {DisplayScore: 4.99},
		"performance":   {DisplayScore: 8.2},
		"adaptability":  {DisplayScore: 2.0},
	})

	assert.Equal(t, []string{"performance", "teamwork"}, got.Strengths)
	assert.Equal(t, []string{"adaptability", "communication"}, got.Improvements)
	assert.NotContains(t, got.Strengths, "support")
	assert.NotContains(t, got.Improvements, "support")
	assert.NotContains(t, got.Improvements, "efficiency")
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Empty(t, got.Strengths)
	assert.Empty(t, got.Improvements)
	assert.NotNil(t, got.Strengths)
}

func TestTopDrivers(t *testing.T) {
	got := TopDrivers(map[string]model.DimensionScore{
		"teamwork":      {Raw: 0.03},
		"support":       {Raw: 0.07},
		"efficiency":    {Raw: 0.03},
		"communication": {Raw: -0.01},
		"unknown":       {Raw: 0.5},
	}, 3)
	assert.Equal(t, []string{"support", "efficiency", "teamwork"}, got)
}

func TestReport(t *testing.T) {
	rep := Report(&model.DepartmentInsights{
		Department:   "engineering",
		NumEmployees: 12,
		Dimensions: map[string]model.DimensionScore{
			"teamwork":      {Raw: 0.06, Confidence: model.ConfidenceHigh},
			"communication": {Raw: 0.0, Confidence: model.ConfidenceMedium},
			"support":       {Raw: -0.06, Confidence: model.ConfidenceLow},
			"morale":        {Raw: 0.09},
		},
	})

	assert.Equal(t, "engineering", rep.Department)
	assert.Equal(t, 12, rep.NumEmployees)
	assert.Len(t, rep.Insights, 3)
	assert.Equal(t, []string{"teamwork"}, rep.Summary.Strengths)
	assert.Equal(t, []string{"support"}, rep.Summary.Improvements)
	assert.Equal(t, []string{"teamwork", "communication", "support"}, rep.Summary.TopDrivers)
}
