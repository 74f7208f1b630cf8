// Package insight turns raw per-dimension sentiment into display scores, levels and
// strength/improvement summaries. Everything here is pure and safe for concurrent use.
package insight

import "math"

const (
	// MinRaw and MaxRaw bound the nominal raw score range.
	MinRaw = -0.1
	MaxRaw = 0.1

	MinDisplay = 1.0
	MaxDisplay = 10.0

	// PositiveThreshold and NegativeThreshold split display scores into levels.
	// [NegativeThreshold, PositiveThreshold) is neutral.
	PositiveThreshold = 6.5
	NegativeThreshold = 5.0
)

// Normalize maps a raw score linearly onto [1, 10], clamps, and rounds to one decimal.
// Raw 0 maps to 5.5. Out-of-range and non-finite inputs are clamped, never rejected.
func Normalize(raw float64) float64 {
	if math.IsNaN(raw) {
		return MinDisplay
	}
	normalized := ((raw-MinRaw)/(MaxRaw-MinRaw))*9 + 1
	clamped := math.Min(MaxDisplay, math.Max(MinDisplay, normalized))
	return math.Round(clamped*10) / 10
}

// ScoreLabel returns the label band for a display score. First match wins, top-down.
func ScoreLabel(score float64) string {
	switch {
	case score >= 8:
		return "Strong"
	case score >= 6.5:
		return "Good"
	case score >= 5:
		return "Neutral"
	case score >= 3.5:
		return "Concerning"
	default:
		return "Needs Attention"
	}
}

// LevelFor buckets a display score.
func LevelFor(displayScore float64) Level {
	switch {
	case displayScore >= PositiveThreshold:
		return LevelPositive
	case displayScore < NegativeThreshold:
		return LevelNegative
	default:
		return LevelNeutral
	}
}
