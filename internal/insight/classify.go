package insight

import (
	"sort"

	"secureview/internal/model"
)

// Classify normalizes score and attaches the level, label and curated guidance for the
// named dimension. ok is false for dimensions outside the curated set; callers skip them.
func Classify(dimension string, score model.DimensionScore) (model.NormalizedInsight, bool) {
	d, known := ParseDimension(dimension)
	if !known {
		return model.NormalizedInsight{}, false
	}

	display := Normalize(score.Raw)
	level := LevelFor(display)
	g, _ := GuidanceFor(d, level)

	themes := make([]string, len(g.Themes))
	copy(themes, g.Themes)

	return model.NormalizedInsight{
		Dimension:      d.String(),
		DisplayScore:   display,
		Level:          level,
		Label:          ScoreLabel(display),
		Confidence:     score.Confidence,
		Explanation:    score.Explanation,
		Themes:         themes,
		Recommendation: g.Recommendation,
	}, true
}

// ClassifyAll classifies every known dimension of scores, skipping unknown names.
// The result follows AllDimensions order, one entry per dimension.
func ClassifyAll(scores map[string]model.DimensionScore) []model.NormalizedInsight {
	byDim := Resolve(scores)
	out := make([]model.NormalizedInsight, 0, len(byDim))
	for _, d := range AllDimensions() {
		score, ok := byDim[d]
		if !ok {
			continue
		}
		ni, _ := Classify(d.String(), score)
		out = append(out, ni)
	}
	return out
}

// Resolve maps payload keys onto known dimensions, dropping unknown names. When several
// keys name the same dimension ("teamwork", "Teamwork") the canonical lowercase key wins,
// else the lexically smallest key.
func Resolve(scores map[string]model.DimensionScore) map[Dimension]model.DimensionScore {
	keys := make(map[Dimension]string, len(scores))
	for name := range scores {
		d, ok := ParseDimension(name)
		if !ok {
			continue
		}
		if prev, seen := keys[d]; seen && !preferKey(d, name, prev) {
			continue
		}
		keys[d] = name
	}
	out := make(map[Dimension]model.DimensionScore, len(keys))
	for d, name := range keys {
		out[d] = scores[name]
	}
	return out
}

func preferKey(d Dimension, candidate, current string) bool {
	canonical := d.String()
	if current == canonical {
		return false
	}
	if candidate == canonical {
		return true
	}
	return candidate < current
}

// TopDrivers returns up to n known dimensions with the highest raw score, ties by name.
func TopDrivers(scores map[string]model.DimensionScore, n int) []string {
	type entry struct {
		name string
		raw  float64
	}
	var entries []entry
	for d, score := range Resolve(scores) {
		entries = append(entries, entry{name: d.String(), raw: score.Raw})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].raw == entries[j].raw {
			return entries[i].name < entries[j].name
		}
		return entries[i].raw > entries[j].raw
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.name)
	}
	return out
}
