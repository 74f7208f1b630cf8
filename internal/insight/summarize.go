package insight

import (
	"sort"

	"secureview/internal/model"
)

// DefaultTopDrivers is how many dimensions Report lists as top drivers.
const DefaultTopDrivers = 3

// Summarize partitions insights into strengths (>= 6.5) and improvements (< 5).
// Dimensions in between appear in neither list. Strengths are ordered best first,
// improvements worst first, ties by name.
func Summarize(insights map[string]model.NormalizedInsight) model.InsightSummary {
	var strengths, improvements []model.NormalizedInsight
	for name, ni := range insights {
		ni.Dimension = name
		switch {
		case ni.DisplayScore >= PositiveThreshold:
			strengths = append(strengths, ni)
		case ni.DisplayScore < NegativeThreshold:
			improvements = append(improvements, ni)
		}
	}

	sort.Slice(strengths, func(i, j int) bool {
		if strengths[i].DisplayScore == strengths[j].DisplayScore {
			return strengths[i].Dimension < strengths[j].Dimension
		}
		return strengths[i].DisplayScore > strengths[j].DisplayScore
	})
	sort.Slice(improvements, func(i, j int) bool {
		if improvements[i].DisplayScore == improvements[j].DisplayScore {
			return improvements[i].Dimension < improvements[j].Dimension
		}
		return improvements[i].DisplayScore < improvements[j].DisplayScore
	})

	return model.InsightSummary{
		Strengths:    names(strengths),
		Improvements: names(improvements),
	}
}

// Report classifies and summarizes a department payload.
func Report(src *model.DepartmentInsights) *model.InsightReport {
	insights := ClassifyAll(src.Dimensions)

	byName := make(map[string]model.NormalizedInsight, len(insights))
	for _, ni := range insights {
		byName[ni.Dimension] = ni
	}
	summary := Summarize(byName)
	summary.TopDrivers = TopDrivers(src.Dimensions, DefaultTopDrivers)

	return &model.InsightReport{
		Department:   src.Department,
		NumEmployees: src.NumEmployees,
		Insights:     insights,
		Summary:      summary,
	}
}

func names(in []model.NormalizedInsight) []string {
	out := make([]string, 0, len(in))
	for _, ni := range in {
		out = append(out, ni.Dimension)
	}
	return out
}
