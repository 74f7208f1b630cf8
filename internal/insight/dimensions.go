package insight

import (
	"strings"

	"secureview/internal/model"
)

// Level aliases the model type so callers of this package need not import model for it.
type Level = model.Level

const (
	LevelPositive = model.LevelPositive
	LevelNeutral  = model.LevelNeutral
	LevelNegative = model.LevelNegative
)

// Dimension is one of the closed set of feedback axes that have curated guidance.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	DimensionTeamwork
	DimensionCommunication
	DimensionSupport
	DimensionEfficiency
	DimensionAdaptability
	DimensionPerformance
)

var dimensionNames = map[Dimension]string{
	DimensionTeamwork:      "teamwork",
	DimensionCommunication: "communication",
	DimensionSupport:       "support",
	DimensionEfficiency:    "efficiency",
	DimensionAdaptability:  "adaptability",
	DimensionPerformance:   "performance",
}

// AllDimensions lists the known dimensions in display order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionTeamwork,
		DimensionCommunication,
		DimensionSupport,
		DimensionEfficiency,
		DimensionAdaptability,
		DimensionPerformance,
	}
}

func (d Dimension) String() string {
	if name, ok := dimensionNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDimension resolves a dimension name, case-insensitively.
// It returns DimensionUnknown, false for names outside the curated set.
func ParseDimension(name string) (Dimension, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d, dn := range dimensionNames {
		if dn == n {
			return d, true
		}
	}
	return DimensionUnknown, false
}

// Guidance is the curated text for one dimension at one level.
type Guidance struct {
	Themes         []string
	Recommendation string
}

type dimensionDetails struct {
	positive, neutral, negative Guidance
}

func (d dimensionDetails) at(level Level) Guidance {
	switch level {
	case LevelPositive:
		return d.positive
	case LevelNegative:
		return d.negative
	default:
		return d.neutral
	}
}

var details = map[Dimension]dimensionDetails{
	DimensionTeamwork: {
		positive: Guidance{
			Themes:         []string{"strong collaboration", "peer support", "shared goals", "team cohesion"},
			Recommendation: "Keep fostering team rituals like standups and retrospectives to maintain this momentum.",
		},
		neutral: Guidance{
			Themes:         []string{"inconsistent cooperation", "mixed team dynamics", "variable collaboration"},
			Recommendation: "Consider structured team activities or pair programming sessions to strengthen collaboration.",
		},
		negative: Guidance{
			Themes:         []string{"silos", "lack of cooperation", "poor coordination", "isolation"},
			Recommendation: "Prioritize team-building initiatives and address any interpersonal conflicts directly.",
		},
	},
	DimensionCommunication: {
		positive: Guidance{
			Themes:         []string{"clear messaging", "open dialogue", "transparent updates", "active listening"},
			Recommendation: "Continue regular all-hands and async updates; the team values the clarity.",
		},
		neutral: Guidance{
			Themes:         []string{"occasional miscommunication", "variable clarity", "inconsistent updates"},
			Recommendation: "Introduce structured communication channels and clearer documentation practices.",
		},
		negative: Guidance{
			Themes:         []string{"communication gaps", "unclear direction", "lack of transparency", "information silos"},
			Recommendation: "Establish a regular cadence of team updates and encourage open-door discussions.",
		},
	},
	DimensionSupport: {
		positive: Guidance{
			Themes:         []string{"strong mentorship", "management availability", "peer assistance", "psychological safety"},
			Recommendation: "Employees feel supported; keep 1:1 check-ins regular and maintain resource availability.",
		},
		neutral: Guidance{
			Themes:         []string{"mixed support levels", "inconsistent availability", "variable mentorship"},
			Recommendation: "Increase frequency of 1:1s and ensure employees know where to seek help.",
		},
		negative: Guidance{
			Themes:         []string{"feeling overlooked", "lack of guidance", "insufficient resources", "burnout signals"},
			Recommendation: "Urgently review workload distribution and establish clear support structures and escalation paths.",
		},
	},
	DimensionEfficiency: {
		positive: Guidance{
			Themes:         []string{"streamlined workflows", "productive use of time", "clear processes", "minimal blockers"},
			Recommendation: "Workflows are running smoothly; document current processes to help onboard new members.",
		},
		neutral: Guidance{
			Themes:         []string{"some process friction", "variable productivity", "occasional bottlenecks"},
			Recommendation: "Audit current workflows to identify and remove recurring bottlenecks.",
		},
		negative: Guidance{
			Themes:         []string{"process inefficiencies", "wasted time", "unclear ownership", "frequent blockers"},
			Recommendation: "Conduct a process review session with the team to identify and eliminate key inefficiencies.",
		},
	},
	DimensionAdaptability: {
		positive: Guidance{
			Themes:         []string{"embracing change", "resilience", "flexible mindset", "quick learning"},
			Recommendation: "The team adapts well; leverage this by gradually introducing new tools or processes.",
		},
		neutral: Guidance{
			Themes:         []string{"mixed reactions to change", "variable flexibility", "cautious adaptation"},
			Recommendation: "Communicate the reasoning behind changes more clearly to ease adaptation.",
		},
		negative: Guidance{
			Themes:         []string{"resistance to change", "change fatigue", "rigid processes", "low morale during transitions"},
			Recommendation: "Slow down the pace of change, involve the team in decisions, and provide more transition support.",
		},
	},
	DimensionPerformance: {
		positive: Guidance{
			Themes:         []string{"meeting expectations", "high output quality", "goal achievement", "strong accountability"},
			Recommendation: "Performance is strong; consider recognizing top contributors to sustain motivation.",
		},
		neutral: Guidance{
			Themes:         []string{"inconsistent output", "variable quality", "mixed goal completion"},
			Recommendation: "Clarify performance expectations and set measurable short-term goals with the team.",
		},
		negative: Guidance{
			Themes:         []string{"performance concerns", "missed targets", "low motivation", "unclear expectations"},
			Recommendation: "Review role clarity, set achievable milestones, and provide targeted coaching where needed.",
		},
	},
}

// GuidanceFor returns the curated themes and recommendation for d at level.
func GuidanceFor(d Dimension, level Level) (Guidance, bool) {
	dd, ok := details[d]
	if !ok {
		return Guidance{}, false
	}
	return dd.at(level), true
}
