package scoring

import (
	"math"
	"sort"
	"surveycore/internal/models"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionMaintain Direction = "maintain"
)

// GapThresholds are the lower bounds of the medium and high bands.
type GapThresholds struct {
	Medium float64
	High   float64
}

var DefaultGapThresholds = GapThresholds{Medium: 5, High: 10}

type GapInput struct {
	Category  string
	Current   float64
	Preferred float64
}

type Gap struct {
	Category  string    `json:"category"`
	Current   float64   `json:"current"`
	Preferred float64   `json:"preferred"`
	Gap       float64   `json:"gap"`
	Severity  Severity  `json:"severity"`
	Direction Direction `json:"direction"`
}

func ClassifyGap(gap float64, th GapThresholds) Severity {
	abs := math.Abs(gap)
	switch {
	case abs < th.Medium:
		return SeverityLow
	case abs < th.High:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// AnalyzeGaps computes preferred minus current per category, largest
// absolute gap first and ties by category.
func AnalyzeGaps(inputs []GapInput, th GapThresholds) []Gap {
	out := make([]Gap, 0, len(inputs))
	for _, in := range inputs {
		g := Round(in.Preferred-in.Current, 1)
		dir := DirectionMaintain
		switch {
		case g > 0:
			dir = DirectionIncrease
		case g < 0:
			dir = DirectionDecrease
		}
		out = append(out, Gap{
			Category:  in.Category,
			Current:   in.Current,
			Preferred: in.Preferred,
			Gap:       g,
			Severity:  ClassifyGap(g, th),
			Direction: dir,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Gap), math.Abs(out[j].Gap)
		if ai != aj {
			return ai > aj
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CultureGaps runs AnalyzeGaps over the four culture types of a profile.
func CultureGaps(p *CultureProfile, th GapThresholds) []Gap {
	if p == nil {
		return nil
	}
	inputs := make([]GapInput, 0, len(p.Scores))
	for _, s := range p.Scores {
		inputs = append(inputs, GapInput{Category: s.Culture, Current: s.Current, Preferred: s.Preferred})
	}
	return AnalyzeGaps(inputs, th)
}

// DimensionGaps is CultureGaps for every dimension and culture pair that
// has both perspectives.
func DimensionGaps(p *CultureProfile, th GapThresholds) []Gap {
	if p == nil {
		return nil
	}
	var inputs []GapInput
	for _, d := range p.Dimensions {
		if d.CurrentN == 0 || d.PreferredN == 0 {
			continue
		}
		for _, alt := range models.Alternatives {
			inputs = append(inputs, GapInput{
				Category:  d.Dimension + "/" + Cultures[alt],
				Current:   d.Current[alt],
				Preferred: d.Preferred[alt],
			})
		}
	}
	return AnalyzeGaps(inputs, th)
}
