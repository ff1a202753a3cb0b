package scoring

import (
	"math"
	"sort"
	"surveycore/internal/models"
)

type MultiRaterOptions struct {
	BlindSpotThreshold float64
	RankingSize        int
}

var DefaultMultiRaterOptions = MultiRaterOptions{BlindSpotThreshold: 0.5, RankingSize: 5}

type SubdimensionMean struct {
	ID    string  `json:"id"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type PerspectiveScores struct {
	Perspective   models.RaterPerspective `json:"perspective"`
	Raters        int                     `json:"raters"`
	OverallMean   float64                 `json:"overallMean"`
	Subdimensions []SubdimensionMean      `json:"subdimensions"`
}

type BlindSpot struct {
	Subdimension string  `json:"subdimension"`
	Self         float64 `json:"self"`
	Others       float64 `json:"others"`
	Gap          float64 `json:"gap"`
}

type RankedSubdimension struct {
	ID   string  `json:"id"`
	Mean float64 `json:"mean"`
}

type MultiRaterReport struct {
	Perspectives     []PerspectiveScores  `json:"perspectives"`
	BlindSpots       []BlindSpot          `json:"blindSpots"`
	Strengths        []RankedSubdimension `json:"strengths"`
	DevelopmentAreas []RankedSubdimension `json:"developmentAreas"`
}

// Perspective returns the scores of p, if any rater of p answered.
func (r *MultiRaterReport) Perspective(p models.RaterPerspective) (PerspectiveScores, bool) {
	for _, ps := range r.Perspectives {
		if ps.Perspective == p {
			return ps, true
		}
	}
	return PerspectiveScores{}, false
}

// ScorePerspective computes subdimension means over every answer of the
// module given by raters of one perspective.
func ScorePerspective(perspective models.RaterPerspective, subs []models.Submission, module models.ModuleCode) (PerspectiveScores, bool) {
	values := map[string][]float64{}
	var all []float64
	raters := 0
	for _, sub := range subs {
		answered := false
		for _, a := range sub.Answers {
			p, ok := a.Payload.(models.LikertPayload)
			if !ok || a.ModuleCode != module {
				continue
			}
			answered = true
			v := float64(p.Score())
			values[p.Group()] = append(values[p.Group()], v)
			all = append(all, v)
		}
		if answered {
			raters++
		}
	}
	if raters == 0 {
		return PerspectiveScores{}, false
	}

	ps := PerspectiveScores{
		Perspective: perspective,
		Raters:      raters,
		OverallMean: Round(mean(all), 2),
	}
	for id, v := range values {
		ps.Subdimensions = append(ps.Subdimensions, SubdimensionMean{ID: id, Mean: Round(mean(v), 2), Count: len(v)})
	}
	sort.Slice(ps.Subdimensions, func(i, j int) bool { return ps.Subdimensions[i].ID < ps.Subdimensions[j].ID })
	return ps, true
}

// AnalyzeMultiRater compares the SELF rating with the unweighted mean of
// the non-self perspectives present. Rankings use that combined mean.
func AnalyzeMultiRater(scores []PerspectiveScores, opts MultiRaterOptions) *MultiRaterReport {
	if opts.RankingSize <= 0 {
		opts.RankingSize = DefaultMultiRaterOptions.RankingSize
	}
	sorted := append([]PerspectiveScores(nil), scores...)
	sort.Slice(sorted, func(i, j int) bool {
		return perspectiveOrder(sorted[i].Perspective) < perspectiveOrder(sorted[j].Perspective)
	})
	report := &MultiRaterReport{Perspectives: sorted}

	others := map[string][]float64{}
	for _, ps := range sorted {
		if ps.Perspective == models.RaterSelf {
			continue
		}
		for _, sd := range ps.Subdimensions {
			others[sd.ID] = append(others[sd.ID], sd.Mean)
		}
	}

	combined := make([]RankedSubdimension, 0, len(others))
	for id, means := range others {
		combined = append(combined, RankedSubdimension{ID: id, Mean: Round(mean(means), 2)})
	}

	if self, ok := report.Perspective(models.RaterSelf); ok {
		for _, sd := range self.Subdimensions {
			means, ok := others[sd.ID]
			if !ok {
				continue
			}
			othersMean := mean(means)
			gap := Round(sd.Mean-othersMean, 2)
			if math.Abs(gap) >= opts.BlindSpotThreshold {
				report.BlindSpots = append(report.BlindSpots, BlindSpot{
					Subdimension: sd.ID,
					Self:         sd.Mean,
					Others:       Round(othersMean, 2),
					Gap:          gap,
				})
			}
		}
		sort.SliceStable(report.BlindSpots, func(i, j int) bool {
			ai, aj := math.Abs(report.BlindSpots[i].Gap), math.Abs(report.BlindSpots[j].Gap)
			if ai != aj {
				return ai > aj
			}
			return report.BlindSpots[i].Subdimension < report.BlindSpots[j].Subdimension
		})
	}

	sort.Slice(combined, func(i, j int) bool {
		if combined[i].Mean != combined[j].Mean {
			return combined[i].Mean > combined[j].Mean
		}
		return combined[i].ID < combined[j].ID
	})
	report.Strengths = head(combined, opts.RankingSize)

	ascending := append([]RankedSubdimension(nil), combined...)
	sort.Slice(ascending, func(i, j int) bool {
		if ascending[i].Mean != ascending[j].Mean {
			return ascending[i].Mean < ascending[j].Mean
		}
		return ascending[i].ID < ascending[j].ID
	})
	report.DevelopmentAreas = head(ascending, opts.RankingSize)
	return report
}

func head(list []RankedSubdimension, n int) []RankedSubdimension {
	if len(list) > n {
		list = list[:n]
	}
	return append([]RankedSubdimension(nil), list...)
}

func perspectiveOrder(p models.RaterPerspective) int {
	for i, rp := range models.RaterPerspectives {
		if rp == p {
			return i
		}
	}
	return len(models.RaterPerspectives)
}
