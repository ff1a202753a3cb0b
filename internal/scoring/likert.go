package scoring

import (
	"sort"
	"surveycore/internal/models"
)

type GroupStats struct {
	ID string `json:"id"`
	Descriptive
}

type LikertSummary struct {
	Module        models.ModuleCode `json:"module"`
	Respondents   int               `json:"respondents"`
	OverallMean   float64           `json:"overallMean"`
	Dimensions    []GroupStats      `json:"dimensions"`
	Subdimensions []GroupStats      `json:"subdimensions"`
}

// AggregateLikert pools the scores of one module across submissions,
// reverse-keyed items already flipped. Returns nil when nobody answered.
func AggregateLikert(subs []models.Submission, module models.ModuleCode) *LikertSummary {
	byDimension := map[string][]float64{}
	bySubdimension := map[string][]float64{}
	var all []float64
	respondents := 0

	for _, sub := range subs {
		answered := false
		for _, a := range sub.Answers {
			if a.ModuleCode != module {
				continue
			}
			p, ok := a.Payload.(models.LikertPayload)
			if !ok {
				continue
			}
			answered = true
			v := float64(p.Score())
			all = append(all, v)
			if p.Dimension != "" {
				byDimension[p.Dimension] = append(byDimension[p.Dimension], v)
			}
			if p.Subdimension != "" {
				bySubdimension[p.Subdimension] = append(bySubdimension[p.Subdimension], v)
			}
		}
		if answered {
			respondents++
		}
	}
	if respondents == 0 {
		return nil
	}

	return &LikertSummary{
		Module:        module,
		Respondents:   respondents,
		OverallMean:   Round(mean(all), 2),
		Dimensions:    describeGroups(byDimension),
		Subdimensions: describeGroups(bySubdimension),
	}
}

func describeGroups(groups map[string][]float64) []GroupStats {
	out := make([]GroupStats, 0, len(groups))
	for id, values := range groups {
		out = append(out, GroupStats{ID: id, Descriptive: Describe(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
