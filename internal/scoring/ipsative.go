package scoring

import (
	"sort"
	"surveycore/internal/models"
)

// Cultures names the culture type each ipsative alternative stands for.
var Cultures = map[models.Alternative]string{
	models.AlternativeA: "clan",
	models.AlternativeB: "adhocracy",
	models.AlternativeC: "market",
	models.AlternativeD: "hierarchy",
}

// Allocation holds one mean per alternative.
type Allocation map[models.Alternative]float64

type CultureScore struct {
	Alternative models.Alternative `json:"alternative"`
	Culture     string             `json:"culture"`
	Current     float64            `json:"current"`
	Preferred   float64            `json:"preferred"`
}

type DimensionProfile struct {
	Dimension string     `json:"dimension"`
	Current   Allocation `json:"current"`
	Preferred Allocation `json:"preferred"`
	// Answers per perspective behind the means.
	CurrentN   int `json:"currentN"`
	PreferredN int `json:"preferredN"`
}

type Dominant struct {
	Current   models.Alternative `json:"current"`
	Preferred models.Alternative `json:"preferred"`
}

type CultureProfile struct {
	Respondents int                `json:"respondents"`
	Scores      []CultureScore     `json:"scores"`
	Dominant    Dominant           `json:"dominant"`
	Dimensions  []DimensionProfile `json:"dimensions"`
}

type allocationSum struct {
	points map[models.Alternative]float64
	n      int
}

func (s *allocationSum) add(p models.IpsativePayload) {
	if s.points == nil {
		s.points = make(map[models.Alternative]float64, len(models.Alternatives))
	}
	for _, alt := range models.Alternatives {
		s.points[alt] += float64(p.Points(alt))
	}
	s.n++
}

func (s *allocationSum) mean() Allocation {
	out := make(Allocation, len(models.Alternatives))
	for _, alt := range models.Alternatives {
		out[alt] = 0
		if s.n > 0 {
			out[alt] = s.points[alt] / float64(s.n)
		}
	}
	return out
}

func roundAllocation(a Allocation) Allocation {
	for alt, v := range a {
		a[alt] = Round(v, 1)
	}
	return a
}

// AggregateIpsative builds the culture profile of every submission that
// answered ipsative questions. Per dimension, each alternative is the mean
// allocation per perspective. The overall score first averages a
// respondent's dimensions, then averages those respondents who answered
// the perspective at all. Returns nil when nobody answered.
func AggregateIpsative(subs []models.Submission) *CultureProfile {
	type key struct {
		dimension   string
		perspective models.Perspective
	}
	byDimension := make(map[key]*allocationSum)
	overall := map[models.Perspective][]Allocation{}
	respondents := 0

	for _, sub := range subs {
		own := map[models.Perspective]*allocationSum{}
		for _, a := range sub.Answers {
			p, ok := a.Payload.(models.IpsativePayload)
			if !ok {
				continue
			}
			k := key{p.Dimension, p.Perspective}
			if byDimension[k] == nil {
				byDimension[k] = &allocationSum{}
			}
			byDimension[k].add(p)
			if own[p.Perspective] == nil {
				own[p.Perspective] = &allocationSum{}
			}
			own[p.Perspective].add(p)
		}
		if len(own) == 0 {
			continue
		}
		respondents++
		for perspective, sum := range own {
			overall[perspective] = append(overall[perspective], sum.mean())
		}
	}
	if respondents == 0 {
		return nil
	}

	profile := &CultureProfile{Respondents: respondents}
	current := meanOfAllocations(overall[models.PerspectiveCurrent])
	preferred := meanOfAllocations(overall[models.PerspectivePreferred])
	for _, alt := range models.Alternatives {
		profile.Scores = append(profile.Scores, CultureScore{
			Alternative: alt,
			Culture:     Cultures[alt],
			Current:     current[alt],
			Preferred:   preferred[alt],
		})
	}
	profile.Dominant = Dominant{
		Current:   dominant(current),
		Preferred: dominant(preferred),
	}

	dims := make(map[string]*DimensionProfile)
	for k, sum := range byDimension {
		d, ok := dims[k.dimension]
		if !ok {
			d = &DimensionProfile{Dimension: k.dimension}
			dims[k.dimension] = d
		}
		switch k.perspective {
		case models.PerspectiveCurrent:
			d.Current, d.CurrentN = roundAllocation(sum.mean()), sum.n
		case models.PerspectivePreferred:
			d.Preferred, d.PreferredN = roundAllocation(sum.mean()), sum.n
		}
	}
	for _, d := range dims {
		profile.Dimensions = append(profile.Dimensions, *d)
	}
	sort.Slice(profile.Dimensions, func(i, j int) bool {
		return profile.Dimensions[i].Dimension < profile.Dimensions[j].Dimension
	})
	return profile
}

func meanOfAllocations(allocs []Allocation) Allocation {
	out := make(Allocation, len(models.Alternatives))
	for _, alt := range models.Alternatives {
		values := make([]float64, 0, len(allocs))
		for _, a := range allocs {
			values = append(values, a[alt])
		}
		out[alt] = Round(mean(values), 1)
	}
	return out
}

// dominant picks the highest alternative; ties go to the earlier letter.
func dominant(a Allocation) models.Alternative {
	best := models.Alternatives[0]
	for _, alt := range models.Alternatives[1:] {
		if a[alt] > a[best] {
			best = alt
		}
	}
	return best
}
