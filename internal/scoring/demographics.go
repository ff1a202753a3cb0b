package scoring

import "surveycore/internal/models"

// Distribution counts respondents per demographic band. Unanswered bands
// are left out.
type Distribution struct {
	AgeRanges         map[string]int `json:"ageRanges"`
	SeniorityRanges   map[string]int `json:"seniorityRanges"`
	StakeholderGroups map[string]int `json:"stakeholderGroups"`
}

func Demographics(subs []models.Submission) Distribution {
	d := Distribution{
		AgeRanges:         map[string]int{},
		SeniorityRanges:   map[string]int{},
		StakeholderGroups: map[string]int{},
	}
	for _, sub := range subs {
		demo := sub.Response.Demographics
		if demo.AgeRange != "" {
			d.AgeRanges[demo.AgeRange]++
		}
		if demo.SeniorityRange != "" {
			d.SeniorityRanges[demo.SeniorityRange]++
		}
		if demo.StakeholderGroup != "" {
			d.StakeholderGroups[demo.StakeholderGroup]++
		}
	}
	return d
}
