package scoring

import (
	"fmt"
	"surveycore/internal/models"
)

func ipsative(dimension string, perspective models.Perspective, a, b, c, d int) models.Answer {
	return models.Answer{
		ModuleCode: models.ModuleOCAI,
		QuestionID: fmt.Sprintf("%s-%s", dimension, perspective),
		Payload: models.IpsativePayload{
			Dimension:   dimension,
			Perspective: perspective,
			Distribution: map[models.Alternative]int{
				models.AlternativeA: a,
				models.AlternativeB: b,
				models.AlternativeC: c,
				models.AlternativeD: d,
			},
		},
	}
}

func likertAnswer(module models.ModuleCode, question, dimension, subdimension string, value int) models.Answer {
	spec, _ := models.LookupModule(module)
	return models.Answer{
		ModuleCode: module,
		QuestionID: question,
		Payload: models.LikertPayload{
			Dimension:    dimension,
			Subdimension: subdimension,
			Value:        value,
			ScaleMin:     spec.ScaleMin,
			ScaleMax:     spec.ScaleMax,
		},
	}
}

func submission(id string, answers ...models.Answer) models.Submission {
	return models.Submission{
		Response: models.Response{ID: id, CampaignID: "c-1", Status: models.StatusCompleted},
		Answers:  answers,
	}
}
