package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"surveycore/internal/models"
)

func TestBuildReport(t *testing.T) {
	subs := []models.Submission{
		submission("r1",
			ipsative("dominant", models.PerspectiveCurrent, 40, 20, 20, 20),
			ipsative("dominant", models.PerspectivePreferred, 25, 25, 25, 25),
			likertAnswer(models.ModuleQCI, "q1", "quality", "", 4),
			likertAnswer(models.ModuleQCI, "q2", "quality", "", 5),
			likertAnswer(models.ModuleMSAI, "m1", "leadership", "vision", 5),
		),
		submission("r2",
			ipsative("dominant", models.PerspectiveCurrent, 50, 10, 10, 30),
			likertAnswer(models.ModuleQCI, "q1", "quality", "", 2),
			likertAnswer(models.ModuleQCI, "q2", "quality", "", 3),
		),
	}
	subs[0].Response.Demographics = models.Demographics{AgeRange: "26-35", SeniorityRange: "3-5"}
	subs[1].Response.Demographics = models.Demographics{AgeRange: "26-35", StakeholderGroup: "ACADEMIC"}

	r := BuildReport(subs, ReportOptions{})

	assert.Equal(t, 2, r.Respondents)
	require.NotNil(t, r.Culture)
	assert.Equal(t, 45.0, r.Culture.Scores[0].Current)
	require.Len(t, r.CultureGaps, 4)
	assert.Equal(t, "clan", r.CultureGaps[0].Category)
	assert.Equal(t, -20.0, r.CultureGaps[0].Gap)
	assert.Equal(t, SeverityHigh, r.CultureGaps[0].Severity)

	require.Len(t, r.Likert, 1, "multi-rater answers stay out of pooled reports")
	assert.Equal(t, models.ModuleQCI, r.Likert[0].Module)
	require.NotEmpty(t, r.Reliability)
	assert.Equal(t, ReliabilityOK, r.Reliability[0].Status)

	assert.Equal(t, 2, r.Demographics.AgeRanges["26-35"])
	assert.Equal(t, 1, r.Demographics.SeniorityRanges["3-5"])
	assert.Equal(t, 1, r.Demographics.StakeholderGroups["ACADEMIC"])
}

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil, ReportOptions{})
	assert.Zero(t, r.Respondents)
	assert.Nil(t, r.Culture)
	assert.Empty(t, r.Likert)
}
