package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"surveycore/internal/models"
)

func msai(question, subdimension string, value int) models.Answer {
	return likertAnswer(models.ModuleMSAI, question, "leadership", subdimension, value)
}

func raters(prefix string, values ...[]int) []models.Submission {
	var subs []models.Submission
	for i, v := range values {
		var answers []models.Answer
		for j, x := range v {
			answers = append(answers, msai(fmt.Sprintf("q%d", j), fmt.Sprintf("sub%d", j), x))
		}
		subs = append(subs, submission(fmt.Sprintf("%s-%d", prefix, i), answers...))
	}
	return subs
}

func TestScorePerspective(t *testing.T) {
	ps, ok := ScorePerspective(models.RaterPeer, raters("peer", []int{4, 2}, []int{3, 2}), models.ModuleMSAI)
	require.True(t, ok)
	assert.Equal(t, 2, ps.Raters)
	assert.Equal(t, 2.75, ps.OverallMean)
	require.Len(t, ps.Subdimensions, 2)
	assert.Equal(t, SubdimensionMean{ID: "sub0", Mean: 3.5, Count: 2}, ps.Subdimensions[0])

	_, ok = ScorePerspective(models.RaterPeer, nil, models.ModuleMSAI)
	assert.False(t, ok)
}

func TestAnalyzeMultiRater_BlindSpot(t *testing.T) {
	scores := []PerspectiveScores{
		{Perspective: models.RaterPeer, Raters: 2, Subdimensions: []SubdimensionMean{{ID: "X", Mean: 3.8}}},
		{Perspective: models.RaterSelf, Raters: 1, Subdimensions: []SubdimensionMean{{ID: "X", Mean: 4.5}}},
		{Perspective: models.RaterSubordinate, Raters: 3, Subdimensions: []SubdimensionMean{{ID: "X", Mean: 3.6}}},
	}

	r := AnalyzeMultiRater(scores, DefaultMultiRaterOptions)

	require.Len(t, r.BlindSpots, 1)
	assert.Equal(t, BlindSpot{Subdimension: "X", Self: 4.5, Others: 3.7, Gap: 0.8}, r.BlindSpots[0])

	assert.Equal(t, models.RaterSelf, r.Perspectives[0].Perspective)
	assert.Equal(t, models.RaterSubordinate, r.Perspectives[1].Perspective)
	assert.Equal(t, models.RaterPeer, r.Perspectives[2].Perspective)

	require.Len(t, r.Strengths, 1)
	assert.Equal(t, 3.7, r.Strengths[0].Mean)
}

func TestAnalyzeMultiRater_GapBelowThresholdIsNotReported(t *testing.T) {
	r := AnalyzeMultiRater([]PerspectiveScores{
		{Perspective: models.RaterSelf, Subdimensions: []SubdimensionMean{{ID: "X", Mean: 4.0}, {ID: "Y", Mean: 2.0}}},
		{Perspective: models.RaterPeer, Subdimensions: []SubdimensionMean{{ID: "X", Mean: 3.6}, {ID: "Y", Mean: 3.0}}},
	}, DefaultMultiRaterOptions)

	require.Len(t, r.BlindSpots, 1)
	assert.Equal(t, "Y", r.BlindSpots[0].Subdimension)
	assert.Equal(t, -1.0, r.BlindSpots[0].Gap)
}

func TestAnalyzeMultiRater_BlindSpotsSortedByMagnitude(t *testing.T) {
	r := AnalyzeMultiRater([]PerspectiveScores{
		{Perspective: models.RaterSelf, Subdimensions: []SubdimensionMean{{ID: "A", Mean: 4}, {ID: "B", Mean: 1}, {ID: "C", Mean: 5}}},
		{Perspective: models.RaterSuperior, Subdimensions: []SubdimensionMean{{ID: "A", Mean: 3}, {ID: "B", Mean: 3}, {ID: "C", Mean: 4}}},
	}, DefaultMultiRaterOptions)

	require.Len(t, r.BlindSpots, 3)
	assert.Equal(t, "B", r.BlindSpots[0].Subdimension)
	assert.Equal(t, "A", r.BlindSpots[1].Subdimension)
	assert.Equal(t, "C", r.BlindSpots[2].Subdimension)
}

func TestAnalyzeMultiRater_Rankings(t *testing.T) {
	var self, peer []SubdimensionMean
	for i, m := range []float64{4.1, 3.2, 4.8, 2.5, 3.9, 4.4, 2.9} {
		id := fmt.Sprintf("s%d", i)
		peer = append(peer, SubdimensionMean{ID: id, Mean: m})
		self = append(self, SubdimensionMean{ID: id, Mean: m})
	}
	r := AnalyzeMultiRater([]PerspectiveScores{
		{Perspective: models.RaterSelf, Subdimensions: self},
		{Perspective: models.RaterPeer, Subdimensions: peer},
	}, MultiRaterOptions{BlindSpotThreshold: 0.5, RankingSize: 5})

	assert.Empty(t, r.BlindSpots)
	require.Len(t, r.Strengths, 5)
	assert.Equal(t, "s2", r.Strengths[0].ID)
	assert.Equal(t, "s5", r.Strengths[1].ID)
	require.Len(t, r.DevelopmentAreas, 5)
	assert.Equal(t, "s3", r.DevelopmentAreas[0].ID)
	assert.Equal(t, "s6", r.DevelopmentAreas[1].ID)
}

func TestAnalyzeMultiRater_SelfOnly(t *testing.T) {
	r := AnalyzeMultiRater([]PerspectiveScores{
		{Perspective: models.RaterSelf, Subdimensions: []SubdimensionMean{{ID: "X", Mean: 4}}},
	}, DefaultMultiRaterOptions)

	assert.Empty(t, r.BlindSpots)
	assert.Empty(t, r.Strengths)
	assert.Empty(t, r.DevelopmentAreas)
}

func TestAnalyzeMultiRater_EndToEnd(t *testing.T) {
	var scores []PerspectiveScores
	for p, subs := range map[models.RaterPerspective][]models.Submission{
		models.RaterSelf:        raters("self", []int{5, 4}),
		models.RaterPeer:        raters("peer", []int{4, 3}, []int{4, 4}),
		models.RaterSubordinate: raters("sub", []int{3, 4}, []int{4, 3}, []int{2, 4}),
	} {
		ps, ok := ScorePerspective(p, subs, models.ModuleMSAI)
		require.True(t, ok)
		scores = append(scores, ps)
	}

	r := AnalyzeMultiRater(scores, DefaultMultiRaterOptions)

	// sub0: self 5, peer 4, subordinate 3 -> others 3.5, gap 1.5
	require.Len(t, r.BlindSpots, 1)
	assert.Equal(t, "sub0", r.BlindSpots[0].Subdimension)
	assert.Equal(t, 3.5, r.BlindSpots[0].Others)
	assert.Equal(t, 1.5, r.BlindSpots[0].Gap)
}
