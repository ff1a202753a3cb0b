package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"surveycore/internal/models"
)

func TestClassifyGap_Bands(t *testing.T) {
	th := DefaultGapThresholds
	assert.Equal(t, SeverityLow, ClassifyGap(4.9, th))
	assert.Equal(t, SeverityMedium, ClassifyGap(5.0, th))
	assert.Equal(t, SeverityMedium, ClassifyGap(-9.9, th))
	assert.Equal(t, SeverityHigh, ClassifyGap(10.0, th))
	assert.Equal(t, SeverityHigh, ClassifyGap(-12, th))
	assert.Equal(t, SeverityLow, ClassifyGap(0, th))
}

func TestClassifyGap_CustomThresholds(t *testing.T) {
	th := GapThresholds{Medium: 2, High: 3}
	assert.Equal(t, SeverityMedium, ClassifyGap(2, th))
	assert.Equal(t, SeverityHigh, ClassifyGap(3, th))
}

func TestAnalyzeGaps_SortedByMagnitude(t *testing.T) {
	gaps := AnalyzeGaps([]GapInput{
		{Category: "market", Current: 30, Preferred: 20},
		{Category: "clan", Current: 20, Preferred: 35},
		{Category: "hierarchy", Current: 25, Preferred: 25},
		{Category: "adhocracy", Current: 25, Preferred: 15},
	}, DefaultGapThresholds)

	require.Len(t, gaps, 4)
	assert.Equal(t, "clan", gaps[0].Category)
	assert.Equal(t, 15.0, gaps[0].Gap)
	assert.Equal(t, SeverityHigh, gaps[0].Severity)
	assert.Equal(t, DirectionIncrease, gaps[0].Direction)

	// equal magnitude falls back to category order
	assert.Equal(t, "adhocracy", gaps[1].Category)
	assert.Equal(t, "market", gaps[2].Category)
	assert.Equal(t, DirectionDecrease, gaps[2].Direction)

	assert.Equal(t, "hierarchy", gaps[3].Category)
	assert.Equal(t, DirectionMaintain, gaps[3].Direction)
}

func TestAnalyzeGaps_RoundsToOneDecimal(t *testing.T) {
	gaps := AnalyzeGaps([]GapInput{{Category: "x", Current: 23.3, Preferred: 28.3}}, DefaultGapThresholds)
	require.Len(t, gaps, 1)
	assert.Equal(t, 5.0, gaps[0].Gap)
	assert.Equal(t, SeverityMedium, gaps[0].Severity)
}

func TestCultureGaps(t *testing.T) {
	p := AggregateIpsative([]models.Submission{
		submission("r1",
			ipsative("dominant", models.PerspectiveCurrent, 10, 20, 30, 40),
			ipsative("dominant", models.PerspectivePreferred, 40, 30, 20, 10),
		),
	})

	gaps := CultureGaps(p, DefaultGapThresholds)
	require.Len(t, gaps, 4)
	assert.Equal(t, "clan", gaps[0].Category)
	assert.Equal(t, 30.0, gaps[0].Gap)
	assert.Equal(t, "hierarchy", gaps[1].Category)

	dims := DimensionGaps(p, DefaultGapThresholds)
	require.Len(t, dims, 4)
	assert.Equal(t, "dominant/clan", dims[0].Category)

	assert.Nil(t, CultureGaps(nil, DefaultGapThresholds))
}
