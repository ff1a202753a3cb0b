// Package gate withholds aggregates computed over groups small enough to
// identify a respondent.
package gate

import (
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
)

const (
	DefaultMinGroupSize = 5
	DefaultMin360Raters = 3
)

type GateInterface interface {
	// Check runs compute only when sampleSize reaches the minimum for the
	// scope kind; otherwise the result is flagged and carries no data.
	Check(scope models.Scope, sampleSize int, compute func() any) models.AggregateResult
	// CheckSiblings gates groups whose combined figure is published
	// elsewhere. Any one of them could be recovered by subtraction from
	// that figure and the others, so they are released together or not
	// at all.
	CheckSiblings(scopes []models.Scope, sampleSizes []int, compute func(i int) any) []models.AggregateResult
	Minimum(kind models.ScopeKind) int
}

type Gate struct {
	minGroup int
	min360   int
	metrics  providers.MetricsProviderInterface
}

func NewGate(conf *structures.Config, metrics providers.MetricsProviderInterface) GateInterface {
	g := &Gate{
		minGroup: conf.Anonymity.MinGroupSize,
		min360:   conf.Anonymity.Min360Raters,
		metrics:  metrics,
	}
	if g.minGroup <= 0 {
		g.minGroup = DefaultMinGroupSize
	}
	if g.min360 <= 0 {
		g.min360 = DefaultMin360Raters
	}
	return g
}

func (g *Gate) Minimum(kind models.ScopeKind) int {
	switch kind {
	case models.ScopeAssessment360, models.ScopeRaterGroup:
		return g.min360
	default:
		return g.minGroup
	}
}

func (g *Gate) Check(scope models.Scope, sampleSize int, compute func() any) models.AggregateResult {
	result := models.AggregateResult{
		Scope:           scope,
		SampleSize:      sampleSize,
		MinimumRequired: g.Minimum(scope.Kind),
	}
	if sampleSize < result.MinimumRequired {
		result.InsufficientGroup = true
		g.metrics.IncGateRejections(string(scope.Kind))
		return result
	}
	result.Data = compute()
	return result
}

func (g *Gate) CheckSiblings(scopes []models.Scope, sampleSizes []int, compute func(i int) any) []models.AggregateResult {
	release := true
	for i, scope := range scopes {
		if sampleSizes[i] < g.Minimum(scope.Kind) {
			release = false
			break
		}
	}

	results := make([]models.AggregateResult, len(scopes))
	for i, scope := range scopes {
		results[i] = models.AggregateResult{
			Scope:           scope,
			SampleSize:      sampleSizes[i],
			MinimumRequired: g.Minimum(scope.Kind),
		}
		if !release {
			results[i].InsufficientGroup = true
			g.metrics.IncGateRejections(string(scope.Kind))
			continue
		}
		results[i].Data = compute(i)
	}
	return results
}
