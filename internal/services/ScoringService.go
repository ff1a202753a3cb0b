package services

import (
	"context"
	"errors"
	"fmt"
	"surveycore/internal/gate"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/scoring"
	"surveycore/internal/storage"
	"surveycore/internal/structures"
)

// Assessment360 is the multi-rater report of one assessed person. The
// combined others figures are gated on the total non-self raters; the
// per-perspective breakdown is released only when every non-self group
// reaches the minimum on its own.
type Assessment360 struct {
	AssessmentID     string                       `json:"assessmentId"`
	Self             *scoring.PerspectiveScores   `json:"self,omitempty"`
	Others           []models.AggregateResult     `json:"others"`
	BlindSpots       []scoring.BlindSpot          `json:"blindSpots"`
	Strengths        []scoring.RankedSubdimension `json:"strengths"`
	DevelopmentAreas []scoring.RankedSubdimension `json:"developmentAreas"`
}

type ScoringServiceInterface interface {
	CampaignReport(ctx context.Context, tenantID, campaignID string) (*models.AggregateResult, error)
	DepartmentReport(ctx context.Context, tenantID, campaignID, department string) (*models.AggregateResult, error)
	Assessment360Report(ctx context.Context, tenantID, campaignID, assessmentID string) (*models.AggregateResult, error)
}

type ScoringService struct {
	store      storage.LedgerStoreInterface
	gate       gate.GateInterface
	logger     providers.Logger
	report     scoring.ReportOptions
	multiRater scoring.MultiRaterOptions
}

func NewScoringService(conf *structures.Config, store storage.LedgerStoreInterface, g gate.GateInterface, logger providers.Logger) ScoringServiceInterface {
	s := &ScoringService{
		store:  store,
		gate:   g,
		logger: logger,
		report: scoring.ReportOptions{Gaps: scoring.GapThresholds{
			Medium: conf.Scoring.GapMedium,
			High:   conf.Scoring.GapHigh,
		}},
		multiRater: scoring.MultiRaterOptions{
			BlindSpotThreshold: conf.Scoring.BlindSpotThreshold,
			RankingSize:        conf.Scoring.RankingSize,
		},
	}
	if s.report.Gaps.High == 0 {
		s.report.Gaps = scoring.DefaultGapThresholds
	}
	if s.multiRater.BlindSpotThreshold == 0 {
		s.multiRater.BlindSpotThreshold = scoring.DefaultMultiRaterOptions.BlindSpotThreshold
	}
	return s
}

// submissions loads the completed responses of a campaign owned by tenantID.
func (s *ScoringService) submissions(ctx context.Context, tenantID, campaignID string) ([]models.Submission, error) {
	if tenantID == "" {
		return nil, models.ErrUnscopedQuery
	}
	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if campaign.TenantID != tenantID {
		return nil, models.ErrForbidden
	}
	subs, err := s.store.ListSubmissions(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// pooled keeps the submissions that answered at least one instrument
// aggregated across the whole campaign. Multi-rater answers belong to an
// assessment, not to the campaign population.
func pooled(subs []models.Submission) []models.Submission {
	out := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		for _, a := range sub.Answers {
			if spec, ok := models.LookupModule(a.ModuleCode); ok && !spec.MultiRater {
				out = append(out, sub)
				break
			}
		}
	}
	return out
}

func (s *ScoringService) CampaignReport(ctx context.Context, tenantID, campaignID string) (*models.AggregateResult, error) {
	subs, err := s.submissions(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	subs = pooled(subs)

	scope := models.Scope{Kind: models.ScopeCampaign, TenantID: tenantID, CampaignID: campaignID}
	result := s.gate.Check(scope, len(subs), func() any {
		return scoring.BuildReport(subs, s.report)
	})
	return &result, nil
}

func (s *ScoringService) DepartmentReport(ctx context.Context, tenantID, campaignID, department string) (*models.AggregateResult, error) {
	if department == "" {
		return nil, models.NewError(models.CodeInvalidAnswer, "department is required")
	}
	subs, err := s.submissions(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}

	var slice []models.Submission
	for _, sub := range pooled(subs) {
		if sub.Response.Demographics.Department == department {
			slice = append(slice, sub)
		}
	}

	scope := models.Scope{Kind: models.ScopeDepartment, TenantID: tenantID, CampaignID: campaignID, Key: department}
	result := s.gate.Check(scope, len(slice), func() any {
		return scoring.BuildReport(slice, s.report)
	})
	return &result, nil
}

func (s *ScoringService) Assessment360Report(ctx context.Context, tenantID, campaignID, assessmentID string) (*models.AggregateResult, error) {
	if assessmentID == "" {
		return nil, models.NewError(models.CodeInvalidAnswer, "assessment is required")
	}
	subs, err := s.submissions(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}

	byPerspective := map[models.RaterPerspective][]models.Submission{}
	nonSelf := 0
	for _, sub := range subs {
		if sub.Response.AssessmentID != assessmentID || !sub.Response.Perspective.Valid() {
			continue
		}
		byPerspective[sub.Response.Perspective] = append(byPerspective[sub.Response.Perspective], sub)
		if sub.Response.Perspective != models.RaterSelf {
			nonSelf++
		}
	}

	scope := models.Scope{Kind: models.ScopeAssessment360, TenantID: tenantID, CampaignID: campaignID, Key: assessmentID}
	result := s.gate.Check(scope, nonSelf, func() any {
		return s.assessment360(scope, byPerspective)
	})
	return &result, nil
}

func (s *ScoringService) assessment360(scope models.Scope, byPerspective map[models.RaterPerspective][]models.Submission) *Assessment360 {
	var scores []scoring.PerspectiveScores
	for _, p := range models.RaterPerspectives {
		if ps, ok := scoring.ScorePerspective(p, byPerspective[p], models.ModuleMSAI); ok {
			scores = append(scores, ps)
		}
	}
	analysis := scoring.AnalyzeMultiRater(scores, s.multiRater)

	out := &Assessment360{
		AssessmentID:     scope.Key,
		Others:           []models.AggregateResult{},
		BlindSpots:       analysis.BlindSpots,
		Strengths:        analysis.Strengths,
		DevelopmentAreas: analysis.DevelopmentAreas,
	}
	var (
		groups []scoring.PerspectiveScores
		scopes []models.Scope
		sizes  []int
	)
	for _, ps := range analysis.Perspectives {
		if ps.Perspective == models.RaterSelf {
			self := ps
			out.Self = &self
			continue
		}
		groupScope := scope
		groupScope.Kind = models.ScopeRaterGroup
		groupScope.Key = scope.Key + "/" + string(ps.Perspective)
		groups = append(groups, ps)
		scopes = append(scopes, groupScope)
		sizes = append(sizes, ps.Raters)
	}
	// The combined others means are published, so one small group
	// withholds every group.
	out.Others = append(out.Others, s.gate.CheckSiblings(scopes, sizes, func(i int) any { return groups[i] })...)
	return out
}
