package services

import (
	"context"
	"fmt"
	"sort"
	"surveycore/internal/dispatch"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/session"
	"surveycore/internal/storage"
	"time"
)

const submitMessage = "Survey completed. Thank you!"

type AutosaveRequest struct {
	ResponseID string
	ModuleCode models.ModuleCode
	Answers    map[string]models.Payload
}

type AutosaveResult struct {
	SavedCount int       `json:"savedCount"`
	SavedAt    time.Time `json:"savedAt"`
}

type SubmitResult struct {
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completedAt"`
}

type LedgerServiceInterface interface {
	Autosave(ctx context.Context, req AutosaveRequest) (*AutosaveResult, error)
	Submit(ctx context.Context, responseID string) (*SubmitResult, error)
	SetDemographics(ctx context.Context, responseID string, d models.Demographics) error
	// ExpireStragglers moves every in-progress response of a campaign to
	// EXPIRED and returns how many moved.
	ExpireStragglers(ctx context.Context, campaignID string) (int, error)
}

type LedgerService struct {
	store      storage.LedgerStoreInterface
	sessions   session.StoreInterface
	dispatcher dispatch.DispatcherInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	now        func() time.Time
}

func NewLedgerService(store storage.LedgerStoreInterface, sessions session.StoreInterface, dispatcher dispatch.DispatcherInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) LedgerServiceInterface {
	return &LedgerService{
		store:      store,
		sessions:   sessions,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Autosave validates the whole batch before writing any of it.
func (s *LedgerService) Autosave(ctx context.Context, req AutosaveRequest) (*AutosaveResult, error) {
	spec, ok := models.LookupModule(req.ModuleCode)
	if !ok {
		return nil, models.NewError(models.CodeInvalidAnswer, "unknown module %q", req.ModuleCode)
	}
	if len(req.Answers) == 0 {
		return nil, models.NewError(models.CodeInvalidAnswer, "no answers to save")
	}

	questions := make([]string, 0, len(req.Answers))
	for q := range req.Answers {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	answers := make([]models.Answer, 0, len(questions))
	for _, q := range questions {
		if q == "" {
			return nil, models.NewError(models.CodeInvalidAnswer, "answer without question id")
		}
		payload, err := models.NormalizePayload(req.Answers[q], spec)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", q, err)
		}
		answers = append(answers, models.Answer{
			ResponseID: req.ResponseID,
			ModuleCode: req.ModuleCode,
			QuestionID: q,
			Payload:    payload,
		})
	}

	savedAt := s.now()
	if err := s.store.SaveAnswers(ctx, req.ResponseID, answers, savedAt); err != nil {
		return nil, err
	}
	s.metrics.ObserveAutosaveBatch(len(answers))
	return &AutosaveResult{SavedCount: len(answers), SavedAt: savedAt}, nil
}

func (s *LedgerService) Submit(ctx context.Context, responseID string) (*SubmitResult, error) {
	r, err := s.store.CompleteResponse(ctx, responseID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, r.ID); err != nil {
		s.logger.Warnf(providers.TypeApp, "Failed to clear survey session: %v", err)
	}

	entry := models.AuditEntry{
		Time:         *r.CompletedAt,
		Action:       models.AuditSurveySubmit,
		ResourceType: "survey_response",
		ResourceID:   r.ID,
		CampaignID:   r.CampaignID,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Errorf(providers.TypeApp, "Failed to append audit entry for campaign %s: %v", r.CampaignID, err)
	}

	s.dispatcher.Dispatch(dispatch.Intent{
		Kind:       dispatch.KindResponseCompleted,
		Template:   "response-completed",
		CampaignID: r.CampaignID,
		CreatedAt:  *r.CompletedAt,
	})
	s.metrics.IncSubmissions()
	return &SubmitResult{Message: submitMessage, CompletedAt: *r.CompletedAt}, nil
}

func (s *LedgerService) SetDemographics(ctx context.Context, responseID string, d models.Demographics) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.store.SetDemographics(ctx, responseID, d)
}

func (s *LedgerService) ExpireStragglers(ctx context.Context, campaignID string) (int, error) {
	n, err := s.store.ExpireResponses(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("expire responses: %w", err)
	}
	if n > 0 {
		s.logger.Infof(providers.TypeApp, "Expired %d unfinished responses of campaign %s", n, campaignID)
	}
	return n, nil
}
