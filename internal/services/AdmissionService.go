package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"surveycore/internal/anonymization"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/session"
	"surveycore/internal/storage"
	"time"

	"github.com/google/uuid"
)

type AdmitRequest struct {
	Secret            string
	IP                string
	DeviceFingerprint string
}

type AdmissionResult struct {
	ResponseID string              `json:"responseId"`
	ModuleSet  []models.ModuleCode `json:"moduleSet"`
	Resumed    bool                `json:"resumed"`
}

type AdmissionServiceInterface interface {
	// Admit exchanges a token secret for an in-progress response, creating
	// it on first use and resuming it afterwards.
	Admit(ctx context.Context, req AdmitRequest) (*AdmissionResult, error)
}

type AdmissionService struct {
	store    storage.LedgerStoreInterface
	sessions session.StoreInterface
	hasher   anonymization.HasherInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	locks    *keyedMutex
	now      func() time.Time
	newID    func() string
}

func NewAdmissionService(store storage.LedgerStoreInterface, sessions session.StoreInterface, hasher anonymization.HasherInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) AdmissionServiceInterface {
	return &AdmissionService{
		store:    store,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
		metrics:  metrics,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *AdmissionService) Admit(ctx context.Context, req AdmitRequest) (*AdmissionResult, error) {
	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		return s.reject(models.ErrInvalidToken)
	}
	fingerprint := s.hasher.Fingerprint(secret)

	// Two requests with the same token must not both create a response.
	unlock := s.locks.Lock(fingerprint)
	defer unlock()

	token, err := s.store.GetTokenByFingerprint(ctx, fingerprint)
	if errors.Is(err, storage.ErrNotFound) {
		return s.reject(models.ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if token.Expired(s.now()) {
		return s.reject(models.ErrTokenExpired)
	}

	if responseID, ok := s.sessions.Lookup(ctx, token.ID); ok {
		r, err := s.store.GetResponse(ctx, responseID)
		if err == nil && r.Status == models.StatusInProgress {
			return s.resume(ctx, token, r)
		}
	}

	existing, err := s.store.FindResponse(ctx, token.CampaignID, s.hasher.AnonymousID(token.ID))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("find response: %w", err)
	}
	if existing != nil && existing.Status == models.StatusCompleted {
		return s.reject(models.ErrAlreadySubmitted)
	}

	if token.Exhausted() {
		// The session entry may have been evicted; the ledger still knows.
		if existing != nil && existing.Status == models.StatusInProgress {
			return s.resume(ctx, token, existing)
		}
		if existing != nil && existing.Status == models.StatusExpired {
			return s.reject(models.ErrCampaignNotActive)
		}
		return s.reject(models.ErrTokenAlreadyUsed)
	}

	campaign, err := s.store.GetCampaign(ctx, token.CampaignID)
	if errors.Is(err, storage.ErrNotFound) {
		return s.reject(models.ErrCampaignNotActive)
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if !campaign.Collecting() {
		return s.reject(models.ErrCampaignNotActive)
	}

	if token.DeviceHash != "" && req.DeviceFingerprint != "" &&
		!anonymization.EqualHash(token.DeviceHash, s.hasher.HashDevice(req.DeviceFingerprint)) {
		return s.reject(models.ErrDeviceMismatch)
	}

	if existing != nil {
		if existing.Status == models.StatusInProgress {
			return s.resume(ctx, token, existing)
		}
		return s.reject(models.ErrCampaignNotActive)
	}

	return s.start(ctx, token, s.hasher.HashIP(req.IP))
}

func (s *AdmissionService) start(ctx context.Context, token *models.Token, ipHash string) (*AdmissionResult, error) {
	now := s.now()
	r := &models.Response{
		ID:          s.newID(),
		CampaignID:  token.CampaignID,
		AnonymousID: s.hasher.AnonymousID(token.ID),
		Status:      models.StatusInProgress,
		StartedAt:   now,
		LastSavedAt: now,
	}
	if token.Assignment != nil {
		r.AssessmentID = token.Assignment.AssessmentID
		r.Perspective = token.Assignment.Perspective
	}

	stored, created, err := s.store.StartResponse(ctx, token.ID, ipHash, r)
	if errors.Is(err, storage.ErrTokenExhausted) {
		return s.reject(models.ErrTokenAlreadyUsed)
	}
	if err != nil {
		return nil, fmt.Errorf("start response: %w", err)
	}
	if created {
		entry := models.AuditEntry{
			Time:         now,
			Action:       models.AuditSurveyStart,
			ResourceType: "survey_response",
			ResourceID:   stored.ID,
			CampaignID:   stored.CampaignID,
		}
		if err := s.store.AppendAudit(ctx, entry); err != nil {
			s.logger.Errorf(providers.TypeApp, "Failed to append audit entry for campaign %s: %v", stored.CampaignID, err)
		}
	}

	s.refreshSession(ctx, token.ID, stored.ID)
	s.metrics.IncAdmissions("admitted")
	return &AdmissionResult{ResponseID: stored.ID, ModuleSet: models.SortModules(token.ModuleSet), Resumed: !created}, nil
}

func (s *AdmissionService) resume(ctx context.Context, token *models.Token, r *models.Response) (*AdmissionResult, error) {
	s.refreshSession(ctx, token.ID, r.ID)
	s.metrics.IncAdmissions("resumed")
	return &AdmissionResult{ResponseID: r.ID, ModuleSet: models.SortModules(token.ModuleSet), Resumed: true}, nil
}

// refreshSession is best effort: a lost entry only costs a ledger lookup
// on the next admission.
func (s *AdmissionService) refreshSession(ctx context.Context, tokenID, responseID string) {
	if err := s.sessions.Put(ctx, tokenID, responseID); err != nil {
		s.logger.Warnf(providers.TypeApp, "Failed to store survey session: %v", err)
	}
}

func (s *AdmissionService) reject(err *models.CoreError) (*AdmissionResult, error) {
	s.metrics.IncAdmissions(string(err.Code))
	return nil, err
}
