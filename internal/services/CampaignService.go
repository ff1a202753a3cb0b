package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"surveycore/internal/anonymization"
	"surveycore/internal/dispatch"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/storage"
	"surveycore/internal/structures"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
)

const defaultTokenTTL = 72 * time.Hour

// Invitee is one participant reference to issue a token for. Modules
// narrows the campaign modules; Assignment makes the token a 360° rater.
type Invitee struct {
	ParticipantID     string                  `json:"participantId"`
	DeviceFingerprint string                  `json:"deviceFingerprint,omitempty"`
	Modules           []models.ModuleCode     `json:"modules,omitempty"`
	Assignment        *models.RaterAssignment `json:"assignment,omitempty"`
}

// Invitation carries the only copy of a token secret, inside Link.
type Invitation struct {
	ParticipantID string `json:"participantId"`
	Link          string `json:"link"`
}

type LaunchResult struct {
	CampaignID  string       `json:"campaignId"`
	Issued      int          `json:"issued"`
	Invitations []Invitation `json:"invitations"`
}

type CloseResult struct {
	CampaignID string `json:"campaignId"`
	Expired    int    `json:"expired"`
}

type CampaignStatusReport struct {
	Campaign     *models.Campaign `json:"campaign"`
	Invited      int              `json:"invited"`
	Started      int              `json:"started"`
	InProgress   int              `json:"inProgress"`
	Completed    int              `json:"completed"`
	Expired      int              `json:"expired"`
	ResponseRate int              `json:"responseRate"`
}

type CampaignServiceInterface interface {
	Register(ctx context.Context, tenantID string, c *models.Campaign) (*models.Campaign, error)
	Launch(ctx context.Context, tenantID, campaignID string, invitees []Invitee) (*LaunchResult, error)
	Close(ctx context.Context, tenantID, campaignID string) (*CloseResult, error)
	Remind(ctx context.Context, tenantID, campaignID string) (int, error)
	Status(ctx context.Context, tenantID, campaignID string) (*CampaignStatusReport, error)
	// SweepDue closes every active campaign past its closing time.
	SweepDue(ctx context.Context) (int, error)
}

type CampaignService struct {
	store      storage.LedgerStoreInterface
	ledger     LedgerServiceInterface
	hasher     anonymization.HasherInterface
	dispatcher dispatch.DispatcherInterface
	logger     providers.Logger
	publicURL  string
	tokenTTL   time.Duration
	locks      *keyedMutex
	now        func() time.Time
	newID      func() string
	newSecret  func() (string, error)
}

func NewCampaignService(conf *structures.Config, store storage.LedgerStoreInterface, ledger LedgerServiceInterface, hasher anonymization.HasherInterface, dispatcher dispatch.DispatcherInterface, logger providers.Logger) CampaignServiceInterface {
	ttl := conf.Campaign.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &CampaignService{
		store:      store,
		ledger:     ledger,
		hasher:     hasher,
		dispatcher: dispatcher,
		logger:     logger,
		publicURL:  strings.TrimRight(conf.WebServer.PublicURL, "/"),
		tokenTTL:   ttl,
		locks:      newKeyedMutex(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		newSecret:  anonymization.NewSecret,
	}
}

// owned loads a campaign and checks it belongs to tenantID.
func (s *CampaignService) owned(ctx context.Context, tenantID, campaignID string) (*models.Campaign, error) {
	if tenantID == "" {
		return nil, models.ErrUnscopedQuery
	}
	c, err := s.store.GetCampaign(ctx, campaignID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if c.TenantID != tenantID {
		return nil, models.ErrForbidden
	}
	return c, nil
}

func (s *CampaignService) Register(ctx context.Context, tenantID string, c *models.Campaign) (*models.Campaign, error) {
	if tenantID == "" {
		return nil, models.ErrUnscopedQuery
	}
	v := validate.Struct(c)
	if !v.Validate() {
		return nil, models.NewError(models.CodeInvalidAnswer, "campaign: %s", v.Errors.One())
	}
	if !models.ValidModuleSet(c.Modules) {
		return nil, models.NewError(models.CodeInvalidAnswer, "campaign has unknown or no modules")
	}

	unlock := s.locks.Lock(c.ID)
	defer unlock()

	if _, err := s.store.GetCampaign(ctx, c.ID); err == nil {
		return nil, models.NewError(models.CodeConflict, "campaign %s already exists", c.ID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load campaign: %w", err)
	}

	now := s.now()
	stored := c.Clone()
	stored.TenantID = tenantID
	stored.Status = models.CampaignDraft
	stored.Modules = models.SortModules(c.Modules)
	stored.StartedAt, stored.ClosedAt = nil, nil
	stored.CreatedAt = now
	if err := s.store.PutCampaign(ctx, stored); err != nil {
		return nil, fmt.Errorf("store campaign: %w", err)
	}
	s.audit(ctx, models.AuditCampaignRegister, stored.ID, nil)
	return stored, nil
}

func (s *CampaignService) Launch(ctx context.Context, tenantID, campaignID string, invitees []Invitee) (*LaunchResult, error) {
	unlock := s.locks.Lock(campaignID)
	defer unlock()

	c, err := s.owned(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignDraft {
		return nil, models.NewError(models.CodeConflict, "campaign %s is %s", c.ID, c.Status)
	}
	if len(invitees) == 0 {
		return nil, models.NewError(models.CodeInvalidAnswer, "no participants to invite")
	}

	now := s.now()
	expires := now.Add(s.tokenTTL)
	if c.ClosesAt != nil {
		expires = *c.ClosesAt
	}
	if !expires.After(now) {
		return nil, models.NewError(models.CodeInvalidAnswer, "campaign closes before it opens")
	}

	tokens := make([]*models.Token, 0, len(invitees))
	invitations := make([]Invitation, 0, len(invitees))
	seen := make(map[string]struct{}, len(invitees))
	for _, inv := range invitees {
		if err := s.checkInvitee(c, inv, seen); err != nil {
			return nil, err
		}
		secret, err := s.newSecret()
		if err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		modules := c.Modules
		if len(inv.Modules) > 0 {
			modules = models.SortModules(inv.Modules)
		}
		t := &models.Token{
			ID:            s.newID(),
			Fingerprint:   s.hasher.Fingerprint(secret),
			CampaignID:    c.ID,
			ParticipantID: inv.ParticipantID,
			ModuleSet:     modules,
			ExpiresAt:     expires,
			MaxUses:       1,
			CreatedAt:     now,
		}
		if inv.DeviceFingerprint != "" {
			t.DeviceHash = s.hasher.HashDevice(inv.DeviceFingerprint)
		}
		if inv.Assignment != nil {
			a := *inv.Assignment
			t.Assignment = &a
		}
		tokens = append(tokens, t)
		invitations = append(invitations, Invitation{ParticipantID: inv.ParticipantID, Link: s.link(secret)})
	}

	if err := s.store.PutTokens(ctx, tokens); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}
	if err := s.store.TransitionCampaign(ctx, c.ID, models.CampaignDraft, models.CampaignActive, now); err != nil {
		return nil, err
	}
	s.audit(ctx, models.AuditCampaignLaunch, c.ID, map[string]string{"tokens": strconv.Itoa(len(tokens))})

	for _, inv := range invitations {
		s.dispatcher.Dispatch(dispatch.Intent{
			Kind:       dispatch.KindInvitation,
			Recipient:  inv.ParticipantID,
			Template:   "survey-invitation",
			CampaignID: c.ID,
			Data:       map[string]string{"link": inv.Link},
			CreatedAt:  now,
		})
	}
	s.logger.Infof(providers.TypeApp, "Campaign %s launched with %d tokens", c.ID, len(tokens))
	return &LaunchResult{CampaignID: c.ID, Issued: len(tokens), Invitations: invitations}, nil
}

func (s *CampaignService) checkInvitee(c *models.Campaign, inv Invitee, seen map[string]struct{}) error {
	if inv.ParticipantID == "" {
		return models.NewError(models.CodeInvalidAnswer, "participant reference is required")
	}
	key := inv.ParticipantID
	if inv.Assignment != nil {
		key += "\x00" + inv.Assignment.AssessmentID
	}
	if _, dup := seen[key]; dup {
		return models.NewError(models.CodeInvalidAnswer, "participant %s invited twice", inv.ParticipantID)
	}
	seen[key] = struct{}{}

	for _, m := range inv.Modules {
		if !containsModule(c.Modules, m) {
			return models.NewError(models.CodeInvalidAnswer, "module %s is not part of campaign %s", m, c.ID)
		}
	}
	if a := inv.Assignment; a != nil {
		if a.AssessmentID == "" || !a.Perspective.Valid() {
			return models.NewError(models.CodeInvalidAnswer, "rater assignment needs an assessment and a perspective")
		}
		if !containsModule(c.Modules, models.ModuleMSAI) {
			return models.NewError(models.CodeInvalidAnswer, "campaign %s has no multi-rater module", c.ID)
		}
	}
	return nil
}

func containsModule(modules []models.ModuleCode, code models.ModuleCode) bool {
	for _, m := range modules {
		if m == code {
			return true
		}
	}
	return false
}

func (s *CampaignService) link(secret string) string {
	return s.publicURL + "/survey?token=" + url.QueryEscape(secret)
}

func (s *CampaignService) Close(ctx context.Context, tenantID, campaignID string) (*CloseResult, error) {
	unlock := s.locks.Lock(campaignID)
	defer unlock()

	c, err := s.owned(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	return s.close(ctx, c)
}

func (s *CampaignService) close(ctx context.Context, c *models.Campaign) (*CloseResult, error) {
	now := s.now()
	if err := s.store.TransitionCampaign(ctx, c.ID, models.CampaignActive, models.CampaignClosed, now); err != nil {
		return nil, err
	}
	expired, err := s.ledger.ExpireStragglers(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, models.AuditCampaignClose, c.ID, map[string]string{"expired": strconv.Itoa(expired)})
	s.dispatcher.Dispatch(dispatch.Intent{
		Kind:       dispatch.KindCampaignClosed,
		Template:   "campaign-closed",
		CampaignID: c.ID,
		Data:       map[string]string{"tenantId": c.TenantID},
		CreatedAt:  now,
	})
	return &CloseResult{CampaignID: c.ID, Expired: expired}, nil
}

// Remind raises a reminder for every token that was never used and is
// still valid. The secret is not stored, so reminders carry no link.
func (s *CampaignService) Remind(ctx context.Context, tenantID, campaignID string) (int, error) {
	c, err := s.owned(ctx, tenantID, campaignID)
	if err != nil {
		return 0, err
	}
	if !c.Collecting() {
		return 0, models.ErrCampaignNotActive
	}
	tokens, err := s.store.ListTokens(ctx, c.ID)
	if err != nil {
		return 0, fmt.Errorf("list tokens: %w", err)
	}

	now := s.now()
	sent := 0
	for _, t := range tokens {
		if t.UsedCount > 0 || t.Expired(now) {
			continue
		}
		if s.dispatcher.Dispatch(dispatch.Intent{
			Kind:       dispatch.KindReminder,
			Recipient:  t.ParticipantID,
			Template:   "survey-reminder",
			CampaignID: c.ID,
			CreatedAt:  now,
		}) {
			sent++
		}
	}
	s.audit(ctx, models.AuditCampaignReminders, c.ID, map[string]string{"reminders": strconv.Itoa(sent)})
	return sent, nil
}

func (s *CampaignService) Status(ctx context.Context, tenantID, campaignID string) (*CampaignStatusReport, error) {
	c, err := s.owned(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.store.ListTokens(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	counts, err := s.store.CountResponses(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	report := &CampaignStatusReport{
		Campaign:   c,
		Invited:    len(tokens),
		InProgress: counts[models.StatusInProgress],
		Completed:  counts[models.StatusCompleted],
		Expired:    counts[models.StatusExpired],
	}
	report.Started = report.InProgress + report.Completed + report.Expired
	if report.Invited > 0 {
		report.ResponseRate = int(math.Round(float64(report.Completed) / float64(report.Invited) * 100))
	}
	return report, nil
}

func (s *CampaignService) SweepDue(ctx context.Context) (int, error) {
	due, err := s.store.ListDueCampaigns(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list due campaigns: %w", err)
	}
	closed := 0
	for _, c := range due {
		unlock := s.locks.Lock(c.ID)
		_, err := s.close(ctx, c)
		unlock()
		if err != nil {
			if code, ok := models.CodeOf(err); ok && code == models.CodeConflict {
				continue
			}
			return closed, fmt.Errorf("close campaign %s: %w", c.ID, err)
		}
		closed++
		s.logger.Infof(providers.TypeApp, "Campaign %s closed on schedule", c.ID)
	}
	return closed, nil
}

func (s *CampaignService) audit(ctx context.Context, action, campaignID string, details map[string]string) {
	entry := models.AuditEntry{
		Time:         s.now(),
		Action:       action,
		ResourceType: "campaign",
		ResourceID:   campaignID,
		CampaignID:   campaignID,
		Details:      details,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Errorf(providers.TypeApp, "Failed to append audit entry for campaign %s: %v", campaignID, err)
	}
}
