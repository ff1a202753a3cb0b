package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"surveycore/internal/anonymization"
	"surveycore/internal/gate"
	"surveycore/internal/models"
	"surveycore/internal/storage"
	"surveycore/internal/structures"
	"surveycore/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const tenant = "tenant-a"

var start = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type env struct {
	conf       *structures.Config
	clock      *testutil.MockClock
	store      *storage.MemoryStore
	sessions   *testutil.MockSessionStore
	dispatcher *testutil.MockDispatcher
	hasher     *anonymization.Hasher
	logger     *testutil.MockLogger
	metrics    *testutil.MockMetrics

	admission *AdmissionService
	ledger    *LedgerService
	campaigns *CampaignService
	scoring   *ScoringService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	hasher, err := anonymization.NewHasherFromSecret([]byte(strings.Repeat("s3cr3t-", 6)), 24)
	require.NoError(t, err)

	e := &env{
		conf: &structures.Config{
			WebServer: structures.Server{PublicURL: "https://survey.example/"},
			Anonymity: structures.AnonymityConfig{MinGroupSize: 5, Min360Raters: 3},
			Campaign:  structures.CampaignConfig{TokenTTL: 72 * time.Hour},
			Scoring:   structures.ScoringConfig{GapMedium: 5, GapHigh: 10, BlindSpotThreshold: 0.5, RankingSize: 5},
		},
		clock:      testutil.NewMockClock(start),
		store:      storage.NewMemoryStore(),
		sessions:   testutil.NewMockSessionStore(),
		dispatcher: &testutil.MockDispatcher{},
		hasher:     hasher,
		logger:     &testutil.MockLogger{},
		metrics:    testutil.NewMockMetrics(),
	}

	ids := 0
	nextID := func() string {
		ids++
		return fmt.Sprintf("id-%03d", ids)
	}

	e.admission = NewAdmissionService(e.store, e.sessions, hasher, e.logger, e.metrics).(*AdmissionService)
	e.admission.now = e.clock.Now
	e.admission.newID = nextID

	e.ledger = NewLedgerService(e.store, e.sessions, e.dispatcher, e.logger, e.metrics).(*LedgerService)
	e.ledger.now = e.clock.Now

	e.campaigns = NewCampaignService(e.conf, e.store, e.ledger, hasher, e.dispatcher, e.logger).(*CampaignService)
	e.campaigns.now = e.clock.Now
	e.campaigns.newID = nextID

	e.scoring = NewScoringService(e.conf, e.store, gate.NewGate(e.conf, e.metrics), e.logger).(*ScoringService)
	return e
}

// activeCampaign registers and launches a campaign, returning one secret
// per invitee in invitation order.
func (e *env) activeCampaign(t *testing.T, id string, modules []models.ModuleCode, invitees ...Invitee) []string {
	t.Helper()
	ctx := context.Background()
	closes := start.Add(14 * 24 * time.Hour)
	_, err := e.campaigns.Register(ctx, tenant, &models.Campaign{ID: id, Name: "Campaign " + id, Modules: modules, ClosesAt: &closes})
	require.NoError(t, err)

	res, err := e.campaigns.Launch(ctx, tenant, id, invitees)
	require.NoError(t, err)

	secrets := make([]string, 0, len(res.Invitations))
	for _, inv := range res.Invitations {
		secrets = append(secrets, secretFromLink(t, inv.Link))
	}
	return secrets
}

func secretFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	secret := u.Query().Get("token")
	require.NotEmpty(t, secret)
	return secret
}

func participants(n int) []Invitee {
	out := make([]Invitee, n)
	for i := range out {
		out[i] = Invitee{ParticipantID: fmt.Sprintf("participant-%02d", i)}
	}
	return out
}

func (e *env) token(t *testing.T, secret string) *models.Token {
	t.Helper()
	tok, err := e.store.GetTokenByFingerprint(context.Background(), e.hasher.Fingerprint(secret))
	require.NoError(t, err)
	return tok
}

// complete admits, answers and submits one respondent.
func (e *env) complete(t *testing.T, secret string, module models.ModuleCode, answers map[string]models.Payload, demo *models.Demographics) string {
	t.Helper()
	ctx := context.Background()
	adm, err := e.admission.Admit(ctx, AdmitRequest{Secret: secret})
	require.NoError(t, err)
	_, err = e.ledger.Autosave(ctx, AutosaveRequest{ResponseID: adm.ResponseID, ModuleCode: module, Answers: answers})
	require.NoError(t, err)
	if demo != nil {
		require.NoError(t, e.ledger.SetDemographics(ctx, adm.ResponseID, *demo))
	}
	_, err = e.ledger.Submit(ctx, adm.ResponseID)
	require.NoError(t, err)
	return adm.ResponseID
}

func qci(values ...int) map[string]models.Payload {
	out := make(map[string]models.Payload, len(values))
	for i, v := range values {
		out[fmt.Sprintf("qci-%02d", i+1)] = models.LikertPayload{Dimension: "quality", Subdimension: fmt.Sprintf("sub-%d", i%2), Value: v}
	}
	return out
}

func assertCode(t *testing.T, err error, code models.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	got, ok := models.CodeOf(err)
	require.True(t, ok, "expected a coded error, got %v", err)
	require.Equal(t, code, got, err.Error())
}
