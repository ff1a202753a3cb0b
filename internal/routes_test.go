package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"surveycore/internal/anonymization"
	"surveycore/internal/controllers"
	"surveycore/internal/gate"
	"surveycore/internal/providers"
	"surveycore/internal/services"
	"surveycore/internal/storage"
	"surveycore/internal/structures"
	"surveycore/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type testServer struct {
	handler http.Handler
	auth    providers.AuthProviderInterface
	ready   *atomic.Bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conf := &structures.Config{
		WebServer: structures.Server{PublicURL: "https://survey.example"},
		Anonymity: structures.AnonymityConfig{MinGroupSize: 5, Min360Raters: 3},
		Campaign:  structures.CampaignConfig{TokenTTL: 72 * time.Hour},
		Auth:      structures.AuthConfig{JWTSecret: "route-test-secret-0123456789"},
	}
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	store := storage.NewMemoryStore()
	sessions := testutil.NewMockSessionStore()
	dispatcher := &testutil.MockDispatcher{}
	hasher, err := anonymization.NewHasherFromSecret([]byte(strings.Repeat("route-", 8)), 24)
	require.NoError(t, err)

	admission := services.NewAdmissionService(store, sessions, hasher, logger, metrics)
	ledger := services.NewLedgerService(store, sessions, dispatcher, logger, metrics)
	campaigns := services.NewCampaignService(conf, store, ledger, hasher, dispatcher, logger)
	scoring := services.NewScoringService(conf, store, gate.NewGate(conf, metrics), logger)
	auth := providers.NewAuthProvider(conf)

	router := InitRoutes(
		controllers.NewSurveyController(logger, admission, ledger),
		controllers.NewReportController(logger, scoring, testutil.NewMockCache()),
		controllers.NewCampaignController(logger, campaigns),
		auth,
	)
	ready := atomic.NewBool(true)
	handler := Handler(controllers.NewHealthController(dispatcher), conf, router, providers.NewNoopMetrics(), ready)
	return &testServer{handler: handler, auth: auth, ready: ready}
}

func (s *testServer) do(t *testing.T, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) token(t *testing.T, tenantID string) string {
	t.Helper()
	tok, err := s.auth.Sign("admin-1", tenantID, "admin", time.Hour)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestInitRoutes_RegistersRoutes(t *testing.T) {
	router := InitRoutes(&controllers.SurveyController{}, &controllers.ReportController{}, &controllers.CampaignController{}, providers.NewAuthProvider(&structures.Config{}))
	routes := router.GetRoutes()

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}
	assert.Equal(t, []string{
		"/survey/start", "/survey/save", "/survey/submit", "/survey/demographics",
		"/reports/campaign", "/reports/department", "/reports/360",
		"/campaigns", "/campaigns/launch", "/campaigns/close", "/campaigns/remind", "/campaigns/status",
	}, urls)
}

func TestRoutes_MethodEnforcement(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/survey/start", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "POST", rr.Header().Get("Allow"))

	rr = s.do(t, http.MethodPost, "/reports/campaign", s.token(t, "t1"), nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRoutes_AdminRoutesRequireTenant(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/reports/campaign?id=c1", "/campaigns/status?id=c1"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, target, "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, target, "garbage", nil).Code)
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/campaigns/launch", "", map[string]string{"campaignId": "c1"}).Code)
}

func TestRoutes_HealthAndReady(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodGet, "/ready", "", nil).Code)

	s.ready.Store(false)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/ready", "", nil).Code)
}

// Drives a campaign through the HTTP surface from launch to a gated report.
func TestRoutes_SurveyLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "t1")

	rr := s.do(t, http.MethodPost, "/campaigns", admin, map[string]any{
		"id": "c1", "name": "Pulse", "modules": []string{"M2_QCI"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	participants := make([]map[string]string, 6)
	for i := range participants {
		participants[i] = map[string]string{"participantId": fmt.Sprintf("p%d", i)}
	}
	rr = s.do(t, http.MethodPost, "/campaigns/launch", admin, map[string]any{"campaignId": "c1", "participants": participants})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	launch := decode(t, rr)

	var secrets []string
	for _, inv := range launch["invitations"].([]any) {
		u, err := url.Parse(inv.(map[string]any)["link"].(string))
		require.NoError(t, err)
		secrets = append(secrets, u.Query().Get("token"))
	}
	require.Len(t, secrets, 6)

	for i, secret := range secrets[:5] {
		rr = s.do(t, http.MethodPost, "/survey/start", "", map[string]string{"token": secret})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		responseID := decode(t, rr)["responseId"].(string)

		rr = s.do(t, http.MethodPost, "/survey/save", "", map[string]any{
			"responseId": responseID,
			"moduleCode": "M2_QCI",
			"answers": map[string]any{
				"q1": map[string]any{"kind": "likert", "dimension": "quality", "value": 3 + i%2},
				"q2": map[string]any{"kind": "likert", "dimension": "quality", "value": "4"},
			},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, float64(2), decode(t, rr)["savedCount"])

		rr = s.do(t, http.MethodPost, "/survey/demographics", "", map[string]string{"responseId": responseID, "department": "physics"})
		require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

		rr = s.do(t, http.MethodPost, "/survey/submit", "", map[string]string{"responseId": responseID})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = s.do(t, http.MethodPost, "/survey/start", "", map[string]string{"token": secret})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "ALREADY_SUBMITTED", decode(t, rr)["code"])
	}

	rr = s.do(t, http.MethodPost, "/survey/start", "", map[string]string{"token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_TOKEN", decode(t, rr)["code"])

	rr = s.do(t, http.MethodGet, "/reports/department?id=c1&department=physics", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	report := decode(t, rr)
	assert.Equal(t, false, report["insufficientGroup"])
	assert.Equal(t, float64(5), report["sampleSize"])

	rr = s.do(t, http.MethodGet, "/reports/campaign?id=c1", s.token(t, "t2"), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/campaigns/close", admin, map[string]string{"campaignId": "c1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/campaigns/status?id=c1", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	status := decode(t, rr)
	assert.Equal(t, float64(6), status["invited"])
	assert.Equal(t, float64(83), status["responseRate"])
}
