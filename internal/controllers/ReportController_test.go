package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asTenant(req *http.Request, tenantID string) *http.Request {
	return req.WithContext(providers.WithClaims(req.Context(), &providers.Claims{UID: "admin", TID: tenantID}))
}

func TestReport_RequiresTenant(t *testing.T) {
	svc := &mockScoring{}
	rc := NewReportController(&testutil.MockLogger{}, svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	rc.Campaign(rr, httptest.NewRequest(http.MethodGet, "/reports/campaign?id=c1", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, svc.calls)
}

func TestReport_GatedResult(t *testing.T) {
	svc := &mockScoring{result: &models.AggregateResult{
		Scope:             models.Scope{Kind: models.ScopeDepartment, TenantID: "t1", CampaignID: "c1", Key: "physics"},
		SampleSize:        4,
		MinimumRequired:   5,
		InsufficientGroup: true,
	}}
	rc := NewReportController(&testutil.MockLogger{}, svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	rc.Department(rr, asTenant(httptest.NewRequest(http.MethodGet, "/reports/department?id=c1&department=physics", nil), "t1"))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["insufficientGroup"])
	assert.NotContains(t, resp, "data")
	assert.NotContains(t, rr.Body.String(), "t1")
	assert.Equal(t, []string{"t1"}, svc.tenants)
}

func TestReport_CachedPerTenant(t *testing.T) {
	svc := &mockScoring{result: &models.AggregateResult{SampleSize: 7, MinimumRequired: 5, Data: map[string]int{"respondents": 7}}}
	cache := testutil.NewMockCache()
	rc := NewReportController(&testutil.MockLogger{}, svc, cache)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		rc.Campaign(rr, asTenant(httptest.NewRequest(http.MethodGet, "/reports/campaign?id=c1", nil), "t1"))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"respondents":7`)
	}
	assert.Equal(t, 1, svc.calls)

	rr := httptest.NewRecorder()
	rc.Campaign(rr, asTenant(httptest.NewRequest(http.MethodGet, "/reports/campaign?id=c1", nil), "t2"))
	assert.Equal(t, 2, svc.calls)
	assert.Len(t, cache.Data, 2)
}

func TestReport_ErrorsAreNotCached(t *testing.T) {
	svc := &mockScoring{err: models.ErrForbidden}
	cache := testutil.NewMockCache()
	rc := NewReportController(&testutil.MockLogger{}, svc, cache)

	rr := httptest.NewRecorder()
	rc.Assessment360(rr, asTenant(httptest.NewRequest(http.MethodGet, "/reports/360?id=c1&assessment=a1", nil), "t1"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, cache.Data)
}
