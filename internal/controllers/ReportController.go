package controllers

import (
	"context"
	"net/http"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/services"

	json "github.com/goccy/go-json"
)

// ReportController serves gated aggregates to authenticated tenants.
// Rendered bodies are cached per tenant and query.
type ReportController struct {
	logger  providers.Logger
	scoring services.ScoringServiceInterface
	cache   providers.CacheProviderInterface
}

func NewReportController(logger providers.Logger, scoring services.ScoringServiceInterface, cache providers.CacheProviderInterface) *ReportController {
	return &ReportController{
		logger:  logger,
		scoring: scoring,
		cache:   cache,
	}
}

func (rc *ReportController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, kind string, compute func(ctx context.Context, tenantID string) (*models.AggregateResult, error)) {
	tenantID, ok := providers.TenantIDFromContext(r.Context())
	if !ok {
		writeError(w, rc.logger, models.ErrUnscopedQuery)
		return
	}
	q := r.URL.Query()
	cacheKey := providers.ReportKey{
		Kind:       kind,
		TenantID:   tenantID,
		CampaignID: q.Get("id"),
		Department: q.Get("department"),
		Assessment: q.Get("assessment"),
	}

	if data, ok := rc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute(r.Context(), tenantID)
	if err != nil {
		writeError(w, rc.logger, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		writeError(w, rc.logger, err)
		return
	}

	rc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (rc *ReportController) Campaign(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	rc.serveFromCacheOrCompute(w, r, "campaign", func(ctx context.Context, tenantID string) (*models.AggregateResult, error) {
		return rc.scoring.CampaignReport(ctx, tenantID, id)
	})
}

func (rc *ReportController) Department(w http.ResponseWriter, r *http.Request) {
	id, dept := r.URL.Query().Get("id"), r.URL.Query().Get("department")
	rc.serveFromCacheOrCompute(w, r, "department", func(ctx context.Context, tenantID string) (*models.AggregateResult, error) {
		return rc.scoring.DepartmentReport(ctx, tenantID, id, dept)
	})
}

func (rc *ReportController) Assessment360(w http.ResponseWriter, r *http.Request) {
	id, assessment := r.URL.Query().Get("id"), r.URL.Query().Get("assessment")
	rc.serveFromCacheOrCompute(w, r, "360", func(ctx context.Context, tenantID string) (*models.AggregateResult, error) {
		return rc.scoring.Assessment360Report(ctx, tenantID, id, assessment)
	})
}
