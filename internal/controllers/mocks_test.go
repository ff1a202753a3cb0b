package controllers

import (
	"context"
	"surveycore/internal/models"
	"surveycore/internal/services"
)

// --- local service mocks (scoped to controller tests) ---

type mockAdmission struct {
	calls  []services.AdmitRequest
	result *services.AdmissionResult
	err    error
}

func (m *mockAdmission) Admit(_ context.Context, req services.AdmitRequest) (*services.AdmissionResult, error) {
	m.calls = append(m.calls, req)
	return m.result, m.err
}

type mockLedger struct {
	saves        []services.AutosaveRequest
	submits      []string
	demographics []models.Demographics
	err          error
}

func (m *mockLedger) Autosave(_ context.Context, req services.AutosaveRequest) (*services.AutosaveResult, error) {
	m.saves = append(m.saves, req)
	if m.err != nil {
		return nil, m.err
	}
	return &services.AutosaveResult{SavedCount: len(req.Answers)}, nil
}

func (m *mockLedger) Submit(_ context.Context, responseID string) (*services.SubmitResult, error) {
	m.submits = append(m.submits, responseID)
	if m.err != nil {
		return nil, m.err
	}
	return &services.SubmitResult{Message: "Survey completed. Thank you!"}, nil
}

func (m *mockLedger) SetDemographics(_ context.Context, _ string, d models.Demographics) error {
	m.demographics = append(m.demographics, d)
	return m.err
}

func (m *mockLedger) ExpireStragglers(_ context.Context, _ string) (int, error) { return 0, m.err }

type mockScoring struct {
	calls   int
	tenants []string
	result  *models.AggregateResult
	err     error
}

func (m *mockScoring) record(tenantID string) (*models.AggregateResult, error) {
	m.calls++
	m.tenants = append(m.tenants, tenantID)
	return m.result, m.err
}

func (m *mockScoring) CampaignReport(_ context.Context, tenantID, _ string) (*models.AggregateResult, error) {
	return m.record(tenantID)
}

func (m *mockScoring) DepartmentReport(_ context.Context, tenantID, _, _ string) (*models.AggregateResult, error) {
	return m.record(tenantID)
}

func (m *mockScoring) Assessment360Report(_ context.Context, tenantID, _, _ string) (*models.AggregateResult, error) {
	return m.record(tenantID)
}

type mockCampaigns struct {
	tenants  []string
	invitees []services.Invitee
	err      error
}

func (m *mockCampaigns) Register(_ context.Context, tenantID string, c *models.Campaign) (*models.Campaign, error) {
	m.tenants = append(m.tenants, tenantID)
	if m.err != nil {
		return nil, m.err
	}
	out := *c
	out.TenantID = tenantID
	out.Status = models.CampaignDraft
	return &out, nil
}

func (m *mockCampaigns) Launch(_ context.Context, tenantID, campaignID string, invitees []services.Invitee) (*services.LaunchResult, error) {
	m.tenants = append(m.tenants, tenantID)
	m.invitees = invitees
	if m.err != nil {
		return nil, m.err
	}
	return &services.LaunchResult{CampaignID: campaignID, Issued: len(invitees)}, nil
}

func (m *mockCampaigns) Close(_ context.Context, tenantID, campaignID string) (*services.CloseResult, error) {
	m.tenants = append(m.tenants, tenantID)
	if m.err != nil {
		return nil, m.err
	}
	return &services.CloseResult{CampaignID: campaignID, Expired: 2}, nil
}

func (m *mockCampaigns) Remind(_ context.Context, tenantID, _ string) (int, error) {
	m.tenants = append(m.tenants, tenantID)
	return 3, m.err
}

func (m *mockCampaigns) Status(_ context.Context, tenantID, campaignID string) (*services.CampaignStatusReport, error) {
	m.tenants = append(m.tenants, tenantID)
	if m.err != nil {
		return nil, m.err
	}
	return &services.CampaignStatusReport{Campaign: &models.Campaign{ID: campaignID}, Invited: 3, Completed: 1, ResponseRate: 33}, nil
}

func (m *mockCampaigns) SweepDue(_ context.Context) (int, error) { return 0, m.err }
