package models

import "time"

type CampaignStatus string

const (
	CampaignDraft  CampaignStatus = "DRAFT"
	CampaignActive CampaignStatus = "ACTIVE"
	CampaignClosed CampaignStatus = "CLOSED"
)

type Campaign struct {
	ID        string         `json:"id" validate:"required|maxLen:64"`
	TenantID  string         `json:"tenantId"`
	Name      string         `json:"name" validate:"required|maxLen:200"`
	Status    CampaignStatus `json:"status"`
	Modules   []ModuleCode   `json:"modules" validate:"required"`
	ClosesAt  *time.Time     `json:"closesAt,omitempty"`
	StartedAt *time.Time     `json:"startedAt,omitempty"`
	ClosedAt  *time.Time     `json:"closedAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (c *Campaign) Collecting() bool {
	return c.Status == CampaignActive
}

// Due reports whether an active campaign has passed its closing time.
func (c *Campaign) Due(now time.Time) bool {
	return c.Status == CampaignActive && c.ClosesAt != nil && !now.Before(*c.ClosesAt)
}

func (c *Campaign) Clone() *Campaign {
	cp := *c
	cp.Modules = append([]ModuleCode(nil), c.Modules...)
	cp.ClosesAt = cloneTime(c.ClosesAt)
	cp.StartedAt = cloneTime(c.StartedAt)
	cp.ClosedAt = cloneTime(c.ClosedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
