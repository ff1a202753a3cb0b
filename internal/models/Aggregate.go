package models

type ScopeKind string

const (
	ScopeCampaign      ScopeKind = "campaign"
	ScopeDepartment    ScopeKind = "department"
	ScopeAssessment360 ScopeKind = "assessment360"
	ScopeRaterGroup    ScopeKind = "raterGroup"
)

// Scope names the population an aggregate is computed over. TenantID is
// required on every scope and never serialised.
type Scope struct {
	Kind       ScopeKind `json:"kind"`
	TenantID   string    `json:"-"`
	CampaignID string    `json:"campaignId"`
	Key        string    `json:"key,omitempty"`
}

// AggregateResult either carries Data or is flagged InsufficientGroup, never both.
type AggregateResult struct {
	Scope             Scope `json:"scope"`
	SampleSize        int   `json:"sampleSize"`
	MinimumRequired   int   `json:"minimumRequired"`
	InsufficientGroup bool  `json:"insufficientGroup"`
	Data              any   `json:"data,omitempty"`
}
