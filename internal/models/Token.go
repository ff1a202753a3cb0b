package models

import "time"

type RaterPerspective string

const (
	RaterSelf        RaterPerspective = "SELF"
	RaterSubordinate RaterPerspective = "SUBORDINATE"
	RaterPeer        RaterPerspective = "PEER"
	RaterSuperior    RaterPerspective = "SUPERIOR"
)

var RaterPerspectives = []RaterPerspective{RaterSelf, RaterSubordinate, RaterPeer, RaterSuperior}

func (p RaterPerspective) Valid() bool {
	for _, rp := range RaterPerspectives {
		if rp == p {
			return true
		}
	}
	return false
}

// RaterAssignment binds a token to one 360° assessment and the perspective
// its holder rates from. It is copied onto the response at admission.
type RaterAssignment struct {
	AssessmentID string           `json:"assessmentId"`
	Perspective  RaterPerspective `json:"perspective"`
}

// Token is the admission credential. Only the keyed fingerprint of the
// secret is kept; the secret itself lives in the invitation link.
type Token struct {
	ID            string           `json:"id"`
	Fingerprint   string           `json:"fingerprint"`
	CampaignID    string           `json:"campaignId"`
	ParticipantID string           `json:"participantId"`
	ModuleSet     []ModuleCode     `json:"moduleSet"`
	ExpiresAt     time.Time        `json:"expiresAt"`
	MaxUses       int              `json:"maxUses"`
	UsedCount     int              `json:"usedCount"`
	DeviceHash    string           `json:"deviceHash,omitempty"`
	IPHash        string           `json:"ipHash,omitempty"`
	Assignment    *RaterAssignment `json:"assignment,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *Token) Exhausted() bool {
	return t.UsedCount >= t.MaxUses
}

func (t *Token) Clone() *Token {
	c := *t
	c.ModuleSet = append([]ModuleCode(nil), t.ModuleSet...)
	if t.Assignment != nil {
		a := *t.Assignment
		c.Assignment = &a
	}
	return &c
}
