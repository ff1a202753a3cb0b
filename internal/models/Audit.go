package models

import "time"

const (
	AuditSurveyStart       = "survey.start"
	AuditSurveySubmit      = "survey.submit"
	AuditCampaignRegister  = "campaign.register"
	AuditCampaignLaunch    = "campaign.launch"
	AuditCampaignClose     = "campaign.close"
	AuditCampaignReminders = "campaign.reminders"
)

type AuditEntry struct {
	Time         time.Time         `json:"time"`
	Action       string            `json:"action"`
	ResourceType string            `json:"resourceType"`
	ResourceID   string            `json:"resourceId"`
	CampaignID   string            `json:"campaignId"`
	Details      map[string]string `json:"details,omitempty"`
}
