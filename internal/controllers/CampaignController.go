package controllers

import (
	"net/http"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/services"
)

type CampaignController struct {
	logger    providers.Logger
	campaigns services.CampaignServiceInterface
}

func NewCampaignController(logger providers.Logger, campaigns services.CampaignServiceInterface) *CampaignController {
	return &CampaignController{
		logger:    logger,
		campaigns: campaigns,
	}
}

type launchRequest struct {
	CampaignID   string             `json:"campaignId"`
	Participants []services.Invitee `json:"participants"`
}

type campaignRef struct {
	CampaignID string `json:"campaignId"`
}

type remindResponse struct {
	CampaignID string `json:"campaignId"`
	Reminded   int    `json:"reminded"`
}

func tenantOf(r *http.Request) (string, error) {
	tenantID, ok := providers.TenantIDFromContext(r.Context())
	if !ok {
		return "", models.ErrUnscopedQuery
	}
	return tenantID, nil
}

func (cc *CampaignController) Register(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantOf(r)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	var c models.Campaign
	if err := decodeBody(w, r, &c); err != nil {
		writeError(w, cc.logger, err)
		return
	}
	stored, err := cc.campaigns.Register(r.Context(), tenantID, &c)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Launch answers with the invitation links. This is the only time token
// secrets leave the process.
func (cc *CampaignController) Launch(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantOf(r)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	var req launchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, err)
		return
	}
	res, err := cc.campaigns.Launch(r.Context(), tenantID, req.CampaignID, req.Participants)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusCreated, res)
}

func (cc *CampaignController) Close(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantOf(r)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	var req campaignRef
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, err)
		return
	}
	res, err := cc.campaigns.Close(r.Context(), tenantID, req.CampaignID)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (cc *CampaignController) Remind(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantOf(r)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	var req campaignRef
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, err)
		return
	}
	n, err := cc.campaigns.Remind(r.Context(), tenantID, req.CampaignID)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, remindResponse{CampaignID: req.CampaignID, Reminded: n})
}

func (cc *CampaignController) Status(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantOf(r)
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	res, err := cc.campaigns.Status(r.Context(), tenantID, r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
