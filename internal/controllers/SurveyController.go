package controllers

import (
	"net/http"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/services"

	json "github.com/goccy/go-json"
)

// SurveyController serves the respondent side. None of its handlers log
// token secrets, response ids or addresses.
type SurveyController struct {
	logger    providers.Logger
	admission services.AdmissionServiceInterface
	ledger    services.LedgerServiceInterface
}

func NewSurveyController(logger providers.Logger, admission services.AdmissionServiceInterface, ledger services.LedgerServiceInterface) *SurveyController {
	return &SurveyController{
		logger:    logger,
		admission: admission,
		ledger:    ledger,
	}
}

type startRequest struct {
	Token             string `json:"token"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

type saveRequest struct {
	ResponseID string                     `json:"responseId"`
	ModuleCode models.ModuleCode          `json:"moduleCode"`
	Answers    map[string]json.RawMessage `json:"answers"`
}

type submitRequest struct {
	ResponseID string `json:"responseId"`
}

type demographicsRequest struct {
	ResponseID string `json:"responseId"`
	models.Demographics
}

func (sc *SurveyController) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, sc.logger, err)
		return
	}
	res, err := sc.admission.Admit(r.Context(), services.AdmitRequest{
		Secret:            req.Token,
		IP:                clientIP(r),
		DeviceFingerprint: req.DeviceFingerprint,
	})
	if err != nil {
		writeError(w, sc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *SurveyController) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, sc.logger, err)
		return
	}
	if req.ResponseID == "" {
		writeError(w, sc.logger, models.ErrInvalidSession)
		return
	}

	answers := make(map[string]models.Payload, len(req.Answers))
	for q, raw := range req.Answers {
		p, err := models.UnmarshalPayload(raw)
		if err != nil {
			writeError(w, sc.logger, models.NewError(models.CodeInvalidAnswer, "question %s: %s", q, err))
			return
		}
		answers[q] = p
	}

	res, err := sc.ledger.Autosave(r.Context(), services.AutosaveRequest{
		ResponseID: req.ResponseID,
		ModuleCode: req.ModuleCode,
		Answers:    answers,
	})
	if err != nil {
		writeError(w, sc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *SurveyController) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, sc.logger, err)
		return
	}
	if req.ResponseID == "" {
		writeError(w, sc.logger, models.ErrInvalidSession)
		return
	}
	res, err := sc.ledger.Submit(r.Context(), req.ResponseID)
	if err != nil {
		writeError(w, sc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *SurveyController) Demographics(w http.ResponseWriter, r *http.Request) {
	var req demographicsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, sc.logger, err)
		return
	}
	if req.ResponseID == "" {
		writeError(w, sc.logger, models.ErrInvalidSession)
		return
	}
	if err := sc.ledger.SetDemographics(r.Context(), req.ResponseID, req.Demographics); err != nil {
		writeError(w, sc.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
