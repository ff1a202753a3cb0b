package controllers

import (
	"errors"
	"net"
	"net/http"
	"surveycore/internal/models"
	"surveycore/internal/providers"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

var errorStatus = map[models.ErrorCode]int{
	models.CodeInvalidToken:      http.StatusUnauthorized,
	models.CodeTokenExpired:      http.StatusGone,
	models.CodeTokenAlreadyUsed:  http.StatusConflict,
	models.CodeCampaignNotActive: http.StatusForbidden,
	models.CodeDeviceMismatch:    http.StatusForbidden,
	models.CodeAlreadySubmitted:  http.StatusConflict,
	models.CodeInvalidSession:    http.StatusNotFound,
	models.CodeInvalidAnswer:     http.StatusBadRequest,
	models.CodeUnscopedQuery:     http.StatusUnauthorized,
	models.CodeForbidden:         http.StatusForbidden,
	models.CodeNotFound:          http.StatusNotFound,
	models.CodeConflict:          http.StatusConflict,
}

var errInternal = &models.CoreError{Code: "INTERNAL", Message: "Internal Server Error"}

// StatusFor maps an error returned by a service to its HTTP status.
func StatusFor(err error) int {
	if code, ok := models.CodeOf(err); ok {
		if status, ok := errorStatus[code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeError renders coded errors as {code, message}. Anything else is
// logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, logger providers.Logger, err error) {
	status := StatusFor(err)
	var ce *models.CoreError
	if status == http.StatusInternalServerError || !errors.As(err, &ce) {
		logger.Errorf(providers.TypeApp, "Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errInternal)
		return
	}
	writeJSON(w, status, ce)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewError(models.CodeInvalidAnswer, "malformed request body")
	}
	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
