package controllers

import (
	"fmt"
	"net/http"
	"surveycore/internal/dispatch"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	dispatcher dispatch.DispatcherInterface
	startTime  time.Time
}

type healthResponse struct {
	Status         string  `json:"status"`
	Uptime         string  `json:"uptime"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	PendingIntents int     `json:"pending_intents"`
	DroppedIntents int64   `json:"dropped_intents"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:         "ok",
		Uptime:         formatDuration(uptime),
		UptimeSeconds:  uptime.Seconds(),
		PendingIntents: hc.dispatcher.Pending(),
		DroppedIntents: hc.dispatcher.Dropped(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(dispatcher dispatch.DispatcherInterface) *HealthController {
	return &HealthController{
		dispatcher: dispatcher,
		startTime:  time.Now(),
	}
}
