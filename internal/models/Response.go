package models

import "time"

type ResponseStatus string

const (
	StatusInProgress ResponseStatus = "IN_PROGRESS"
	StatusCompleted  ResponseStatus = "COMPLETED"
	StatusExpired    ResponseStatus = "EXPIRED"
)

// CanTransition encodes the one-way lifecycle: IN_PROGRESS may complete or
// expire, nothing leaves a terminal state.
func (s ResponseStatus) CanTransition(to ResponseStatus) bool {
	return s == StatusInProgress && (to == StatusCompleted || to == StatusExpired)
}

// Response is the anonymous record of one participation. It carries no
// participant identity; AnonymousID is a keyed one-way derivative of the
// token it was admitted with.
type Response struct {
	ID           string           `json:"id"`
	CampaignID   string           `json:"campaignId"`
	AnonymousID  string           `json:"anonymousId"`
	Status       ResponseStatus   `json:"status"`
	StartedAt    time.Time        `json:"startedAt"`
	LastSavedAt  time.Time        `json:"lastSavedAt"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
	Demographics Demographics     `json:"demographics"`
	AssessmentID string           `json:"assessmentId,omitempty"`
	Perspective  RaterPerspective `json:"perspective,omitempty"`
}

func (r *Response) Clone() *Response {
	c := *r
	c.CompletedAt = cloneTime(r.CompletedAt)
	return &c
}

// Submission is a completed response with its answers, the unit every
// scoring function consumes.
type Submission struct {
	Response Response
	Answers  []Answer
}
