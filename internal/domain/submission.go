package domain

import "time"

type SubmissionState string

const (
	SubmissionPending    SubmissionState = "SUBMITTING"
	SubmissionRedirected SubmissionState = "REDIRECTED"
	SubmissionFailed     SubmissionState = "FAILED"
)

// Submission is one attempt to create a reservation through the backend.
// Every click on submit produces a new row; failed attempts are never
// retried.
type Submission struct {
	ID           int64           `json:"id"`
	SessionID    string          `json:"session_id"`
	State        SubmissionState `json:"state"`
	ContactEmail string          `json:"contact_email"`
	Total        float64         `json:"total"`
	Passengers   int             `json:"passengers"`
	ProcessURL   string          `json:"process_url,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
	Error        string          `json:"error,omitempty"`
	Payload      []byte          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
