package domain

import "time"

type BookingStep string

const (
	StepSearch     BookingStep = "SEARCH"
	StepPassengers BookingStep = "PASSENGERS"
)

type SubmitState string

const (
	SubmitIdle        SubmitState = "IDLE"
	SubmitSubmitting  SubmitState = "SUBMITTING"
	SubmitRedirecting SubmitState = "REDIRECTING"
)

// SubmitStatus drives the submit control:
// IDLE -> SUBMITTING -> REDIRECTING, or back to IDLE with LastError set.
type SubmitStatus struct {
	State      SubmitState `json:"state"`
	LastError  string      `json:"last_error,omitempty"`
	ProcessURL string      `json:"process_url,omitempty"`
}

func (s *SubmitStatus) Begin() error {
	switch s.State {
	case SubmitSubmitting:
		return ErrSubmitInProgress
	case SubmitRedirecting:
		return ErrAlreadyRedirected
	}
	s.State = SubmitSubmitting
	s.LastError = ""
	return nil
}

func (s *SubmitStatus) Redirect(processURL string) {
	s.State = SubmitRedirecting
	s.ProcessURL = processURL
	s.LastError = ""
}

func (s *SubmitStatus) Fail(msg string) {
	s.State = SubmitIdle
	s.LastError = msg
}

// BookingSession is the server-side state of one visitor's way through
// search, passenger details and payment.
type BookingSession struct {
	ID          string          `json:"id"`
	Step        BookingStep     `json:"step"`
	Search      *SearchCriteria `json:"search"`
	Outbound    *Flight         `json:"outbound"`
	Return      *Flight         `json:"return"`
	Totals      RTValues        `json:"rt_values"`
	Passengers  PassengerForm   `json:"passengers"`
	Contact     ContactInfo     `json:"contact"`
	AcceptTerms bool            `json:"accept_terms"`
	Submit      SubmitStatus    `json:"submit"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Ready reports whether both legs and the search criteria are present.
func (b *BookingSession) Ready() bool {
	return b != nil && b.Search != nil && b.Outbound != nil && b.Return != nil
}
