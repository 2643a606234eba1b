package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/kafka"
	"github.com/Domenick1991/airbooking-desk/internal/repository"
	"github.com/Domenick1991/airbooking-desk/internal/service/fare"
	"github.com/google/uuid"
)

type ReservationUseCase interface {
	CreateSession(ctx context.Context, search domain.SearchCriteria) (*domain.BookingSession, error)
	GetSession(ctx context.Context, id string) (*domain.BookingSession, error)
	AdjustPassengers(ctx context.Context, id string, action domain.PaxAction) (*domain.BookingSession, error)
	SelectFlights(ctx context.Context, id string, selection FlightSelection) (*domain.BookingSession, error)
	SavePassengers(ctx context.Context, id string, update PassengerUpdate) (*domain.BookingSession, error)
	Summary(ctx context.Context, id string) (*fare.Summary, error)
	Submit(ctx context.Context, id string) (*SubmitResult, error)
	Attempts(ctx context.Context, id string) ([]domain.Submission, error)
	PaymentResponse(ctx context.Context, invoiceIDTemp, reservationIDTemp string) (*domain.OnlineTemp, error)
}

type SessionStore interface {
	GetSession(ctx context.Context, id string) (*domain.BookingSession, error)
	SaveSession(ctx context.Context, session *domain.BookingSession, ttl time.Duration) error
	AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, sessionID string) error
	MarkPaymentReturned(ctx context.Context, reservationIDTemp, status string, ttl time.Duration) (bool, error)
	ClearPaymentReturned(ctx context.Context, reservationIDTemp, status string) error
}

// Gateway is the backend endpoint that creates reservations and answers
// with a payment session.
type Gateway interface {
	CreateReservationOnline(ctx context.Context, payload *domain.ReservationPayload) (*domain.PaymentSession, error)
	OnlineTemp(ctx context.Context, invoiceIDTemp, reservationIDTemp string) (*domain.OnlineTemp, error)
}

type RateSource interface {
	DollarRate(ctx context.Context) domain.DollarRate
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const notifyRetries = 3

type FlightSelection struct {
	Outbound *domain.Flight  `json:"outbound"`
	Return   *domain.Flight  `json:"return"`
	RTValues domain.RTValues `json:"rt_values"`
}

type PassengerUpdate struct {
	Passengers  domain.PassengerForm `json:"passengers"`
	Contact     domain.ContactInfo   `json:"contact"`
	AcceptTerms bool                 `json:"accept_terms"`
}

type SubmitResult struct {
	Status       domain.SubmitStatus `json:"status"`
	SubmissionID int64               `json:"submission_id,omitempty"`
}

type ReservationService struct {
	sessions    SessionStore
	gateway     Gateway
	rates       RateSource
	submissions repository.SubmissionRepository
	producer    Producer
	eventsTopic string
	notifyTopic string
	sessionTTL  time.Duration
	submitLock  time.Duration
	paymentTTL  time.Duration
	ticketText  string
	now         func() time.Time
	logger      *slog.Logger
}

type ReservationServiceOption func(*ReservationService)

func WithEvents(producer Producer, eventsTopic, notificationsTopic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
		s.notifyTopic = notificationsTopic
	}
}

func WithSubmissionLedger(repo repository.SubmissionRepository) ReservationServiceOption {
	return func(s *ReservationService) {
		s.submissions = repo
	}
}

func WithTicketText(text string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.ticketText = text
	}
}

// WithPaymentMarkerTTL sets how long a returned payment is remembered, so
// reloading the response page does not notify the customer again.
func WithPaymentMarkerTTL(ttl time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.paymentTTL = ttl
	}
}

func WithLogger(logger *slog.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func NewReservationService(
	sessions SessionStore,
	gateway Gateway,
	rates RateSource,
	sessionTTL, submitLock time.Duration,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		sessions:   sessions,
		gateway:    gateway,
		rates:      rates,
		sessionTTL: sessionTTL,
		submitLock: submitLock,
		paymentTTL: 72 * time.Hour,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) CreateSession(ctx context.Context, search domain.SearchCriteria) (*domain.BookingSession, error) {
	if err := search.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.BookingSession{
		ID:        uuid.NewString(),
		Step:      domain.StepSearch,
		Search:    &search,
		Submit:    domain.SubmitStatus{State: domain.SubmitIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ReservationService) GetSession(ctx context.Context, id string) (*domain.BookingSession, error) {
	return s.sessions.GetSession(ctx, id)
}

// AdjustPassengers applies one increment/decrement on the search step.
// Once flights are selected the counts are fixed.
func (s *ReservationService) AdjustPassengers(ctx context.Context, id string, action domain.PaxAction) (*domain.BookingSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepSearch {
		return nil, domain.ErrStepLocked
	}

	counts, err := session.Search.Passengers.Apply(action)
	if err != nil {
		return nil, err
	}
	session.Search.Passengers = counts
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectFlights stores the chosen legs. When both are present the session
// moves to the passenger step and a blank form is built from the counts.
func (s *ReservationService) SelectFlights(ctx context.Context, id string, selection FlightSelection) (*domain.BookingSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := editable(session); err != nil {
		return nil, err
	}
	for _, f := range []*domain.Flight{selection.Outbound, selection.Return} {
		if f == nil {
			continue
		}
		if _, err := f.PrimaryFee(); err != nil {
			return nil, domain.ValidationError{Field: "flights", Msg: fmt.Sprintf("flight %d has no fare", f.ID)}
		}
	}

	session.Outbound = selection.Outbound
	session.Return = selection.Return
	session.Totals = selection.RTValues

	if session.Ready() && session.Step == domain.StepSearch {
		if err := session.Search.Validate(); err != nil {
			return nil, err
		}
		session.Step = domain.StepPassengers
		session.Passengers = domain.NewPassengerForm(session.Search.Passengers, s.now())
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SavePassengers stores the form as typed. Fields are not validated here;
// validation only gates Submit.
func (s *ReservationService) SavePassengers(ctx context.Context, id string, update PassengerUpdate) (*domain.BookingSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepPassengers {
		return nil, domain.ErrMissingPrerequisite
	}
	if err := editable(session); err != nil {
		return nil, err
	}
	if update.Passengers.Counts() != session.Passengers.Counts() {
		return nil, domain.ValidationError{Field: "passengers", Msg: "passenger list does not match the selected counts"}
	}

	session.Passengers = update.Passengers
	session.Contact = update.Contact
	session.AcceptTerms = update.AcceptTerms
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ReservationService) Summary(ctx context.Context, id string) (*fare.Summary, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return fare.Quote(session)
}

// Submit validates the session, assembles the reservation and posts it to
// the backend once. On success the status is REDIRECTING with the gateway
// URL; on failure it returns to IDLE with the error kept in LastError and
// the submit can be attempted again.
func (s *ReservationService) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	session, err := s.submittable(ctx, id)
	if err != nil {
		return nil, err
	}

	locked, err := s.sessions.AcquireSubmitLock(ctx, id, s.submitLock)
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !locked {
		return nil, domain.ErrSubmitInProgress
	}
	defer func() {
		if err := s.sessions.ReleaseSubmitLock(context.WithoutCancel(ctx), id); err != nil {
			s.logger.WarnContext(ctx, "release submit lock", "session_id", id, "error", err)
		}
	}()

	// Another submit may have finished between the first read and the lock.
	session, err = s.submittable(ctx, id)
	if err != nil {
		return nil, err
	}
	// Holding the lock means any stored SUBMITTING state belongs to an
	// attempt that never finished.
	if session.Submit.State == domain.SubmitSubmitting {
		session.Submit.Fail("previous submission was interrupted")
	}
	if err := session.Submit.Begin(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	payload, err := AssemblePayload(AssembleInput{
		Passengers:   session.Passengers,
		Outbound:     session.Outbound,
		Return:       session.Return,
		Search:       session.Search,
		Contact:      session.Contact,
		Totals:       session.Totals,
		ExchangeRate: s.exchangeRate(ctx),
		TicketText:   s.ticketText,
	})
	if err != nil {
		return s.fail(ctx, session, nil, err)
	}

	submission := s.record(ctx, session, payload)

	paymentSession, err := s.gateway.CreateReservationOnline(ctx, payload)
	if err != nil {
		return s.fail(ctx, session, submission, err)
	}

	session.Submit.Redirect(paymentSession.ProcessURL)
	if submission != nil && s.submissions != nil {
		if err := s.submissions.MarkRedirected(ctx, submission.ID, paymentSession.ProcessURL, paymentSession.RequestID); err != nil {
			s.logger.WarnContext(ctx, "mark submission redirected", "submission_id", submission.ID, "error", err)
		}
	}
	if err := s.save(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "save redirected session", "session_id", id, "error", err)
	}

	s.publish(ctx, s.eventsTopic, kafka.ReservationEvent{
		Type:         kafka.EventReservationSubmitted,
		SessionID:    session.ID,
		SubmissionID: submissionID(submission),
		ContactName:  session.Contact.Name,
		ContactEmail: session.Contact.Email,
		Total:        payload.Invoice.Total,
		ProcessURL:   paymentSession.ProcessURL,
		RequestID:    paymentSession.RequestID,
	})

	s.logger.InfoContext(ctx, "reservation sent to payment",
		"session_id", session.ID,
		"submission_id", submissionID(submission),
		"details", len(payload.Details),
	)
	return &SubmitResult{Status: session.Submit, SubmissionID: submissionID(submission)}, nil
}

// PaymentResponse looks up the temporary invoice and reservation the
// gateway redirected back with.
func (s *ReservationService) PaymentResponse(ctx context.Context, invoiceIDTemp, reservationIDTemp string) (*domain.OnlineTemp, error) {
	if invoiceIDTemp == "" || reservationIDTemp == "" {
		return nil, domain.ValidationError{Field: "invoice_id_temp", Msg: "invoice_id_temp and reservation_id_temp are required"}
	}

	temp, err := s.gateway.OnlineTemp(ctx, invoiceIDTemp, reservationIDTemp)
	if err != nil {
		return nil, fmt.Errorf("lookup online reservation: %w", err)
	}

	s.notifyPayment(ctx, invoiceIDTemp, reservationIDTemp, temp)
	return temp, nil
}

// notifyPayment publishes payment_returned once per reservation and payment
// status. The marker is cleared again when the event cannot be delivered so
// the next page load retries.
func (s *ReservationService) notifyPayment(ctx context.Context, invoiceIDTemp, reservationIDTemp string, temp *domain.OnlineTemp) {
	if s.producer == nil || s.notifyTopic == "" {
		return
	}
	status := temp.PaymentStatus()
	first, err := s.sessions.MarkPaymentReturned(ctx, reservationIDTemp, status, s.paymentTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "mark payment returned", "reservation_id_temp", reservationIDTemp, "error", err)
		return
	}
	if !first {
		return
	}

	reservation := temp.Reservation
	event := kafka.ReservationEvent{
		Type:              kafka.EventPaymentReturned,
		ContactName:       reservation.ContactName,
		ContactEmail:      reservation.ContactEmail,
		Total:             temp.Invoice.Total,
		InvoiceIDTemp:     invoiceIDTemp,
		ReservationIDTemp: reservationIDTemp,
		PaymentStatus:     status,
		Reservation:       &reservation,
		OccurredAt:        s.now(),
	}
	if err := s.producer.PublishWithRetry(ctx, s.notifyTopic, reservationIDTemp, event, notifyRetries); err != nil {
		s.logger.ErrorContext(ctx, "publish payment returned", "reservation_id_temp", reservationIDTemp, "error", err)
		if err := s.sessions.ClearPaymentReturned(context.WithoutCancel(ctx), reservationIDTemp, status); err != nil {
			s.logger.WarnContext(ctx, "clear payment marker", "reservation_id_temp", reservationIDTemp, "error", err)
		}
	}
}

// Attempts lists the ledger rows of a session, oldest first.
func (s *ReservationService) Attempts(ctx context.Context, id string) ([]domain.Submission, error) {
	if _, err := s.sessions.GetSession(ctx, id); err != nil {
		return nil, err
	}
	if s.submissions == nil {
		return []domain.Submission{}, nil
	}
	attempts, err := s.submissions.ListBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if attempts == nil {
		attempts = []domain.Submission{}
	}
	return attempts, nil
}

// FailStaleSubmissions closes ledger attempts that have been SUBMITTING for
// longer than olderThan.
func (s *ReservationService) FailStaleSubmissions(ctx context.Context, olderThan time.Duration) ([]domain.Submission, error) {
	if s.submissions == nil {
		return nil, nil
	}
	stale, err := s.submissions.FailStaleBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("fail stale submissions: %w", err)
	}
	for _, sub := range stale {
		s.publish(ctx, s.eventsTopic, kafka.ReservationEvent{
			Type:         kafka.EventReservationFailed,
			SessionID:    sub.SessionID,
			SubmissionID: sub.ID,
			ContactEmail: sub.ContactEmail,
			Error:        sub.Error,
		})
	}
	return stale, nil
}

// submittable loads the session and checks it can be sent to the backend.
func (s *ReservationService) submittable(ctx context.Context, id string) (*domain.BookingSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Ready() || session.Step != domain.StepPassengers {
		return nil, domain.ErrMissingPrerequisite
	}
	if session.Submit.State == domain.SubmitRedirecting {
		return nil, domain.ErrAlreadyRedirected
	}
	if err := validateForSubmit(session); err != nil {
		return nil, err
	}
	return session, nil
}

// editable rejects changes while a submit is running or after payment
// started.
func editable(session *domain.BookingSession) error {
	switch session.Submit.State {
	case domain.SubmitSubmitting:
		return domain.ErrSubmitInProgress
	case domain.SubmitRedirecting:
		return domain.ErrAlreadyRedirected
	}
	return nil
}

func validateForSubmit(session *domain.BookingSession) error {
	var fields []domain.FieldError
	if err := session.Passengers.Validate(); err != nil {
		if verr, ok := err.(domain.ValidationError); ok {
			fields = append(fields, verr.Fields...)
		} else {
			return err
		}
	}
	if err := session.Contact.Validate(); err != nil {
		if verr, ok := err.(domain.ValidationError); ok {
			fields = append(fields, verr.Fields...)
		} else {
			return err
		}
	}
	if !session.AcceptTerms {
		fields = append(fields, domain.FieldError{Path: "accept_terms", Rule: "required"})
	}
	if len(fields) > 0 {
		return domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *ReservationService) fail(ctx context.Context, session *domain.BookingSession, submission *domain.Submission, cause error) (*SubmitResult, error) {
	session.Submit.Fail(cause.Error())
	if err := s.save(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "save failed session", "session_id", session.ID, "error", err)
	}
	if submission != nil && s.submissions != nil {
		if err := s.submissions.MarkFailed(ctx, submission.ID, cause.Error()); err != nil {
			s.logger.WarnContext(ctx, "mark submission failed", "submission_id", submission.ID, "error", err)
		}
	}
	s.publish(ctx, s.eventsTopic, kafka.ReservationEvent{
		Type:         kafka.EventReservationFailed,
		SessionID:    session.ID,
		SubmissionID: submissionID(submission),
		ContactEmail: session.Contact.Email,
		Error:        cause.Error(),
	})
	s.logger.WarnContext(ctx, "reservation submission failed", "session_id", session.ID, "error", cause)
	return &SubmitResult{Status: session.Submit, SubmissionID: submissionID(submission)}, cause
}

// record writes the attempt to the ledger. The ledger is an audit trail, so
// a failure here does not block the reservation.
func (s *ReservationService) record(ctx context.Context, session *domain.BookingSession, payload *domain.ReservationPayload) *domain.Submission {
	if s.submissions == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "encode submission payload", "error", err)
		return nil
	}
	submission := &domain.Submission{
		SessionID:    session.ID,
		State:        domain.SubmissionPending,
		ContactEmail: session.Contact.Email,
		Total:        payload.Invoice.Total,
		Passengers:   session.Passengers.Counts().Total(),
		Payload:      raw,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		s.logger.WarnContext(ctx, "record submission", "session_id", session.ID, "error", err)
		return nil
	}
	return submission
}

func (s *ReservationService) exchangeRate(ctx context.Context) float64 {
	if s.rates == nil {
		return domain.DefaultDollarRate.Value
	}
	return s.rates.DollarRate(ctx).Value
}

func (s *ReservationService) save(ctx context.Context, session *domain.BookingSession) error {
	session.UpdatedAt = s.now()
	if err := s.sessions.SaveSession(ctx, session, s.sessionTTL); err != nil {
		return fmt.Errorf("save booking session: %w", err)
	}
	return nil
}

func (s *ReservationService) publish(ctx context.Context, topic string, event kafka.ReservationEvent) {
	if s.producer == nil || topic == "" {
		return
	}
	event.OccurredAt = s.now()
	key := event.SessionID
	if key == "" {
		key = event.ReservationIDTemp
	}
	if err := s.producer.Publish(ctx, topic, key, event); err != nil {
		s.logger.WarnContext(ctx, "publish reservation event", "type", event.Type, "error", err)
	}
}

func submissionID(s *domain.Submission) int64 {
	if s == nil {
		return 0
	}
	return s.ID
}

var _ ReservationUseCase = (*ReservationService)(nil)
