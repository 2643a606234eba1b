package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/service/fare"
	"github.com/Domenick1991/airbooking-desk/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) CreateSession(ctx context.Context, search domain.SearchCriteria) (*domain.BookingSession, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSession), args.Error(1)
}

func (m *MockReservationUseCase) GetSession(ctx context.Context, id string) (*domain.BookingSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSession), args.Error(1)
}

func (m *MockReservationUseCase) AdjustPassengers(ctx context.Context, id string, action domain.PaxAction) (*domain.BookingSession, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSession), args.Error(1)
}

func (m *MockReservationUseCase) SelectFlights(ctx context.Context, id string, selection reservation.FlightSelection) (*domain.BookingSession, error) {
	args := m.Called(ctx, id, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSession), args.Error(1)
}

func (m *MockReservationUseCase) SavePassengers(ctx context.Context, id string, update reservation.PassengerUpdate) (*domain.BookingSession, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSession), args.Error(1)
}

func (m *MockReservationUseCase) Summary(ctx context.Context, id string) (*fare.Summary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fare.Summary), args.Error(1)
}

func (m *MockReservationUseCase) Submit(ctx context.Context, id string) (*reservation.SubmitResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.SubmitResult), args.Error(1)
}

func (m *MockReservationUseCase) Attempts(ctx context.Context, id string) ([]domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockReservationUseCase) PaymentResponse(ctx context.Context, invoiceIDTemp, reservationIDTemp string) (*domain.OnlineTemp, error) {
	args := m.Called(ctx, invoiceIDTemp, reservationIDTemp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnlineTemp), args.Error(1)
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	body := []byte(`{"from":1,"to":2,"departure_date":"2026-12-01","return_date":"2026-12-08","passengers":{"paxAdult":2}}`)
	c, w := newTestContext("POST", "/api/v1/bookings", body)

	session := &domain.BookingSession{ID: "sess-1", Step: domain.StepSearch}
	mockService.On("CreateSession", c.Request.Context(), mock.MatchedBy(func(s domain.SearchCriteria) bool {
		return s.From == 1 && s.To == 2 && s.Passengers.Adult == 2 && s.DepartureDate.String() == "2026-12-01"
	})).Return(session, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.BookingSession
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "sess-1", response.ID)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_BadBody(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("POST", "/api/v1/bookings", []byte(`{"from":`))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("GET", "/api/v1/bookings/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	mockService.On("GetSession", c.Request.Context(), "missing").Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_adjustPassengers_Locked(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("PATCH", "/api/v1/bookings/sess-1/passengers/count", []byte(`{"category":"ADULT","op":"increment"}`))
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	action := domain.PaxAction{Category: domain.CategoryAdult, Op: domain.PaxIncrement}
	mockService.On("AdjustPassengers", c.Request.Context(), "sess-1", action).Return(nil, domain.ErrStepLocked)

	handler.adjustPassengers(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_savePassengers_Invalid(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("PUT", "/api/v1/bookings/sess-1/passengers", []byte(`{"passengers":{"adults":[]},"accept_terms":true}`))
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	mockService.On("SavePassengers", c.Request.Context(), "sess-1", mock.Anything).
		Return(nil, domain.ValidationError{Field: "passengers", Msg: "passenger list does not match the selected counts"})

	handler.savePassengers(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "validation_error", response.Code)
}

func TestBookingHandler_summary_MissingFlights(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("GET", "/api/v1/bookings/sess-1/summary", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	mockService.On("Summary", c.Request.Context(), "sess-1").Return(nil, domain.ErrMissingPrerequisite)

	handler.summary(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingHandler_submit(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("POST", "/api/v1/bookings/sess-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	mockService.On("Submit", c.Request.Context(), "sess-1").Return(&reservation.SubmitResult{
		Status:       domain.SubmitStatus{State: domain.SubmitRedirecting, ProcessURL: "https://pay.example.com/s/1"},
		SubmissionID: 42,
	}, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.SubmitRedirecting, response.State)
	assert.Equal(t, "https://pay.example.com/s/1", response.ProcessURL)
}

func TestBookingHandler_submit_BackendFailure(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("POST", "/api/v1/bookings/sess-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	backendErr := &domain.SubmissionError{StatusCode: 500, Status: "500 Internal Server Error"}
	mockService.On("Submit", c.Request.Context(), "sess-1").Return(&reservation.SubmitResult{
		Status: domain.SubmitStatus{State: domain.SubmitIdle, LastError: backendErr.Error()},
	}, backendErr)

	handler.submit(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var response submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.SubmitIdle, response.State)
	assert.Equal(t, backendErr.Error(), response.Error)
	assert.Empty(t, response.ProcessURL)
}

func TestBookingHandler_submit_InProgress(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("POST", "/api/v1/bookings/sess-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	mockService.On("Submit", c.Request.Context(), "sess-1").Return(nil, domain.ErrSubmitInProgress)

	handler.submit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_attempts(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("GET", "/api/v1/bookings/sess-1/attempts", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	mockService.On("Attempts", c.Request.Context(), "sess-1").Return([]domain.Submission{
		{ID: 3, SessionID: "sess-1", State: domain.SubmissionFailed, Error: "backend down", Payload: []byte(`{}`)},
		{ID: 4, SessionID: "sess-1", State: domain.SubmissionRedirected, ProcessURL: "https://pay.example.com/s/1"},
	}, nil)

	handler.attempts(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "FAILED", response[0]["state"])
	assert.NotContains(t, response[0], "Payload")
	assert.Equal(t, "https://pay.example.com/s/1", response[1]["process_url"])
}

func TestBookingHandler_paymentResponse(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext("GET", "/api/v1/reservations/response?invoice_id_temp=inv-1&reservation_id_temp=res-1", nil)
	temp := &domain.OnlineTemp{
		Invoice:      domain.OnlineInvoice{ID: 7, Total: 2901},
		Reservation:  domain.OnlineReservation{ID: 9, Code: "ABC123"},
		ResponseData: []byte(`{"status":{"status":"APPROVED"}}`),
	}
	mockService.On("PaymentResponse", c.Request.Context(), "inv-1", "res-1").Return(temp, nil)

	handler.paymentResponse(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		PaymentStatus string `json:"payment_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "APPROVED", response.PaymentStatus)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidCount, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrSubmitInProgress, http.StatusConflict},
		{domain.ErrMissingPrerequisite, http.StatusUnprocessableEntity},
		{&domain.SubmissionError{StatusCode: 503, Status: "503"}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}
