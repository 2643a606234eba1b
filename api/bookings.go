package api

import (
	"net/http"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service reservation.ReservationUseCase
}

type submitResponse struct {
	State        domain.SubmitState `json:"state"`
	ProcessURL   string             `json:"process_url,omitempty"`
	Error        string             `json:"error,omitempty"`
	SubmissionID int64              `json:"submission_id,omitempty"`
}

func NewBookingHandler(service reservation.ReservationUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	bookings.POST("", h.create)
	bookings.GET("/:id", h.get)
	bookings.PATCH("/:id/passengers/count", h.adjustPassengers)
	bookings.PUT("/:id/flights", h.selectFlights)
	bookings.PUT("/:id/passengers", h.savePassengers)
	bookings.GET("/:id/summary", h.summary)
	bookings.POST("/:id/submit", h.submit)
	bookings.GET("/:id/attempts", h.attempts)

	router.GET("/reservations/response", h.paymentResponse)
}

func bindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req domain.SearchCriteria
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *BookingHandler) get(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *BookingHandler) adjustPassengers(c *gin.Context) {
	var req domain.PaxAction
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.service.AdjustPassengers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *BookingHandler) selectFlights(c *gin.Context) {
	var req reservation.FlightSelection
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.service.SelectFlights(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *BookingHandler) savePassengers(c *gin.Context) {
	var req reservation.PassengerUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.service.SavePassengers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *BookingHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// submit answers 502 with the IDLE state when the backend rejects the
// reservation, so the client can re-enable the submit control.
func (h *BookingHandler) submit(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	if err != nil && result != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, submitResponse{
			State:        result.Status.State,
			Error:        result.Status.LastError,
			SubmissionID: result.SubmissionID,
		})
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		State:        result.Status.State,
		ProcessURL:   result.Status.ProcessURL,
		SubmissionID: result.SubmissionID,
	})
}

func (h *BookingHandler) attempts(c *gin.Context) {
	attempts, err := h.service.Attempts(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

func (h *BookingHandler) paymentResponse(c *gin.Context) {
	temp, err := h.service.PaymentResponse(c.Request.Context(), c.Query("invoice_id_temp"), c.Query("reservation_id_temp"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice":        temp.Invoice,
		"reservation":    temp.Reservation,
		"payment_status": temp.PaymentStatus(),
	})
}
