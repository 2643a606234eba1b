package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airbooking-desk/config"
	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/service/fare"
	"github.com/Domenick1991/airbooking-desk/internal/service/reference"
	"github.com/Domenick1991/airbooking-desk/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubReference struct{}

func (stubReference) Load(context.Context) reference.Reference {
	return reference.Reference{Countries: []domain.Country{}, DollarRate: domain.DefaultDollarRate}
}

func (stubReference) DollarRate(context.Context) domain.DollarRate { return domain.DefaultDollarRate }

func (stubReference) Destinations(context.Context) []domain.Destination { return nil }

type stubReservations struct {
	reservation.ReservationUseCase
}

func (stubReservations) GetSession(context.Context, string) (*domain.BookingSession, error) {
	return nil, domain.ErrNotFound
}

func (stubReservations) Summary(context.Context, string) (*fare.Summary, error) {
	return nil, domain.ErrMissingPrerequisite
}

func newTestRouter() http.Handler {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(config.HTTPConfig{}, logger, stubReference{}, stubReservations{})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/api/v1/reference", http.StatusOK},
		{"/api/v1/bookings/nope", http.StatusNotFound},
		{"/api/v1/bookings/nope/summary", http.StatusUnprocessableEntity},
		{"/docs/index.html", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", tc.path, nil))
		assert.Equal(t, tc.want, w.Code, tc.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), tc.path)
	}
}
