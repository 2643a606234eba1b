package ticket

import (
	"bytes"
	"testing"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	reservation := domain.OnlineReservation{
		ID:           9,
		Code:         "ABC123",
		ContactName:  "Ana López",
		ContactEmail: "ana@example.com",
		Details: []domain.ReservationDetailLine{
			{FirstName: "Ana", LastName: "López", DetailType: domain.DetailTypeAdult, FlightID: 11, FlightType: domain.FlightTypeOutbound, Total: 587},
			{FirstName: "Ana", LastName: "López", DetailType: domain.DetailTypeAdult, FlightID: 12, FlightType: domain.FlightTypeReturn, Total: 380},
		},
	}

	pdf, err := Render(reservation, "")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "ticket-ABC123.pdf", FileName(domain.OnlineReservation{ID: 9, Code: "ABC123"}))
	assert.Equal(t, "ticket-9.pdf", FileName(domain.OnlineReservation{ID: 9}))
}

func TestAmount_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, "2.68", amount(2.675))
	assert.Equal(t, "1.01", amount(1.005))
	assert.Equal(t, "587.00", amount(587))
}
