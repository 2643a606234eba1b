package reservation

import (
	"fmt"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/service/fare"
)

type AssembleInput struct {
	Passengers   domain.PassengerForm
	Outbound     *domain.Flight
	Return       *domain.Flight
	Search       *domain.SearchCriteria
	Contact      domain.ContactInfo
	Totals       domain.RTValues
	ExchangeRate float64
	TicketText   string
}

func (in AssembleInput) flight(leg domain.Leg) *domain.Flight {
	if leg == domain.LegReturn {
		return in.Return
	}
	return in.Outbound
}

// AssemblePayload builds the reservation sent to the backend. Detail lines
// follow legs x categories x passengers: every outbound line comes before
// every return line, and inside a leg categories keep the order adult,
// minor, senior, infant. Ticketing reads the array positionally.
func AssemblePayload(in AssembleInput) (*domain.ReservationPayload, error) {
	if in.Outbound == nil || in.Return == nil || in.Search == nil {
		return nil, domain.ErrMissingPrerequisite
	}

	counts := in.Passengers.Counts()
	details := make([]domain.ReservationDetailLine, 0, len(domain.Legs)*counts.Total())

	for _, leg := range domain.Legs {
		flight := in.flight(leg.Leg)
		fee, err := flight.PrimaryFee()
		if err != nil {
			return nil, fmt.Errorf("%s flight %d: %w", leg.FlightType, flight.ID, err)
		}
		for _, spec := range domain.Categories {
			for _, passenger := range spec.Records(in.Passengers) {
				// Priced per passenger so category pricing can diverge later.
				line := fare.ComputeFareLine(fee, flight.Itinerary.Tax)
				details = append(details, detailLine(passenger, flight.ID, leg.FlightType, spec.DetailType, line))
			}
		}
	}

	ticketText := in.TicketText
	if ticketText == "" {
		ticketText = domain.TicketText
	}

	return &domain.ReservationPayload{
		Invoice: domain.Invoice{
			Fee:          in.Totals.Fee,
			Tax:          in.Totals.Tax,
			SubTotal:     in.Totals.SubTotal,
			Total:        in.Totals.Total,
			ExchangeRate: in.ExchangeRate,
		},
		Reservation: domain.Reservation{
			From:          in.Search.From,
			To:            in.Search.To,
			DepartureDate: in.Search.DepartureDate.String(),
			ReturnDate:    in.Search.ReturnDate.String(),
			PaxAdult:      counts.Adult,
			PaxMinor:      counts.Minor,
			PaxSenior:     counts.Senior,
			PaxInfant:     counts.Infant,
			ContactName:   in.Contact.Name,
			ContactEmail:  in.Contact.Email,
			ContactPhone:  in.Contact.Phone,
			TicketText:    ticketText,
		},
		Details: details,
	}, nil
}

func detailLine(p domain.PassengerRecord, flightID int64, flightType domain.FlightType, detailType domain.DetailType, line domain.FareBreakdown) domain.ReservationDetailLine {
	return domain.ReservationDetailLine{
		DocumentType:           p.DocumentType,
		DocumentNumber:         p.DocumentNumber,
		DocumentExpirationDate: p.DocumentExpirationDate.String(),
		DocumentIssueCountry:   p.DocumentIssueCountry,
		FirstName:              p.FirstName,
		MiddleName:             p.MiddleName,
		LastName:               p.LastName,
		GenderType:             p.GenderType,
		DateBirth:              p.DateBirth.String(),
		CountryBirth:           p.CountryBirth,
		CountryNationality:     p.CountryNationality,
		CountryResidence:       p.CountryResidence,

		FlightID:           flightID,
		FlightType:         flightType,
		DetailType:         detailType,
		DetailTravelerType: domain.TravelerTypePax,

		FeeRate:      line.FeeRate,
		TaxISV:       line.TaxISV,
		SubTotal:     line.SubTotal,
		TaxDeparture: line.TaxDeparture,
		TaxArrival:   line.TaxArrival,
		Total:        line.Total,

		ReservationStatus: domain.ReservationStatusConfirm,
		Transit:           "",
	}
}
