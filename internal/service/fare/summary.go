package fare

import (
	"fmt"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
)

type SummaryLine struct {
	Leg        domain.Leg           `json:"leg"`
	FlightID   int64                `json:"flight_id"`
	Category   domain.Category      `json:"category"`
	Passengers int                  `json:"passengers"`
	Unit       domain.FareBreakdown `json:"unit"`
	LineTotal  float64              `json:"line_total"`
}

// Summary is the booking summary panel. Amounts are rounded for display.
type Summary struct {
	Lines    []SummaryLine   `json:"lines"`
	Total    float64         `json:"total"`
	RTValues domain.RTValues `json:"rt_values"`
}

// Quote builds the summary for a session that has both legs selected.
// Categories without passengers are left out.
func Quote(session *domain.BookingSession) (*Summary, error) {
	if !session.Ready() {
		return nil, domain.ErrMissingPrerequisite
	}
	counts := session.Search.Passengers
	if session.Step == domain.StepPassengers {
		counts = session.Passengers.Counts()
	}

	flights := map[domain.Leg]*domain.Flight{
		domain.LegOutbound: session.Outbound,
		domain.LegReturn:   session.Return,
	}

	summary := &Summary{
		RTValues: domain.RTValues{
			Fee:      Round2(session.Totals.Fee),
			Tax:      Round2(session.Totals.Tax),
			SubTotal: Round2(session.Totals.SubTotal),
			Total:    Round2(session.Totals.Total),
		},
	}
	var total float64
	for _, leg := range domain.Legs {
		flight := flights[leg.Leg]
		fee, err := flight.PrimaryFee()
		if err != nil {
			return nil, fmt.Errorf("flight %d: %w", flight.ID, err)
		}
		unit := ComputeFareLine(fee, flight.Itinerary.Tax)
		for _, spec := range domain.Categories {
			n := spec.Count(counts)
			if n == 0 {
				continue
			}
			lineTotal := unit.Total * float64(n)
			total += lineTotal
			summary.Lines = append(summary.Lines, SummaryLine{
				Leg:        leg.Leg,
				FlightID:   flight.ID,
				Category:   spec.Category,
				Passengers: n,
				Unit:       Display(unit),
				LineTotal:  Round2(lineTotal),
			})
		}
	}
	summary.Total = Round2(total)
	return summary, nil
}
