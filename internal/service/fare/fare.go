package fare

import (
	"math"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
)

// halfCentSlack absorbs binary representation error so that values such as
// 1.005 round up to 1.01 the way they read in decimal.
const halfCentSlack = 1e-9

// ComputeFareLine prices one passenger on one leg from the flight's fee line
// and the itinerary ISV percentage. No rounding is applied.
func ComputeFareLine(fee domain.FlightFeeLine, itineraryTaxPercent float64) domain.FareBreakdown {
	feeRate := fee.ValueRT
	taxISV := feeRate * (itineraryTaxPercent / 100)
	subTotal := feeRate + taxISV
	taxDeparture := fee.TaxRTHN
	taxArrival := fee.TaxRTCU
	return domain.FareBreakdown{
		FeeRate:      feeRate,
		TaxISV:       taxISV,
		SubTotal:     subTotal,
		TaxDeparture: taxDeparture,
		TaxArrival:   taxArrival,
		Total:        subTotal + taxDeparture + taxArrival,
	}
}

// Round2 rounds half-up to the cent. It is meant for display only.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5+halfCentSlack) / 100
}

func Display(b domain.FareBreakdown) domain.FareBreakdown {
	return domain.FareBreakdown{
		FeeRate:      Round2(b.FeeRate),
		TaxISV:       Round2(b.TaxISV),
		SubTotal:     Round2(b.SubTotal),
		TaxDeparture: Round2(b.TaxDeparture),
		TaxArrival:   Round2(b.TaxArrival),
		Total:        Round2(b.Total),
	}
}
