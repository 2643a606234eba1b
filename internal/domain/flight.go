package domain

type Leg string

const (
	LegOutbound Leg = "OUTBOUND"
	LegReturn   Leg = "RETURN"
)

type FlightType string

const (
	FlightTypeOutbound FlightType = "IDA"
	FlightTypeReturn   FlightType = "VUELTA"
)

// LegSpec maps a leg of the round trip to its wire flight type.
type LegSpec struct {
	Leg        Leg
	FlightType FlightType
}

// Legs lists the legs in payload order: outbound first, then return.
var Legs = []LegSpec{
	{Leg: LegOutbound, FlightType: FlightTypeOutbound},
	{Leg: LegReturn, FlightType: FlightTypeReturn},
}

type Itinerary struct {
	ID  int64   `json:"id"`
	Tax float64 `json:"tax"`
}

type FlightFeeLine struct {
	ID          int64   `json:"id"`
	Fee         string  `json:"fee"`
	Description string  `json:"description"`
	ValueRT     float64 `json:"valueRT"`
	TaxRTHN     float64 `json:"taxRTHN"`
	TaxRTCU     float64 `json:"taxRTCU"`
	Type        string  `json:"type"`
	FlightID    int64   `json:"flight_id"`
}

type Flight struct {
	ID            int64           `json:"id"`
	FlightNumber  string          `json:"flight_number"`
	DepartureDate Date            `json:"departure_date"`
	DepartureTime string          `json:"departure_time"`
	ArrivalTime   string          `json:"arrival_time"`
	Itinerary     Itinerary       `json:"itinerary"`
	Fees          []FlightFeeLine `json:"fees"`
}

// PrimaryFee returns the fee line priced for this flight. Only the first
// entry is used; any others are ignored.
func (f Flight) PrimaryFee() (FlightFeeLine, error) {
	if len(f.Fees) == 0 {
		return FlightFeeLine{}, ErrNoFeeLine
	}
	return f.Fees[0], nil
}

// FareBreakdown is the price of one passenger on one leg. Values are not
// rounded.
type FareBreakdown struct {
	FeeRate      float64 `json:"feeRate"`
	TaxISV       float64 `json:"taxISV"`
	SubTotal     float64 `json:"subTotal"`
	TaxDeparture float64 `json:"taxDeparture"`
	TaxArrival   float64 `json:"taxArrival"`
	Total        float64 `json:"total"`
}

// RTValues is the round-trip summary shown next to the booking, computed by
// the search step independently of the passenger detail lines.
type RTValues struct {
	Fee      float64 `json:"fee"`
	Tax      float64 `json:"tax"`
	SubTotal float64 `json:"subTotal"`
	Total    float64 `json:"total"`
}

type SearchCriteria struct {
	From          int64           `json:"from" binding:"required"`
	To            int64           `json:"to" binding:"required"`
	DepartureDate Date            `json:"departure_date"`
	ReturnDate    Date            `json:"return_date"`
	Passengers    PassengerCounts `json:"passengers"`
}

func (s SearchCriteria) Validate() error {
	if s.From == 0 || s.To == 0 {
		return ValidationError{Field: "route", Msg: "origin and destination are required"}
	}
	if s.From == s.To {
		return ValidationError{Field: "route", Msg: "origin and destination must differ"}
	}
	if s.DepartureDate.IsZero() {
		return ValidationError{Field: "departure_date", Msg: "departure date is required"}
	}
	if !s.ReturnDate.IsZero() && s.ReturnDate.Before(s.DepartureDate.Time) {
		return ValidationError{Field: "return_date", Msg: "return date is before departure"}
	}
	if err := s.Passengers.Valid(); err != nil {
		return err
	}
	if s.Passengers.Total() < 1 {
		return ValidationError{Field: "passengers", Msg: "at least one passenger is required"}
	}
	return nil
}
