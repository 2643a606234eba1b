package domain

import "encoding/json"

const (
	TravelerTypePax          = "PAX"
	ReservationStatusConfirm = "CONFIRMADO"
)

// TicketText is printed on every PDF ticket issued for an online reservation.
const TicketText = `IMPORTANTE / IMPORTANT
Presentese en el aeropuerto dos horas antes de la salida con su documento de identidad vigente.
Please arrive at the airport two hours before departure with a valid identity document.
Si no se presenta al vuelo de ida, el vuelo de regreso se cancela automaticamente.
If you do not board the outbound flight, the return flight is cancelled automatically.
Boletos no reembolsables. Cambios sujetos a disponibilidad y cargos.
Tickets are non-refundable. Changes are subject to availability and fees.`

type ReservationDetailLine struct {
	DocumentType           DocumentType `json:"document_type"`
	DocumentNumber         string       `json:"document_number"`
	DocumentExpirationDate string       `json:"document_expiration_date"`
	DocumentIssueCountry   string       `json:"document_issue_country"`
	FirstName              string       `json:"first_name"`
	MiddleName             string       `json:"middle_name"`
	LastName               string       `json:"last_name"`
	GenderType             Gender       `json:"gender_type"`
	DateBirth              string       `json:"date_birth"`
	CountryBirth           string       `json:"country_birth"`
	CountryNationality     string       `json:"country_nationality"`
	CountryResidence       string       `json:"country_residence"`

	FlightID           int64      `json:"flight_id"`
	FlightType         FlightType `json:"flight_type"`
	DetailType         DetailType `json:"detail_type"`
	DetailTravelerType string     `json:"detail_traveler_type"`

	FeeRate      float64 `json:"flight_fees_fee_rate"`
	TaxISV       float64 `json:"flight_fees_tax_isv"`
	SubTotal     float64 `json:"flight_fees_sub_total"`
	TaxDeparture float64 `json:"flight_fees_tax_departure"`
	TaxArrival   float64 `json:"flight_fees_tax_arrival"`
	Total        float64 `json:"flight_fees_total"`

	ReservationStatus string `json:"reservation_status"`
	Transit           string `json:"transit"`
}

type Invoice struct {
	Fee          float64 `json:"fee"`
	Tax          float64 `json:"tax"`
	SubTotal     float64 `json:"sub_total"`
	Total        float64 `json:"total"`
	ExchangeRate float64 `json:"exchange_rate"`
}

type Reservation struct {
	From          int64  `json:"from"`
	To            int64  `json:"to"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
	PaxAdult      int    `json:"pax_adult"`
	PaxMinor      int    `json:"pax_minor"`
	PaxSenior     int    `json:"pax_senior"`
	PaxInfant     int    `json:"pax_infant"`
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	TicketText    string `json:"ticket_text"`
}

type ReservationPayload struct {
	Invoice     Invoice                 `json:"factura"`
	Reservation Reservation             `json:"reservacion"`
	Details     []ReservationDetailLine `json:"reservacionDetalle"`
}

// PaymentSession is the gateway session returned for a created reservation.
type PaymentSession struct {
	ProcessURL string `json:"processUrl"`
	RequestID  string `json:"requestId"`
}

type Country struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Country      string `json:"country"`
}

type DollarRate struct {
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// DefaultDollarRate is used while the exchange rate is unknown.
var DefaultDollarRate = DollarRate{Value: 0, Status: "SI"}

type Destination struct {
	ID          int64  `json:"id"`
	Country     string `json:"country"`
	Destination string `json:"destination"`
	IATA        string `json:"iata"`
	ICAO        string `json:"icao"`
	Status      string `json:"status"`
}

// OnlineTemp is the temporary invoice and reservation the backend keeps while
// the payment gateway processes a session.
type OnlineTemp struct {
	Invoice      OnlineInvoice     `json:"invoice"`
	Reservation  OnlineReservation `json:"reservation"`
	ResponseData json.RawMessage   `json:"responseData"`
}

type OnlineInvoice struct {
	ID     int64   `json:"id"`
	Total  float64 `json:"total"`
	Status string  `json:"status"`
}

type OnlineReservation struct {
	ID           int64                   `json:"id"`
	Code         string                  `json:"code"`
	ContactName  string                  `json:"contact_name"`
	ContactEmail string                  `json:"contact_email"`
	Details      []ReservationDetailLine `json:"details"`
}

// PaymentStatus extracts status.status from the gateway response data.
func (o OnlineTemp) PaymentStatus() string {
	var data struct {
		Status struct {
			Status string `json:"status"`
		} `json:"status"`
	}
	if len(o.ResponseData) == 0 || json.Unmarshal(o.ResponseData, &data) != nil {
		return ""
	}
	return data.Status.Status
}
