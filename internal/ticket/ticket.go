package ticket

import (
	"bytes"
	"fmt"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/service/fare"
	"github.com/phpdave11/gofpdf"
)

// Render builds the PDF e-ticket for a paid reservation: one row per detail
// line followed by the ticket conditions.
func Render(reservation domain.OnlineReservation, ticketText string) ([]byte, error) {
	if ticketText == "" {
		ticketText = domain.TicketText
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("E-Ticket "+reservation.Code, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Reserva / Booking: %s", reservation.Code))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Contacto / Contact: %s <%s>", reservation.ContactName, reservation.ContactEmail)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range []struct {
		title string
		width float64
	}{{"Pasajero", 70}, {"Tipo", 25}, {"Vuelo", 20}, {"Tramo", 25}, {"Total", 30}} {
		pdf.CellFormat(h.width, 7, h.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range reservation.Details {
		name := fmt.Sprintf("%s %s %s", line.FirstName, line.MiddleName, line.LastName)
		pdf.CellFormat(70, 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, string(line.DetailType), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", line.FlightID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, string(line.FlightType), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, amount(line.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr(ticketText), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return buf.Bytes(), nil
}

func FileName(reservation domain.OnlineReservation) string {
	if reservation.Code != "" {
		return fmt.Sprintf("ticket-%s.pdf", reservation.Code)
	}
	return fmt.Sprintf("ticket-%d.pdf", reservation.ID)
}

func amount(x float64) string {
	return fmt.Sprintf("%.2f", fare.Round2(x))
}
