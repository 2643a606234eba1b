package notification

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/Domenick1991/airbooking-desk/internal/email"
	"github.com/Domenick1991/airbooking-desk/internal/kafka"
	"github.com/Domenick1991/airbooking-desk/internal/service/fare"
	"github.com/Domenick1991/airbooking-desk/internal/ticket"
)

const (
	paymentApproved = "APPROVED"
	paymentRejected = "REJECTED"
	pdfContentType  = "application/pdf"
)

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type Archive interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
}

type NotificationService struct {
	mailer     Mailer
	archive    Archive
	ticketText string
	logger     *slog.Logger
}

type NotificationServiceOption func(*NotificationService)

// WithArchive keeps a copy of every issued ticket.
func WithArchive(archive Archive) NotificationServiceOption {
	return func(s *NotificationService) {
		s.archive = archive
	}
}

func WithTicketText(text string) NotificationServiceOption {
	return func(s *NotificationService) {
		s.ticketText = text
	}
}

func WithLogger(logger *slog.Logger) NotificationServiceOption {
	return func(s *NotificationService) {
		s.logger = logger
	}
}

func NewNotificationService(mailer Mailer, opts ...NotificationServiceOption) *NotificationService {
	service := &NotificationService{mailer: mailer, logger: slog.Default()}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// HandleEvent reacts to a payment return. Approved payments get the PDF
// ticket by email; rejected ones get a notice. Delivery failures are
// logged and do not stop the consumer.
func (s *NotificationService) HandleEvent(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Type != kafka.EventPaymentReturned || event.ContactEmail == "" {
		return nil
	}

	var err error
	switch strings.ToUpper(event.PaymentStatus) {
	case paymentApproved:
		err = s.sendTicket(ctx, event)
	case paymentRejected:
		err = s.mailer.Send(ctx, email.Message{
			To:       event.ContactEmail,
			Subject:  "Pago no completado / Payment not completed",
			HTMLBody: rejectedBody(event),
		})
	default:
		s.logger.InfoContext(ctx, "payment still pending", "reservation_id_temp", event.ReservationIDTemp, "status", event.PaymentStatus)
		return nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "notify contact", "reservation_id_temp", event.ReservationIDTemp, "error", err)
	}
	return nil
}

func (s *NotificationService) sendTicket(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Reservation == nil {
		return fmt.Errorf("payment event without reservation")
	}
	reservation := *event.Reservation

	pdf, err := ticket.Render(reservation, s.ticketText)
	if err != nil {
		return err
	}
	name := ticket.FileName(reservation)

	if s.archive != nil {
		url, err := s.archive.Put(ctx, name, pdfContentType, pdf)
		if err != nil {
			s.logger.WarnContext(ctx, "archive ticket", "reservation", reservation.Code, "error", err)
		} else {
			s.logger.InfoContext(ctx, "ticket archived", "reservation", reservation.Code, "url", url)
		}
	}

	return s.mailer.Send(ctx, email.Message{
		To:          event.ContactEmail,
		Subject:     fmt.Sprintf("Boleto electronico %s / E-ticket %s", reservation.Code, reservation.Code),
		HTMLBody:    ticketBody(event),
		Attachments: []email.Attachment{{Name: name, ContentType: pdfContentType, Data: pdf}},
	})
}

func ticketBody(event kafka.ReservationEvent) string {
	total := fare.Round2(event.Total)
	return fmt.Sprintf(`<p>Hola %s,</p>
<p>Su pago fue aprobado. Adjuntamos su boleto electronico (total %.2f).</p>
<p>Your payment was approved. Your e-ticket is attached (total %.2f).</p>`,
		html.EscapeString(event.ContactName), total, total)
}

func rejectedBody(event kafka.ReservationEvent) string {
	return fmt.Sprintf(`<p>Hola %s,</p>
<p>El pago de su reserva no fue aprobado. Puede intentarlo de nuevo desde el sitio.</p>
<p>The payment for your reservation was not approved. You can try again from the website.</p>`,
		html.EscapeString(event.ContactName))
}
