package notification

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/Domenick1991/airbooking-desk/internal/email"
	"github.com/Domenick1991/airbooking-desk/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, name, contentType, body)
	return args.String(0), args.Error(1)
}

func approvedEvent() kafka.ReservationEvent {
	return kafka.ReservationEvent{
		Type:              kafka.EventPaymentReturned,
		ContactName:       "Ana Lopez",
		ContactEmail:      "ana@example.com",
		Total:             2901,
		ReservationIDTemp: "res-1",
		PaymentStatus:     "APPROVED",
		Reservation: &domain.OnlineReservation{
			ID:   9,
			Code: "ABC123",
			Details: []domain.ReservationDetailLine{
				{FirstName: "Ana", LastName: "Lopez", DetailType: domain.DetailTypeAdult, FlightID: 11, FlightType: domain.FlightTypeOutbound, Total: 587},
			},
		},
	}
}

func TestNotificationService_Approved(t *testing.T) {
	mailer := &MockMailer{}
	archive := &MockArchive{}
	service := NewNotificationService(mailer, WithArchive(archive))

	archive.On("Put", mock.Anything, "ticket-ABC123.pdf", "application/pdf", mock.Anything).
		Return("https://tickets.s3.amazonaws.com/ticket-ABC123.pdf", nil)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return msg.To == "ana@example.com" &&
			len(msg.Attachments) == 1 &&
			msg.Attachments[0].Name == "ticket-ABC123.pdf" &&
			bytes.HasPrefix(msg.Attachments[0].Data, []byte("%PDF-"))
	})).Return(nil)

	err := service.HandleEvent(context.Background(), approvedEvent())

	assert.NoError(t, err)
	mailer.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestNotificationService_ArchiveFailureStillMails(t *testing.T) {
	mailer := &MockMailer{}
	archive := &MockArchive{}
	service := NewNotificationService(mailer, WithArchive(archive))

	archive.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket missing"))
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	err := service.HandleEvent(context.Background(), approvedEvent())

	assert.NoError(t, err)
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotificationService_Rejected(t *testing.T) {
	mailer := &MockMailer{}
	service := NewNotificationService(mailer)

	event := approvedEvent()
	event.PaymentStatus = "REJECTED"
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return msg.To == "ana@example.com" && len(msg.Attachments) == 0
	})).Return(nil)

	err := service.HandleEvent(context.Background(), event)

	assert.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestNotificationService_IgnoresOtherEvents(t *testing.T) {
	mailer := &MockMailer{}
	service := NewNotificationService(mailer)

	pending := approvedEvent()
	pending.PaymentStatus = "PENDING"
	submitted := approvedEvent()
	submitted.Type = kafka.EventReservationSubmitted

	assert.NoError(t, service.HandleEvent(context.Background(), pending))
	assert.NoError(t, service.HandleEvent(context.Background(), submitted))
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotificationService_MailFailureDoesNotStopConsumer(t *testing.T) {
	mailer := &MockMailer{}
	service := NewNotificationService(mailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := service.HandleEvent(context.Background(), approvedEvent())

	assert.NoError(t, err)
}

func TestTicketBody_RoundsTotalHalfUp(t *testing.T) {
	body := ticketBody(kafka.ReservationEvent{ContactName: "Ana", Total: 2.675})

	assert.Contains(t, body, "total 2.68")
	assert.NotContains(t, body, "2.67")
}
