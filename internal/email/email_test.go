package email

import (
	"testing"

	"github.com/Domenick1991/airbooking-desk/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func testSender() *Sender {
	return NewSender(config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromName:  "Reservas",
		FromEmail: "reservas@example.com",
	})
}

func TestSender_build(t *testing.T) {
	m, err := testSender().build(Message{
		To:       "ana@example.com",
		Subject:  "Su boleto / Your ticket",
		HTMLBody: "<p>hola</p>",
		Attachments: []Attachment{
			{Name: "ticket-ABC123.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"<ana@example.com>"}, m.GetToString())
	assert.Equal(t, []string{"Su boleto / Your ticket"}, m.GetGenHeader(mail.HeaderSubject))
	assert.Len(t, m.GetAttachments(), 1)
}

func TestSender_build_InvalidRecipient(t *testing.T) {
	_, err := testSender().build(Message{To: "not-an-address"})

	assert.Error(t, err)
}

func TestSender_clientOptions(t *testing.T) {
	anonymous := testSender().clientOptions()
	assert.Len(t, anonymous, 3)

	cfg := testSender().cfg
	cfg.User = "mailer"
	cfg.Password = "secret"
	authenticated := NewSender(cfg).clientOptions()
	assert.Len(t, authenticated, 6)

	for _, opts := range [][]mail.Option{anonymous, authenticated} {
		_, err := mail.NewClient("smtp.example.com", opts...)
		assert.NoError(t, err)
	}
}
