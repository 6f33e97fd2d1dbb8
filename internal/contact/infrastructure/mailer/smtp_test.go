package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"

	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/config"
)

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "bot@suedwest-energie.de",
		Password: "pw",
	}
}

func contactConfig() config.ContactConfig {
	return config.ContactConfig{
		Recipient:   "kontakt@suedwest-energie.de",
		CompanyName: "Südwest-Energie",
	}
}

func submission() *domain.Submission {
	return domain.NewSubmission("s1", "Anna Muster", "anna@firma.de", "0711 123", "Firma GmbH",
		"Wir brauchen ein Angebot.", time.Now())
}

type captured struct {
	msgs []*mail.Message
	err  error
}

func (c *captured) send(msgs ...*mail.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func TestNotifySubmission(t *testing.T) {
	c := &captured{}
	m := New(smtpConfig(), contactConfig(), WithSendFunc(c.send))

	require.NoError(t, m.NotifySubmission(context.Background(), submission()))
	require.Len(t, c.msgs, 1)

	msg := c.msgs[0]
	assert.Equal(t, []string{"kontakt@suedwest-energie.de"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"bot@suedwest-energie.de"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Neue Kontaktanfrage von Anna Muster (Firma GmbH)"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/plain")
}

func TestNotifySubmission_NotConfigured(t *testing.T) {
	c := &captured{}
	cfg := smtpConfig()
	cfg.Password = ""

	err := New(cfg, contactConfig(), WithSendFunc(c.send)).NotifySubmission(context.Background(), submission())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, c.msgs)
}

func TestNotifySubmission_SendError(t *testing.T) {
	c := &captured{err: errors.New("535 authentication failed")}

	err := New(smtpConfig(), contactConfig(), WithSendFunc(c.send)).NotifySubmission(context.Background(), submission())
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeFailed, domain.OutcomeOf(err))
	assert.Contains(t, err.Error(), "535")
}

func TestSubmissionBody(t *testing.T) {
	body := SubmissionBody(submission(), "Südwest-Energie")

	assert.Contains(t, body, "Name: Anna Muster\n")
	assert.Contains(t, body, "E-Mail: anna@firma.de\n")
	assert.Contains(t, body, "Telefon: 0711 123\n")
	assert.Contains(t, body, "Unternehmen: Firma GmbH\n")
	assert.Contains(t, body, "Nachricht: Wir brauchen ein Angebot.\n")
	assert.Contains(t, body, "Kontaktformular der Südwest-Energie Website")
}

func TestSubject_StripsLineBreaks(t *testing.T) {
	s := submission()
	s.Name = "Anna\r\nBcc: x@y.z"
	assert.Equal(t, "Neue Kontaktanfrage von Anna  Bcc: x@y.z (Firma GmbH)", Subject(s))
}

func TestSend_EachRecipient(t *testing.T) {
	c := &captured{}
	m := New(smtpConfig(), contactConfig(), WithSendFunc(c.send))

	err := m.Send(context.Background(), []string{"ops@a.de", " ", "dev@a.de "}, "Alarm", ContentTypeHTML, "<p>x</p>")
	require.NoError(t, err)
	require.Len(t, c.msgs, 2)
	assert.Equal(t, []string{"ops@a.de"}, c.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{"dev@a.de"}, c.msgs[1].GetHeader("To"))
}

func TestSend_NoRecipients(t *testing.T) {
	m := New(smtpConfig(), contactConfig(), WithSendFunc((&captured{}).send))
	err := m.Send(context.Background(), nil, "Alarm", ContentTypeHTML, "<p>x</p>")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
