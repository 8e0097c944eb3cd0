// Package notification turns escalated calls into dispatch alerts and sends
// follow-up emails for calls that ended without an appointment.
package notification

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"callintake_backend/internal/calls/transport"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers call notifications.
type Sender interface {
	SendEscalationAlert(ctx context.Context, record transport.CallRecord) error
	SendFollowUp(ctx context.Context, toEmail string, record transport.CallRecord) error
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host          string
	port          int
	username      string
	password      string
	fromName      string
	fromEmail     string
	dispatchEmail string
}

// NewSMTPSender creates a sender with the given SMTP credentials. Escalation
// alerts go to the dispatch address.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName, dispatchEmail string) *SMTPSender {
	return &SMTPSender{
		host:          host,
		port:          port,
		username:      username,
		password:      password,
		fromName:      fromName,
		fromEmail:     fromEmail,
		dispatchEmail: dispatchEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendEscalationAlert emails the dispatch address about an escalated call.
func (s *SMTPSender) SendEscalationAlert(ctx context.Context, record transport.CallRecord) error {
	subject := fmt.Sprintf("EMERGENCY escalation: call %s (%s severity)", record.ID, record.EmergencySeverity)
	return s.send(ctx, s.dispatchEmail, subject, escalationBody(record))
}

// SendFollowUp emails a follow-up reminder for a call without an appointment.
func (s *SMTPSender) SendFollowUp(ctx context.Context, toEmail string, record transport.CallRecord) error {
	subject := fmt.Sprintf("Follow up on call %s", record.ID)
	return s.send(ctx, toEmail, subject, followUpBody(record))
}

func escalationBody(record transport.CallRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "An emergency call was escalated at %s.\n\n", record.Timestamp.Format(time.RFC1123))
	fmt.Fprintf(&b, "Severity:   %s\n", record.EmergencySeverity)
	fmt.Fprintf(&b, "Confidence: %.2f\n", record.EmergencyConfidence)
	writeLeadLines(&b, record)
	b.WriteString("\nDispatch a technician immediately.\n")
	return b.String()
}

func followUpBody(record transport.CallRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Call %s from %s ended without an appointment.\n\n", record.ID, record.Timestamp.Format(time.RFC1123))
	writeLeadLines(&b, record)
	b.WriteString("\nPlease reach out to the caller to get them scheduled.\n")
	return b.String()
}

func writeLeadLines(b *strings.Builder, record transport.CallRecord) {
	if record.LeadInfo.Name != "" {
		fmt.Fprintf(b, "Caller:     %s\n", record.LeadInfo.Name)
	}
	if record.LeadInfo.Phone != "" {
		fmt.Fprintf(b, "Phone:      %s\n", record.LeadInfo.Phone)
	}
	if record.LeadInfo.Address != "" {
		fmt.Fprintf(b, "Address:    %s\n", record.LeadInfo.Address)
	}
	if record.LeadInfo.Issue != "" {
		fmt.Fprintf(b, "Issue:      %s\n", record.LeadInfo.Issue)
	}
}

// Compile-time check that SMTPSender implements Sender.
var _ Sender = (*SMTPSender)(nil)
