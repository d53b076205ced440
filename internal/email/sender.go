// Package email renders and delivers the operational emails the platform
// sends to tenant staff. End users chat with the agent; they never receive
// email from us.
package email

import "context"

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte
	FileName string
	MIMEType string
}

type Sender interface {
	SendHandoffAlertEmail(ctx context.Context, toEmail, tenantName, userName, reason, summary string) error
	SendLeadQualifiedEmail(ctx context.Context, toEmail, tenantName, userName, stage string, score int, reason string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender is used when email delivery is disabled. Every send succeeds
// without doing anything.
type NoopSender struct{}

func (NoopSender) SendHandoffAlertEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendLeadQualifiedEmail(context.Context, string, string, string, string, int, string) error {
	return nil
}

func (NoopSender) SendCustomEmail(context.Context, string, string, string) error {
	return nil
}
