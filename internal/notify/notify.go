// Package notify fans alerts and digests out to the configured channels.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"net/textproto"

	"github.com/jordan-wright/email"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/pkg/slack"
)

// Notifier delivers messages to Slack and email. Channels without
// configuration are skipped silently.
type Notifier struct {
	slack *slack.Client
	email config.EmailConfig
}

// New creates a Notifier.
func New(slackClient *slack.Client, emailCfg config.EmailConfig) *Notifier {
	return &Notifier{slack: slackClient, email: emailCfg}
}

// Slack posts a text message to the configured webhook.
func (n *Notifier) Slack(ctx context.Context, text string) error {
	if n.slack == nil || !n.slack.Enabled() {
		return nil
	}
	if err := n.slack.Post(ctx, slack.Message{Text: text}); err != nil {
		return eris.Wrap(err, "notify: slack")
	}
	zap.L().Info("notify: slack message sent")
	return nil
}

// Email sends an HTML message to the given recipients via SMTP.
func (n *Notifier) Email(to []string, subject, htmlBody string) error {
	if n.email.Host == "" || n.email.From == "" {
		return nil
	}
	if len(to) == 0 {
		return eris.New("notify: no recipients")
	}

	mail := email.NewEmail()
	mail.From = n.email.From
	mail.To = to
	mail.Subject = subject
	mail.HTML = []byte(htmlBody)
	mail.Headers = textproto.MIMEHeader{}

	addr := fmt.Sprintf("%s:%d", n.email.Host, n.email.Port)
	var auth smtp.Auth
	if n.email.Username != "" {
		auth = smtp.PlainAuth("", n.email.Username, n.email.Password, n.email.Host)
	}

	if err := mail.Send(addr, auth); err != nil {
		return eris.Wrapf(err, "notify: send email via %s", addr)
	}
	zap.L().Info("notify: email sent",
		zap.Strings("to", to),
		zap.String("subject", subject),
	)
	return nil
}
