package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/config"
)

const dateLayout = "Jan 2, 2006, 3:04 PM"

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`You have received a new contact form submission:

Name: {{.Name}}
Email: {{.Email}}
Submitted: {{.Submitted}}

Message:
{{.Message}}

---
This is an automated notification from your portfolio website.
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<h2>New Contact Form Submission</h2>
<p>You have received a new contact from your portfolio website.</p>

<table style="border-collapse: collapse; width: 100%; max-width: 500px;">
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd;"><strong>Name:</strong></td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{.Name}}</td>
  </tr>
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd;"><strong>Email:</strong></td>
    <td style="padding: 8px; border: 1px solid #ddd;"><a href="mailto:{{.Email}}">{{.Email}}</a></td>
  </tr>
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd;"><strong>Submitted:</strong></td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{.Submitted}}</td>
  </tr>
</table>

<h3>Message:</h3>
<div style="background-color: #f5f5f5; padding: 15px; border-radius: 4px;">
  <p style="white-space: pre-wrap;">{{.Message}}</p>
</div>

<p style="color: #777; margin-top: 20px; font-size: 12px;">
  This is an automated notification from your portfolio website.
</p>`))

// Sender is satisfied by *mail.Client.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Email struct {
	sender    Sender
	from      string
	recipient string
	log       *zap.Logger
}

// NewEmail builds an SMTP notifier from cfg. Port 465 style implicit TLS is
// used when cfg.Secure is set, STARTTLS is required otherwise.
func NewEmail(cfg config.EmailConfig, log *zap.Logger) (*Email, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return NewEmailWithSender(client, cfg.User, cfg.Recipient, log), nil
}

func NewEmailWithSender(sender Sender, user, recipient string, log *zap.Logger) *Email {
	return &Email{
		sender:    sender,
		from:      fmt.Sprintf("%q <%s>", "Portfolio Contact", user),
		recipient: recipient,
		log:       log,
	}
}

func (e *Email) NotifyContact(ctx context.Context, c Contact) error {
	msg, err := e.message(c)
	if err != nil {
		return err
	}
	if err := e.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}

	e.log.Info("contact notification sent", zap.String("recipient", e.recipient))
	return nil
}

func (e *Email) message(c Contact) (*mail.Msg, error) {
	data := struct {
		Name, Email, Message, Submitted string
	}{c.Name, c.Email, c.Message, c.SubmittedAt.UTC().Format(dateLayout)}

	var text, html bytes.Buffer
	if err := textBody.Execute(&text, data); err != nil {
		return nil, err
	}
	if err := htmlBody.Execute(&html, data); err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(e.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(e.recipient); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	if err := msg.ReplyTo(c.Email); err != nil {
		e.log.Debug("reply-to skipped", zap.Error(err))
	}
	msg.Subject("New Contact Form Submission: " + c.Name)
	msg.SetBodyString(mail.TypeTextPlain, text.String())
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())
	return msg, nil
}
