package notify

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// MailSender delivers a single message; swapped for a stub in tests.
type MailSender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender sends mail through the configured SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewSMTPSender constructs the SMTP mail sender.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, password: password, from: from}
}

// Send dials the relay and delivers one message.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	d.SSL = s.port == 465
	return d.DialAndSend(m)
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<h2>Thank you for your purchase</h2>
<p>Order {{.ID}} is paid.</p>
<table>
{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{printf "%.2f" .Price}}</td></tr>
{{end}}</table>
<p>Total: {{printf "%.2f" .TotalPrice}}</p>
`))

var reviewTemplate = template.Must(template.New("review").Parse(`
<h2>Your order has been delivered</h2>
<p>Order {{.ID}} is on its way to you. We would love to hear what you think of your purchase.</p>
`))

var newOrderTemplate = template.Must(template.New("newOrder").Parse(`
<h2>New order received</h2>
<p>Order {{.ID}} from customer {{.UserID}}, {{len .Items}} item(s), total {{printf "%.2f" .TotalPrice}}.</p>
`))

func renderOrder(tmpl *template.Template, order *model.Order) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
