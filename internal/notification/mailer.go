package notification

import (
	"fmt"

	"geraiku/internal/domain/model"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendStatusChange(to string, orderNumber string, oldStatus model.OrderStatus, newStatus model.OrderStatus) error
}

type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	siteURL string
}

func NewSMTPMailer(host string, port int, user string, password string, from string, siteURL string) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(host, port, user, password),
		from:    from,
		siteURL: siteURL,
	}
}

func (m *SMTPMailer) SendStatusChange(to string, orderNumber string, oldStatus model.OrderStatus, newStatus model.OrderStatus) error {
	if to == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Pesanan %s: %s", orderNumber, newStatus.Meta().Label))
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Status pesanan <b>%s</b> berubah dari <b>%s</b> menjadi <b>%s</b>.</p>
<p><a href="%s/orders">Lihat pesanan</a></p>`,
		orderNumber, oldStatus.Meta().Label, newStatus.Meta().Label, m.siteURL,
	))

	return m.dialer.DialAndSend(msg)
}
