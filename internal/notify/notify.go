// Package notify — уведомления о новых заявках с формы контактов.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"linksite/internal/core"
	"linksite/internal/storage"

	"github.com/go-mail/mail"
)

// Notifier сообщает менеджерам о новой заявке.
type Notifier interface {
	InquiryReceived(ctx context.Context, in storage.Inquiry) error
}

// Noop — SMTP не настроен; заявка уже в БД, письмо не обязательно.
type Noop struct{}

func (Noop) InquiryReceived(context.Context, storage.Inquiry) error { return nil }

// SMTP отправляет письмо через go-mail (STARTTLS, если сервер его предлагает).
type SMTP struct {
	cfg      core.SMTPConfig
	siteName string
	send     func(*mail.Message) error
}

// New возвращает Noop при пустом SMTP_HOST или SMTP_TO.
func New(cfg core.SMTPConfig, siteName string) Notifier {
	if cfg.Host == "" || cfg.To == "" {
		return Noop{}
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Port == 465 {
		d.SSL = true
	}
	return &SMTP{cfg: cfg, siteName: siteName, send: func(m *mail.Message) error { return d.DialAndSend(m) }}
}

func (s *SMTP) InquiryReceived(ctx context.Context, in storage.Inquiry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(s.message(in)); err != nil {
		core.LogError("smtp send", map[string]interface{}{"inquiry": in.ID, "host": s.cfg.Host, "error": err.Error()})
		return fmt.Errorf("smtp send: %w", err)
	}
	core.LogInfo("smtp send ok", map[string]interface{}{"inquiry": in.ID})
	return nil
}

func (s *SMTP) message(in storage.Inquiry) *mail.Message {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Reply-To", m.FormatAddress(in.Email, in.Name))
	m.SetHeader("Subject", fmt.Sprintf("[%s] Новая заявка от %s", s.siteName, in.Name))
	m.SetBody("text/plain", inquiryText(in))
	return m
}

func inquiryText(in storage.Inquiry) string {
	var b strings.Builder
	line := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	line("Заявка", in.ID)
	line("Имя", in.Name)
	line("Email", in.Email)
	line("Компания", in.Company)
	line("Сайт", in.Website)
	line("Бюджет", in.Budget)
	line("IP", in.IP)
	b.WriteString("\n")
	b.WriteString(in.Message)
	b.WriteString("\n")
	return b.String()
}
