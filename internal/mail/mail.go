package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/common/config"
)

// Sender delivers portal emails. A nil Sender means outbound mail is not
// configured and recovery flows must answer 503.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

const resetTemplate = `<p>Olá {{.Name}},</p>
<p>Recebemos um pedido para redefinir a sua senha. Use o link abaixo para escolher uma nova senha. O link expira em uma hora.</p>
<p><a href="{{.Link}}">Redefinir senha</a></p>
<p>Se você não pediu a redefinição, ignore esta mensagem.</p>`

// SMTPSender delivers mail over SMTP with STARTTLS.
type SMTPSender struct {
	cfg    *config.MailConfig
	tmpl   *template.Template
	logger *zap.Logger
}

// NewSender builds a sender from configuration, or nil when mail is
// disabled.
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled() {
		logger.Warn("outbound mail disabled, password recovery will be unavailable")
		return nil
	}
	return &SMTPSender{
		cfg:    cfg,
		tmpl:   template.Must(template.New("reset").Parse(resetTemplate)),
		logger: logger.Named("mail"),
	}
}

// SendPasswordReset emails a reset link built from the configured base URL.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s?token=%s", s.cfg.ResetBaseURL, url.QueryEscape(token))

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, map[string]string{"Name": name, "Link": link}); err != nil {
		return err
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.cfg.From),
		fmt.Sprintf("To: %s", to),
		"Subject: Redefinição de senha",
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}, "\r\n")

	s.logger.Info("sending password reset mail", zap.String("to", to))
	if err := s.send(ctx, to, []byte(msg)); err != nil {
		return err
	}
	s.logger.Info("password reset mail sent", zap.String("to", to))
	return nil
}

func (s *SMTPSender) send(ctx context.Context, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{Timeout: 8 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	// Deadline covers the whole SMTP conversation.
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
