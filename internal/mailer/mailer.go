package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/maintech/api/internal/config"
)

// Mailer sends the out-of-band emails of the auth flows. Delivery is
// best-effort: a failed send is logged and the triggering request still
// succeeds, so callers use the Send* helpers without checking errors.
type Mailer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendApprovalCode(to, prenom, code string) {
	subject := "MainTech - Code d'activation"
	body := fmt.Sprintf(
		"Bonjour %s,\n\nVotre code d'activation MainTech est : %s\n\nSaisissez ce code pour activer votre compte.",
		prenom, code,
	)
	m.send(to, subject, body)
}

func (m *Mailer) SendResetLink(to, token string) {
	subject := "MainTech - Réinitialisation du mot de passe"
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, token)
	body := fmt.Sprintf(
		"Bonjour,\n\nPour réinitialiser votre mot de passe, cliquez sur ce lien : %s\n\nCe lien expire dans une heure.",
		resetURL,
	)
	m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) {
	if m.cfg.SMTPHost == "" {
		log.Printf("📧 SMTP not configured, skipping mail to %s (%s)", to, subject)
		return
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.MailFrom, to, subject, body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{to}, []byte(msg)); err != nil {
		log.Printf("⚠️  Failed to send mail to %s: %v", to, err)
	}
}
