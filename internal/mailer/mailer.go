// Package mailer is the outbound email capability: one Send call per
// reminder, using the owner's own SMTP settings. The rest of the system
// only sees the Sender interface, so tests swap in a recording fake.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/smtp"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/facturio/relance/internal/models"
)

// Sender delivers one email. A non-nil error means nothing was delivered
// and the caller must leave its state unchanged so the send is retried.
type Sender interface {
	Send(ctx context.Context, settings models.EmailSettings, to, subject, html, attachmentURL string) error
}

// maxAttachmentBytes caps fetched invoice PDFs. Anything larger is sent
// without the attachment rather than failing the reminder.
const maxAttachmentBytes = 10 << 20

// SMTPSender sends through the owner's SMTP server with PLAIN auth.
type SMTPSender struct {
	httpClient *http.Client
}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

func (s *SMTPSender) Send(ctx context.Context, settings models.EmailSettings, to, subject, html, attachmentURL string) error {
	if settings.SMTPHost == "" || settings.FromAddress == "" {
		return fmt.Errorf("paramètres SMTP incomplets pour l'expéditeur %q", settings.FromAddress)
	}

	var attachment []byte
	var filename string
	if attachmentURL != "" {
		var err error
		attachment, filename, err = s.fetchAttachment(ctx, attachmentURL)
		if err != nil {
			// Un PDF indisponible ne doit pas bloquer la relance.
			attachment, filename = nil, ""
		}
	}

	from := settings.FromAddress
	msg := buildMessage(settings, to, subject, html, attachment, filename)

	addr := fmt.Sprintf("%s:%d", settings.SMTPHost, settings.SMTPPort)
	var auth smtp.Auth
	if settings.SMTPUsername != "" {
		auth = smtp.PlainAuth("", settings.SMTPUsername, settings.SMTPPassword, settings.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("envoi SMTP vers %s: %w", to, err)
	}
	return nil
}

func (s *SMTPSender) fetchAttachment(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("attachment fetch: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxAttachmentBytes {
		return nil, "", fmt.Errorf("attachment exceeds %d bytes", maxAttachmentBytes)
	}
	return data, attachmentName(rawURL), nil
}

func attachmentName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "." || path.Base(u.Path) == "/" {
		return "facture.pdf"
	}
	return path.Base(u.Path)
}

// buildMessage assembles the raw RFC 5322 message: plain HTML when there is
// no attachment, multipart/mixed with a base64 PDF part otherwise.
func buildMessage(settings models.EmailSettings, to, subject, html string, attachment []byte, filename string) []byte {
	var b strings.Builder
	fromHeader := settings.FromAddress
	if settings.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", settings.FromName), settings.FromAddress)
	}
	fmt.Fprintf(&b, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(attachment) == 0 {
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
		b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
		b.WriteString(html)
		b.WriteString("\r\n")
		return []byte(b.String())
	}

	const boundary = "relance-boundary-7f3a9c"
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: application/pdf; name=%q\r\n", filename)
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", filename)
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	fmt.Fprintf(&b, "\r\n--%s--\r\n", boundary)
	return []byte(b.String())
}
