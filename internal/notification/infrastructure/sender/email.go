// Package sender 告警的邮件与短信发送实现
package sender

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/suedwestenergie/contact/internal/notification/domain"
)

// SubjectPrefix 告警邮件主题前缀
const SubjectPrefix = "[CRITICAL ERROR] Südwest-Energie - "

// Mailer 邮件投递接口，由 SMTP 发送器实现
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, to []string, subject, contentType, body string) error
}

// EmailSender 告警邮件发送器
type EmailSender struct {
	mailer     Mailer
	recipients []string
}

// NewEmailSender 构造函数
func NewEmailSender(mailer Mailer, recipients []string) *EmailSender {
	return &EmailSender{mailer: mailer, recipients: nonEmpty(recipients)}
}

// Channel 实现 domain.Sender
func (s *EmailSender) Channel() domain.Channel { return domain.ChannelEmail }

// Configured 实现 domain.Sender
func (s *EmailSender) Configured() bool {
	return s.mailer != nil && s.mailer.Configured() && len(s.recipients) > 0
}

// Send 实现 domain.Sender
func (s *EmailSender) Send(ctx context.Context, a *domain.Alert) error {
	body, err := RenderEmail(a)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, s.recipients, SubjectPrefix+a.Title, "text/html", body)
}

type contextEntry struct {
	Key   string
	Value string
}

var emailTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f5f5f5; padding: 20px;">
<div style="max-width: 600px; margin: 0 auto; background-color: white; border-radius: 8px;">
<div style="background-color: #d32f2f; color: white; padding: 20px; text-align: center;">
<h1 style="margin: 0; font-size: 24px;">Kritischer Fehler</h1>
</div>
<div style="padding: 20px;">
<p><strong>Zeitpunkt:</strong> {{.Timestamp}}</p>
{{if .Code}}<p><strong>Fehlercode:</strong> {{.Code}}</p>{{end}}
<p><strong>Fehlermeldung:</strong></p>
<pre style="background-color: #f8f8f8; padding: 10px; white-space: pre-wrap;">{{.Message}}</pre>
{{if .Context}}<p><strong>Kontext:</strong></p>
<ul>{{range .Context}}<li>{{.Key}}: {{.Value}}</li>{{end}}</ul>{{end}}
</div>
</div>
</body>
</html>
`))

// RenderEmail 渲染告警邮件正文
func RenderEmail(a *domain.Alert) (string, error) {
	entries := make([]contextEntry, 0, len(a.Context))
	for k, v := range a.Context {
		entries = append(entries, contextEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, map[string]any{
		"Timestamp": a.OccurredAt.Format("2006-01-02 15:04:05"),
		"Code":      a.Code,
		"Message":   a.Message,
		"Context":   entries,
	})
	if err != nil {
		return "", fmt.Errorf("render alert email: %w", err)
	}
	return buf.String(), nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
