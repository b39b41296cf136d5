package services

import (
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"strings"

	"quizhub-backend/internal/models"
)

type EmailService struct {
	host        string
	port        string
	user        string
	pass        string
	from        string
	frontendURL string
	devMode     bool
}

func NewEmailService(host, port, user, pass, from, frontendURL string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		slog.Warn("email: running in dev mode, messages are logged instead of sent")
	}
	return &EmailService{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		from:        from,
		frontendURL: frontendURL,
		devMode:     devMode,
	}
}

func (s *EmailService) SendFeedbackNotification(n models.FeedbackNotification) error {
	subject := fmt.Sprintf("New %s feedback on QuizHub", feedbackLabel(n.Type))

	about := "General feedback"
	if n.QuizTitle != "" {
		about = "Quiz: " + html.EscapeString(n.QuizTitle)
	}
	adminURL := fmt.Sprintf("%s/admin/feedback", s.frontendURL)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 520px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #2563eb 0%%, #7c3aed 100%%); padding: 24px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 22px; font-weight: 700;">QuizHub</h1>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 8px; font-size: 18px; color: #1e293b;">%s</h2>
      <p style="color: #64748b; font-size: 13px; margin: 0 0 16px;">From %s &middot; %s</p>
      <blockquote style="margin: 0 0 24px; padding: 12px 16px; border-left: 4px solid #2563eb; background: #f1f5f9; color: #334155; font-size: 14px; line-height: 1.6; white-space: pre-wrap;">%s</blockquote>
      <a href="%s" style="display: inline-block; background: #2563eb; color: white; text-decoration: none; padding: 10px 24px; border-radius: 8px; font-weight: 600; font-size: 14px;">
        Open feedback inbox
      </a>
    </div>
  </div>
</body>
</html>`, html.EscapeString(subject), html.EscapeString(n.From), about, html.EscapeString(n.Message), adminURL)

	return s.sendHTML(n.Recipient, subject, body)
}

func feedbackLabel(t models.FeedbackType) string {
	switch t {
	case models.FeedbackBugReport:
		return "bug report"
	case models.FeedbackSuggestion:
		return "suggestion"
	default:
		return "question"
	}
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		slog.Info("email: dev mode", "to", to, "subject", subject, "bytes", len(htmlBody))
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	slog.Info("email: sent", "to", to, "subject", subject)
	return nil
}
