package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"pharma-portal/internal/mailer"

	"go.uber.org/zap"
)

// EmailRequest is the payload of the send-email function
type EmailRequest struct {
	Type         mailer.Kind
	Email        string
	Name         string
	PharmacyName string
	Message      string
	RedirectTo   string
}

// EmailResult mirrors the function's success payload
type EmailResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EmailID string `json:"emailId"`
}

// EmailService renders and sends transactional email
type EmailService interface {
	Send(ctx context.Context, req EmailRequest) (*EmailResult, error)
}

type emailService struct {
	sender       mailer.Sender
	staffAddress string
	siteURL      string
	logger       *zap.Logger
}

// NewEmailService creates a new instance of EmailService
func NewEmailService(sender mailer.Sender, staffAddress, siteURL string, logger *zap.Logger) EmailService {
	return &emailService{
		sender:       sender,
		staffAddress: staffAddress,
		siteURL:      strings.TrimRight(siteURL, "/"),
		logger:       logger,
	}
}

// Send dispatches by type. A contact request produces two messages: a
// notification to staff and an auto-reply to the sender.
func (s *emailService) Send(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	data := mailer.TemplateData{
		Name:         req.Name,
		Email:        req.Email,
		PharmacyName: req.PharmacyName,
		Message:      req.Message,
	}

	switch req.Type {
	case mailer.KindSignup:
		data.Link = s.link(req.RedirectTo, "/login")
		id, err := s.send(ctx, "signup", "Bitte bestätigen Sie Ihre Registrierung", []string{req.Email}, "", data)
		if err != nil {
			return nil, err
		}
		return &EmailResult{Success: true, Message: "Signup email sent", EmailID: id}, nil

	case mailer.KindPasswordReset:
		data.Link = s.link(req.RedirectTo, "/reset-password")
		id, err := s.send(ctx, "password-reset", "Passwort zurücksetzen", []string{req.Email}, "", data)
		if err != nil {
			return nil, err
		}
		return &EmailResult{Success: true, Message: "Password reset email sent", EmailID: id}, nil

	case mailer.KindContact:
		if strings.TrimSpace(req.Message) == "" {
			return nil, ErrMessageRequired
		}
		subject := fmt.Sprintf("Neue Kontaktanfrage von %s", displayName(req))
		id, err := s.send(ctx, "contact-staff", subject, []string{s.staffAddress}, req.Email, data)
		if err != nil {
			return nil, err
		}
		if _, err := s.send(ctx, "contact-reply", "Wir haben Ihre Nachricht erhalten", []string{req.Email}, "", data); err != nil {
			// the staff copy already went out
			s.logger.Warn("Contact auto-reply failed", zap.String("email", req.Email), zap.Error(err))
		}
		return &EmailResult{Success: true, Message: "Contact request sent", EmailID: id}, nil

	default:
		return nil, ErrInvalidEmailType
	}
}

func (s *emailService) send(ctx context.Context, template, subject string, to []string, replyTo string, data mailer.TemplateData) (string, error) {
	html, err := mailer.Render(template, data)
	if err != nil {
		return "", err
	}

	id, err := s.sender.Send(ctx, mailer.Message{
		To:      to,
		Subject: subject,
		HTML:    html,
		ReplyTo: replyTo,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send %s email: %w", template, err)
	}

	s.logger.Info("Email sent", zap.String("template", template), zap.String("email_id", id))
	return id, nil
}

// link prefers the caller's redirect target over the site default.
// Targets on another host than the site fall back to the default.
func (s *emailService) link(redirectTo, fallbackPath string) string {
	fallback := s.siteURL + fallbackPath
	if redirectTo == "" {
		return fallback
	}
	if !sameHost(redirectTo, s.siteURL) {
		s.logger.Warn("Rejected off-site email link", zap.String("redirect_to", redirectTo))
		return fallback
	}
	return redirectTo
}

// sameHost reports whether target is an absolute http(s) URL on the
// host of siteURL
func sameHost(target, siteURL string) bool {
	site, err := url.Parse(siteURL)
	if err != nil || site.Host == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, site.Host)
}

func displayName(req EmailRequest) string {
	if req.Name != "" {
		return req.Name
	}
	return req.Email
}
