// AngelaMos | 2026
// service.go

package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"text/template"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

var defaultTemplates = map[EmailType]Template{
	TypeConfirmEmail: {
		EmailType: TypeConfirmEmail,
		Subject:   "Confirm your email",
		Message:   "Follow the link to confirm {{.Email}}: {{.Link}}",
	},
	TypePasswordReset: {
		EmailType: TypePasswordReset,
		Subject:   "Password reset",
		Message:   "Follow the link to choose a new password: {{.Link}}",
	},
}

type Service struct {
	repo    Repository
	sender  Sender
	baseURL string
	logger  *slog.Logger
}

func NewService(repo Repository, sender Sender, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		sender:  sender,
		baseURL: baseURL,
		logger:  logger,
	}
}

// BuildLink joins path segments onto baseURL and keeps the trailing slash
// the public routes are documented with.
func BuildLink(baseURL string, segments ...string) (string, error) {
	link, err := url.JoinPath(baseURL, segments...)
	if err != nil {
		return "", fmt.Errorf("build link: %w", err)
	}
	if !strings.HasSuffix(link, "/") {
		link += "/"
	}
	return link, nil
}

func (s *Service) SendConfirmEmail(ctx context.Context, to, urlHash string) error {
	link, err := BuildLink(s.baseURL, "users", "confirm_email", urlHash)
	if err != nil {
		return err
	}
	return s.send(ctx, TypeConfirmEmail, Data{Link: link, Email: to})
}

func (s *Service) SendPasswordReset(ctx context.Context, to, urlHash string) error {
	link, err := BuildLink(s.baseURL, "users", "password_restore", urlHash)
	if err != nil {
		return err
	}
	return s.send(ctx, TypePasswordReset, Data{Link: link, Email: to})
}

func (s *Service) send(ctx context.Context, kind EmailType, data Data) error {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.SendEmails {
		s.logger.Info("email sending disabled, skipping", "email_type", kind)
		return nil
	}

	tpl, err := s.repo.GetTemplate(ctx, kind)
	if errors.Is(err, core.ErrNotFound) {
		fallback := defaultTemplates[kind]
		tpl = &fallback
	} else if err != nil {
		return err
	}

	msg, err := Render(tpl, data)
	if err != nil {
		return err
	}
	msg.To = data.Email

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	s.logger.Info("email sent", "email_type", kind, "email", data.Email)
	return nil
}

// Render executes the template body against data.
func Render(tpl *Template, data Data) (Message, error) {
	body, err := template.New(string(tpl.EmailType)).
		Option("missingkey=error").
		Parse(tpl.Message)
	if err != nil {
		return Message{}, fmt.Errorf("parse %s template: %w", tpl.EmailType, err)
	}

	var sb strings.Builder
	if err := body.Execute(&sb, data); err != nil {
		return Message{}, fmt.Errorf("render %s template: %w", tpl.EmailType, err)
	}

	return Message{Subject: tpl.Subject, Body: sb.String()}, nil
}
