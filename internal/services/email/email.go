// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"codeberg.org/oliverandrich/teaching-award/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Confirmation is one nomination awaiting confirmation through its token.
type Confirmation struct {
	Lecturer string
	Token    string
}

// Service sends confirmation emails. Without an SMTP host, messages are
// written to the log instead.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// VerifyURL returns the link that redeems token.
func (s *Service) VerifyURL(token string) string {
	return fmt.Sprintf("%s/verify/%s", s.baseURL, token)
}

// SendConfirmation sends one email listing a confirmation link per nomination.
func (s *Service) SendConfirmation(ctx context.Context, to string, confirmations []Confirmation) error {
	if len(confirmations) == 0 {
		return nil
	}

	msg, err := s.ConfirmationMessage(ctx, to, confirmations)
	if err != nil {
		return err
	}

	if s.cfg.Host == "" {
		slog.InfoContext(ctx, "smtp disabled, confirmation email not sent", "to", to, "nominations", len(confirmations))
		// links carry live tokens; keep them out of production logs
		if slog.Default().Enabled(ctx, slog.LevelDebug) {
			links := make([]string, len(confirmations))
			for i, c := range confirmations {
				links[i] = s.VerifyURL(c.Token)
			}
			slog.DebugContext(ctx, "confirmation links", "to", to, "links", links)
		}
		return nil
	}

	return s.send(ctx, msg)
}

// ConfirmationMessage builds the localized confirmation email.
func (s *Service) ConfirmationMessage(ctx context.Context, to string, confirmations []Confirmation) (*mail.Msg, error) {
	var links strings.Builder
	for _, c := range confirmations {
		fmt.Fprintf(&links, "- %s: %s\n", c.Lecturer, s.VerifyURL(c.Token))
	}

	subject := i18n.TPlural(ctx, "email_confirm_subject", len(confirmations))
	body := i18n.TData(ctx, "email_confirm_body", map[string]any{
		"Links": strings.TrimRight(links.String(), "\n"),
	})

	// 8bit keeps long links intact, quoted-printable would wrap them.
	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

// send delivers msg via SMTP using go-mail.
func (s *Service) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
