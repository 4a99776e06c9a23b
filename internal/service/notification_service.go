package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	approvalSubject  = "Vendor Application Approved - Airport Vendor Management System"
	rejectionSubject = "Vendor Application Status - Airport Vendor Management System"
)

//go:embed templates/*.html
var templateFS embed.FS

var mailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var errNoTransport = errors.New("mail transport not configured")

// NotificationConfig is owned by the dispatcher; nothing reads the sender from globals.
type NotificationConfig struct {
	From    string
	Timeout time.Duration
}

type notificationService struct {
	transport ports.MailTransport
	cfg       NotificationConfig
	log       zerolog.Logger
}

// NewNotificationService creates a dispatcher. A nil transport makes every send fail.
func NewNotificationService(transport ports.MailTransport, cfg NotificationConfig, log zerolog.Logger) ports.NotificationDispatcher {
	return &notificationService{transport: transport, cfg: cfg, log: log}
}

type approvalData struct {
	Name     string
	LoginID  string
	Password string
}

type rejectionData struct {
	Name   string
	Reason string
}

// SendApprovalNotice mails the one-time credentials to the new vendor.
func (s *notificationService) SendApprovalNotice(ctx context.Context, email, name string, creds domain.Credentials) error {
	body, err := render("approval.html", approvalData{Name: name, LoginID: creds.LoginID, Password: creds.Password})
	if err != nil {
		return notificationError("approval", err)
	}
	return s.send(ctx, "approval", email, approvalSubject, body)
}

// SendRejectionNotice mails the decision and optional reason.
func (s *notificationService) SendRejectionNotice(ctx context.Context, email, name, reason string) error {
	body, err := render("rejection.html", rejectionData{Name: name, Reason: reason})
	if err != nil {
		return notificationError("rejection", err)
	}
	return s.send(ctx, "rejection", email, rejectionSubject, body)
}

func (s *notificationService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.transport == nil {
		return notificationError(kind, errNoTransport)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	msg := domain.MailMessage{From: s.cfg.From, To: to, Subject: subject, HTMLBody: body}
	if err := s.transport.Send(ctx, msg); err != nil {
		return notificationError(kind, err)
	}

	s.log.Info().Str("kind", kind).Str("to", to).Msg("notification sent")
	return nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func notificationError(kind string, err error) error {
	return fmt.Errorf("send %s notice: %w", kind, errors.Join(domain.ErrNotificationFailed, err))
}
