// Package mail holds the MailTransport implementations selected by mail.driver.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"airport-vms/config"
	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned by the transport used when no driver is set.
var ErrNotConfigured = errors.New("mail: no transport configured")

const (
	DriverSMTP = "smtp"
	DriverHTTP = "http"
	DriverLog  = "log"
)

// NewTransport builds the transport selected by cfg.Driver.
// An empty driver yields a transport that always fails, so approvals still
// succeed with notified=false.
func NewTransport(cfg config.MailConfig, log zerolog.Logger) (ports.MailTransport, error) {
	switch cfg.Driver {
	case DriverSMTP:
		if cfg.SMTP.Host == "" {
			return nil, errors.New("mail: smtp.host is required for the smtp driver")
		}
		return NewSMTPTransport(cfg.SMTP), nil
	case DriverHTTP:
		if cfg.HTTP.Endpoint == "" {
			return nil, errors.New("mail: http.endpoint is required for the http driver")
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		return NewHTTPTransport(cfg.HTTP, &http.Client{Timeout: timeout}, log), nil
	case DriverLog:
		return NewLogTransport(log), nil
	case "":
		log.Warn().Msg("mail driver not configured, notices will not be delivered")
		return Unconfigured{}, nil
	}
	return nil, fmt.Errorf("mail: unknown driver %q", cfg.Driver)
}

// Unconfigured fails every send with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Send(context.Context, domain.MailMessage) error { return ErrNotConfigured }

// LogTransport writes the envelope to the log and drops the body, which
// may contain credentials. Intended for local development.
type LogTransport struct {
	log zerolog.Logger
}

func NewLogTransport(log zerolog.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, msg domain.MailMessage) error {
	t.log.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.HTMLBody)).
		Msg("mail (log driver, not delivered)")
	return nil
}
