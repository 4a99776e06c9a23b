package mail

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"airport-vms/config"
	"airport-vms/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() domain.MailMessage {
	return domain.MailMessage{
		From:     "noreply@airport.test",
		To:       "a@b.com",
		Subject:  "Vendor Application Approved",
		HTMLBody: "<p>Dear Ada Park,</p>\n<p>welcome</p>",
	}
}

func TestNewTransport_Drivers(t *testing.T) {
	log := zerolog.Nop()

	tr, err := NewTransport(config.MailConfig{}, log)
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Send(context.Background(), testMessage()), ErrNotConfigured)

	tr, err = NewTransport(config.MailConfig{Driver: DriverLog}, log)
	require.NoError(t, err)
	assert.NoError(t, tr.Send(context.Background(), testMessage()))

	tr, err = NewTransport(config.MailConfig{Driver: DriverSMTP, SMTP: config.SMTPConfig{Host: "smtp.test", Port: 587}}, log)
	require.NoError(t, err)
	assert.IsType(t, &SMTPTransport{}, tr)

	tr, err = NewTransport(config.MailConfig{Driver: DriverHTTP, HTTP: config.MailHTTPConfig{Endpoint: "http://relay.test/send"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &HTTPTransport{}, tr)
}

func TestNewTransport_Invalid(t *testing.T) {
	log := zerolog.Nop()

	_, err := NewTransport(config.MailConfig{Driver: DriverSMTP}, log)
	assert.Error(t, err)
	_, err = NewTransport(config.MailConfig{Driver: DriverHTTP}, log)
	assert.Error(t, err)
	_, err = NewTransport(config.MailConfig{Driver: "pigeon"}, log)
	assert.ErrorContains(t, err, "pigeon")
}

func TestBuildMessage(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	raw := string(buildMessage(testMessage(), at))

	assert.Contains(t, raw, "From: noreply@airport.test\r\n")
	assert.Contains(t, raw, "To: a@b.com\r\n")
	assert.Contains(t, raw, "Subject: Vendor Application Approved\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	assert.Contains(t, raw, "Date: "+at.Format(time.RFC1123Z))

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "MIME-Version: 1.0")
	assert.Equal(t, "<p>Dear Ada Park,</p>\r\n<p>welcome</p>", body)
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := testMessage()
	msg.Subject = "Bienvenue à l'aéroport"

	raw := string(buildMessage(msg, time.Now()))
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
}

func TestSMTPTransport_DialFailure(t *testing.T) {
	tr := NewSMTPTransport(config.SMTPConfig{Host: "smtp.test", Port: 25})
	dialErr := errors.New("connection refused")
	tr.dial = func(context.Context, string, string) (net.Conn, error) { return nil, dialErr }

	err := tr.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, dialErr)
}

func TestHTTPTransport_SendSigned(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := config.MailHTTPConfig{Endpoint: srv.URL, APIKey: "key-1", SigningSecret: "s3cret"}
	tr := NewHTTPTransport(cfg, srv.Client(), zerolog.Nop())
	tr.now = func() time.Time { return time.Unix(1700000000, 0) }

	require.NoError(t, tr.Send(context.Background(), testMessage()))

	assert.Equal(t, "Bearer key-1", gotHeader.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "1700000000", gotHeader.Get(HeaderTimestamp))
	assert.Equal(t, Sign("s3cret", "1700000000", gotBody), gotHeader.Get(HeaderSignature))
	assert.Contains(t, string(gotBody), `"to":"a@b.com"`)
	assert.Contains(t, string(gotBody), `"html":`)
}

func TestHTTPTransport_NoSignatureWithoutSecret(t *testing.T) {
	var signed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signed.Store(r.Header.Get(HeaderSignature) != "")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.MailHTTPConfig{Endpoint: srv.URL}, srv.Client(), zerolog.Nop())
	require.NoError(t, tr.Send(context.Background(), testMessage()))
	assert.False(t, signed.Load())
}

func TestHTTPTransport_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.MailHTTPConfig{Endpoint: srv.URL, MaxRetries: 2}, srv.Client(), zerolog.Nop())
	tr.sleep = func(context.Context, time.Duration) error { return nil }

	require.NoError(t, tr.Send(context.Background(), testMessage()))
	assert.EqualValues(t, 3, calls.Load())
}

func TestHTTPTransport_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.MailHTTPConfig{Endpoint: srv.URL, MaxRetries: 1}, srv.Client(), zerolog.Nop())
	tr.sleep = func(context.Context, time.Duration) error { return nil }

	err := tr.Send(context.Background(), testMessage())
	assert.ErrorContains(t, err, "503")
	assert.EqualValues(t, 2, calls.Load())
}

func TestHTTPTransport_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.MailHTTPConfig{Endpoint: srv.URL, MaxRetries: 3}, srv.Client(), zerolog.Nop())
	tr.sleep = func(context.Context, time.Duration) error { return nil }

	err := tr.Send(context.Background(), testMessage())
	assert.ErrorContains(t, err, "rejected")
	assert.EqualValues(t, 1, calls.Load())
}

func TestHTTPTransport_StopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.MailHTTPConfig{Endpoint: srv.URL, MaxRetries: 5}, srv.Client(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	tr.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := tr.Send(ctx, testMessage())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSign_Deterministic(t *testing.T) {
	a := Sign("k", "1", []byte("body"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Sign("k", "1", []byte("body")))
	assert.NotEqual(t, a, Sign("k", "2", []byte("body")))
}
