package mail

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"airport-vms/config"
	"airport-vms/internal/core/domain"

	"github.com/rs/zerolog"
)

const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
)

var retryBackoff = []time.Duration{200 * time.Millisecond, time.Second, 3 * time.Second}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport posts each message as JSON to a mail relay API.
// Transport errors and 5xx responses are retried; 4xx responses are not.
type HTTPTransport struct {
	cfg    config.MailHTTPConfig
	client HTTPClient
	log    zerolog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewHTTPTransport(cfg config.MailHTTPConfig, client HTTPClient, log zerolog.Logger) *HTTPTransport {
	return &HTTPTransport{cfg: cfg, client: client, log: log, now: time.Now, sleep: sleepCtx}
}

func (t *HTTPTransport) Send(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= t.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := t.sleep(ctx, backoff(attempt)); err != nil {
				return fmt.Errorf("mail relay: %w (last error: %v)", err, lastErr)
			}
		}

		retry, err := t.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		t.log.Warn().Err(err).Int("attempt", attempt+1).Str("to", msg.To).Msg("mail relay attempt failed")
	}
	return lastErr
}

// post reports whether a failure is worth retrying.
func (t *HTTPTransport) post(ctx context.Context, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	}
	if t.cfg.SigningSecret != "" {
		ts := strconv.FormatInt(t.now().Unix(), 10)
		req.Header.Set(HeaderTimestamp, ts)
		req.Header.Set(HeaderSignature, Sign(t.cfg.SigningSecret, ts, body))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("mail relay request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("mail relay returned %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("mail relay rejected message: %d", resp.StatusCode)
	}
}

// Sign returns hex(HMAC-SHA256(secret, timestamp + "." + body)).
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func backoff(attempt int) time.Duration {
	if attempt-1 < len(retryBackoff) {
		return retryBackoff[attempt-1]
	}
	return retryBackoff[len(retryBackoff)-1]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
