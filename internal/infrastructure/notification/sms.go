// Package notification texts parcel receivers through an SMS gateway.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/config"
)

// SMSSender delivers a single text message
type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// ErrInvalidRecipient is returned for numbers that cannot be normalised
var ErrInvalidRecipient = errors.New("invalid SMS recipient")

// RestySMSSender posts messages to an HTTP SMS gateway
type RestySMSSender struct {
	client   *resty.Client
	senderID string
}

type sendRequest struct {
	To       string `json:"to"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

type gatewayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewRestySMSSender builds a client for {base_url}/messages with a bearer key
func NewRestySMSSender(cfg config.SMSConfig) *RestySMSSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &RestySMSSender{client: client, senderID: cfg.SenderID}
}

func (s *RestySMSSender) Send(ctx context.Context, to, message string) error {
	recipient, err := NormalizePhone(to)
	if err != nil {
		return err
	}

	apiErr := new(gatewayError)
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendRequest{To: recipient, Message: message, SenderID: s.senderID}).
		SetError(apiErr).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		return fmt.Errorf("sms gateway error: status=%d, message=%s", resp.StatusCode(), msg)
	}
	return nil
}

// NoopSMSSender logs messages instead of sending them
type NoopSMSSender struct {
	logger *zap.Logger
}

func NewNoopSMSSender(logger *zap.Logger) *NoopSMSSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopSMSSender{logger: logger}
}

func (s *NoopSMSSender) Send(_ context.Context, to, message string) error {
	s.logger.Info("sms disabled, message not sent", zap.String("to", to), zap.String("message", message))
	return nil
}

// NewSMSSender picks the gateway client or the no-op sender from config
func NewSMSSender(cfg config.SMSConfig, logger *zap.Logger) SMSSender {
	if cfg.Enabled {
		return NewRestySMSSender(cfg)
	}
	return NewNoopSMSSender(logger)
}

// NormalizePhone turns local numbers (07..., 01...) into E.164 with the 254
// country code. Numbers already in international form are kept.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, raw)
		}
	}
	n := b.String()
	switch {
	case strings.HasPrefix(n, "+"):
	case strings.HasPrefix(n, "254"):
		n = "+" + n
	case strings.HasPrefix(n, "0") && len(n) == 10:
		n = "+254" + n[1:]
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, raw)
	}
	if len(n) < 11 || len(n) > 16 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, raw)
	}
	return n, nil
}

var (
	_ SMSSender = (*RestySMSSender)(nil)
	_ SMSSender = (*NoopSMSSender)(nil)
)
