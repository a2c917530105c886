package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Sender delivers a rendered invoice.
type Sender interface {
	Send(ctx context.Context, sub Submission, html string) error
}

// DefaultEndpoint is the EmailJS REST send endpoint.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned by EmailJSSender when a key is missing.
var ErrNotConfigured = errors.New("email sender is not configured")

// SendError reports a delivery the provider refused.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("email provider returned %d", e.Status)
	}
	return fmt.Sprintf("email provider returned %d: %s", e.Status, e.Body)
}

// EmailJSSender posts submissions to the EmailJS REST API with the same
// template parameters the web page sends.
type EmailJSSender struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string

	Client *http.Client
	Logger *slog.Logger
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// templateParams mirrors the web page payload. Optional contact fields
// are included only when set.
func templateParams(sub Submission, html string) map[string]string {
	params := map[string]string{
		"client_name":  sub.ClientName,
		"offer_name":   sub.OfferName,
		"price":        sub.Price,
		"signature":    sub.SignatureImage,
		"date":         sub.FormattedDate(),
		"invoice_html": html,
	}
	for k, v := range map[string]string{
		"contact_name": sub.ContactName,
		"phone":        sub.Phone,
		"email":        sub.Email,
	} {
		if v != "" {
			params[k] = v
		}
	}
	return params
}

// Send makes exactly one delivery attempt.
func (s *EmailJSSender) Send(ctx context.Context, sub Submission, html string) error {
	if s.ServiceID == "" || s.TemplateID == "" || s.PublicKey == "" {
		return ErrNotConfigured
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.ServiceID,
		TemplateID:     s.TemplateID,
		UserID:         s.PublicKey,
		TemplateParams: templateParams(sub, html),
	})
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &SendError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	logger.Info("invoice sent", "offer", sub.OfferName, "client", sub.ClientName)
	return nil
}
