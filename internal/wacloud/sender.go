package wacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ratelimit"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// SenderConfig configures a Sender.
type SenderConfig struct {
	BaseURL       string // e.g. https://graph.facebook.com; overridable for tests
	APIVersion    string // e.g. v21.0
	PhoneNumberID string
	AccessToken   string

	HTTPClient *http.Client       // optional; defaults to one with SendRequest timeout
	Limiter    *ratelimit.Limiter // optional outbound pacing

	MaxRetries   int
	RetryInitial time.Duration

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Sender delivers text messages through the Graph API messages endpoint.
type Sender struct {
	client        *http.Client
	baseURL       string
	apiVersion    string
	phoneNumberID string
	accessToken   string
	limiter       *ratelimit.Limiter
	maxRetries    int
	retryInitial  time.Duration
	log           *logger.Logger
	met           *metrics.Metrics
}

// NewSender creates a Graph API sender.
func NewSender(cfg SenderConfig) *Sender {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.SendRequest}
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = config.SendRetryInitial
	}
	return &Sender{
		client:        client,
		baseURL:       cfg.BaseURL,
		apiVersion:    cfg.APIVersion,
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		limiter:       cfg.Limiter,
		maxRetries:    cfg.MaxRetries,
		retryInitial:  cfg.RetryInitial,
		log:           cfg.Logger,
		met:           cfg.Metrics,
	}
}

// sendRequest is the Graph API messages payload for a text send.
type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             sendText `json:"text"`
}

type sendText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// sendResponse is the subset of the Graph API reply the sender uses.
type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// SendText delivers one text message and returns the provider message id.
// Bodies over the WhatsApp text limit are truncated, transient failures
// (429 and 5xx) are retried with exponential backoff.
func (s *Sender) SendText(ctx context.Context, to, body string) (string, error) {
	if to == "" || body == "" {
		return "", fmt.Errorf("%w: recipient and body are required", apperrors.ErrInvalidInput)
	}
	body = stringutil.Truncate(body, config.WhatsAppMaxTextLength)

	if s.limiter != nil {
		waitStart := time.Now()
		if err := s.limiter.Wait(ctx); err != nil {
			s.recordSend("rate_limited")
			return "", apperrors.NewSendError(to, 0, fmt.Errorf("%w: %w", apperrors.ErrRateLimitExceeded, err))
		}
		s.recordWait(time.Since(waitStart).Seconds())
	}

	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             sendText{Body: body},
	})
	if err != nil {
		return "", apperrors.NewSendError(to, 0, err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.recordRetry()
			delay := s.retryInitial << (attempt - 1)
			s.log.WithField("to", to).WithField("attempt", attempt).
				WithField("delay", delay.String()).DebugContext(ctx, "Retrying outbound send")
			select {
			case <-ctx.Done():
				s.recordSend("error")
				return "", apperrors.NewSendError(to, 0, wrapDeadline(ctx.Err()))
			case <-time.After(delay):
			}
		}

		id, retryable, err := s.attempt(ctx, to, payload)
		if err == nil {
			s.recordSend("success")
			return id, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	s.recordSend("error")
	s.log.WithError(lastErr).WithField("to", to).ErrorContext(ctx, "Outbound send failed")
	return "", fmt.Errorf("%w: %w", apperrors.ErrSendFailed, lastErr)
}

// attempt performs one HTTP round trip. The second return value reports
// whether the failure is worth retrying.
func (s *Sender) attempt(ctx context.Context, to string, payload []byte) (string, bool, error) {
	url := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.apiVersion, s.phoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, apperrors.NewSendError(to, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		// Network errors are transient until proven otherwise.
		return "", true, apperrors.NewSendError(to, 0, wrapDeadline(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, apperrors.NewSendError(to, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := errors.New(http.StatusText(resp.StatusCode))
		var parsed sendResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil {
			apiErr = fmt.Errorf("%s (code %d)", parsed.Error.Message, parsed.Error.Code)
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, apperrors.NewSendError(to, resp.StatusCode, apiErr)
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, apperrors.NewSendError(to, resp.StatusCode, err)
	}
	if len(parsed.Messages) == 0 {
		return "", false, apperrors.NewSendError(to, resp.StatusCode, errors.New("response carried no message id"))
	}
	return parsed.Messages[0].ID, false, nil
}

// wrapDeadline tags deadline failures so callers can errors.Is against
// the timeout sentinel instead of matching on context internals.
func wrapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	}
	return err
}

func (s *Sender) recordSend(status string) {
	if s.met != nil {
		s.met.RecordSend(status)
	}
}

func (s *Sender) recordRetry() {
	if s.met != nil {
		s.met.RecordSendRetry()
	}
}

func (s *Sender) recordWait(seconds float64) {
	if s.met != nil {
		s.met.RecordRateLimiterWait("send", seconds)
	}
}
