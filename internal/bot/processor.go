package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ctxutil"
	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/nlu"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ratelimit"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/sentry"
)

// Processor handles the core logic of processing inbound messages.
// It orchestrates rate limiting, keyword dispatch, NLU classification,
// and the fallback policy.
type Processor struct {
	registry    *Registry
	classifier  nlu.Classifier
	userLimiter *ratelimit.PerKeyLimiter
	logger      *logger.Logger
	metrics     *metrics.Metrics

	webhookTimeout   time.Duration
	maxMessageLength int
}

// ProcessorConfig holds configuration for creating a new Processor.
type ProcessorConfig struct {
	Registry    *Registry
	Classifier  nlu.Classifier // nil when NLU is not configured
	UserLimiter *ratelimit.PerKeyLimiter
	Logger      *logger.Logger
	Metrics     *metrics.Metrics // may be nil
	BotConfig   *config.BotConfig
}

// NewProcessor creates a new message processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		registry:         cfg.Registry,
		classifier:       cfg.Classifier,
		userLimiter:      cfg.UserLimiter,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		webhookTimeout:   cfg.BotConfig.WebhookTimeout,
		maxMessageLength: cfg.BotConfig.MaxMessageLength,
	}
}

// ProcessMessage handles one inbound text message and returns the reply
// body. An empty reply means nothing should be sent (empty message or a
// rate-limited sender in a quiet window).
func (p *Processor) ProcessMessage(ctx context.Context, msg IncomingMessage) (out string, err error) {
	ctx = ctxutil.WithUserID(ctx, msg.From)

	// A panicking handler must never take the webhook worker down, and
	// the user still gets the standard fallback.
	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("message handler panic: %v", r)
			p.logger.WithField("user_id", truncateID(msg.From)).
				WithError(panicErr).ErrorContext(ctx, "Recovered from handler panic")
			sentry.CaptureExceptionWithContext(ctx, panicErr)
			p.recordMessage("panic", "error", 0)
			out = reply.Fallback(msg.Name)
			err = nil
		}
	}()

	if p.userLimiter != nil && !p.userLimiter.Allow(msg.From) {
		p.logger.WithField("user_id", truncateID(msg.From)).
			WarnContext(ctx, "User rate limit exceeded")
		return reply.RateLimited(), nil
	}

	text := normalizeWhitespace(msg.Text)
	if text == "" {
		return "", nil
	}
	if len(text) > p.maxMessageLength {
		p.logger.Warnf("Text message too long: %d characters", len(text))
		return reply.TooLong(p.maxMessageLength), nil
	}
	msg.Text = text

	// Detach from the delivery request's lifetime but keep tracing values.
	processCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), p.webhookTimeout)
	defer cancel()

	start := time.Now()
	if answer, name := p.registry.Dispatch(processCtx, msg); answer != "" {
		p.recordMessage(name, "success", time.Since(start).Seconds())
		return answer, nil
	}

	// No handler produced an answer - try NLU, then fall back.
	answer, status := p.handleUnmatched(processCtx, msg)
	p.recordMessage("nlu", status, time.Since(start).Seconds())
	return answer, nil
}

// recordMessage guards the counter. metrics may be nil in tests.
func (p *Processor) recordMessage(name, status string, seconds float64) {
	if p.metrics != nil {
		p.metrics.RecordMessage(name, status, seconds)
	}
}

// handleUnmatched handles messages no keyword handler answered.
// Returns the reply and the metrics status label.
func (p *Processor) handleUnmatched(ctx context.Context, msg IncomingMessage) (string, string) {
	if p.classifier == nil || !p.classifier.IsEnabled() {
		return reply.Fallback(msg.Name), "fallback"
	}

	result, err := p.classifier.Classify(ctx, msg.Text)
	if err != nil {
		if errors.Is(err, apperrors.ErrLowConfidence) {
			p.logger.WithError(err).DebugContext(ctx, "NLU confidence below threshold")
		} else {
			p.logger.WithError(err).WarnContext(ctx, "NLU classification failed")
		}
		return reply.Fallback(msg.Name), "fallback"
	}

	return p.dispatchIntent(ctx, msg, result)
}

// dispatchIntent routes a classified intent through the handler that a
// keyword match would have reached. Handler names double as intent names.
func (p *Processor) dispatchIntent(ctx context.Context, msg IncomingMessage, result *nlu.Result) (string, string) {
	p.logger.WithField("intent", result.Intent).
		WithField("confidence", result.Confidence).
		DebugContext(ctx, "NLU intent classified")

	switch result.Intent {
	case nlu.IntentLookup:
		if result.Query == "" {
			break
		}
		if h := p.registry.Get(nlu.IntentLookup); h != nil {
			rewritten := msg
			rewritten.Text = result.Query
			if answer := h.Handle(ctx, rewritten); answer != "" {
				return answer, "success"
			}
		}
	case nlu.IntentGreeting, nlu.IntentFarewell, nlu.IntentForm, nlu.IntentDirectory:
		if h := p.registry.Get(result.Intent); h != nil {
			if answer := h.Handle(ctx, msg); answer != "" {
				return answer, "success"
			}
		}
	}

	return reply.Fallback(msg.Name), "fallback"
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateID shortens a sender id for logging.
func truncateID(id string) string {
	if len(id) > 6 {
		return id[:6] + "..."
	}
	return id
}
