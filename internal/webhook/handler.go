// Package webhook provides the WhatsApp Cloud API webhook endpoints:
// GET subscription verification and POST message delivery, with async
// dispatch into the bot processor and outbound replies via the sender.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ctxutil"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ratelimit"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/wacloud"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxBodyBytes caps webhook request bodies. Cloud API deliveries are
// small JSON documents; anything bigger is hostile.
const maxBodyBytes = 1 << 20

// TextSender delivers one outbound text message.
type TextSender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Handler handles WhatsApp Cloud API webhook requests.
type Handler struct {
	verifyToken string
	appSecret   string
	processor   *bot.Processor
	sender      TextSender
	metrics     *metrics.Metrics
	logger      *logger.Logger
	globalLimit *ratelimit.Limiter
	queue       *userQueue
	wg          sync.WaitGroup

	maxEventsPerWebhook int
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	VerifyToken string
	AppSecret   string
	Processor   *bot.Processor
	Sender      TextSender
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
	BotConfig   *config.BotConfig
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		verifyToken:         cfg.VerifyToken,
		appSecret:           cfg.AppSecret,
		processor:           cfg.Processor,
		sender:              cfg.Sender,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		globalLimit:         ratelimit.New(cfg.BotConfig.GlobalRateLimitRPS, cfg.BotConfig.GlobalRateLimitRPS),
		queue:               newUserQueue(),
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
	}
}

// HandleVerify is the Gin handler for the GET verification handshake.
// Meta calls it once when the webhook is subscribed.
func (h *Handler) HandleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("Webhook verification succeeded")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logger.WithField("mode", mode).Warn("Webhook verification rejected")
	c.Status(http.StatusForbidden)
}

// Handle is the Gin handler for POST deliveries.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.WithError(err).Error("Failed to read webhook body")
		c.Status(http.StatusInternalServerError)
		return
	}

	if err := wacloud.ValidateSignature(body, c.GetHeader("X-Hub-Signature-256"), h.appSecret); err != nil {
		h.logger.WithError(err).Warn("Invalid webhook signature")
		h.metrics.RecordWebhook("batch", "invalid_signature", 0)
		c.Status(http.StatusUnauthorized)
		return
	}

	var payload wacloud.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.WithError(err).Error("Failed to parse webhook payload")
		h.metrics.RecordWebhook("batch", "error", 0)
		c.Status(http.StatusBadRequest)
		return
	}

	// Return 200 immediately; Meta re-delivers on slow responses.
	c.Status(http.StatusOK)
	h.metrics.RecordWebhook("batch", "success", 0)

	events := h.collectEvents(payload)
	if len(events) == 0 {
		return
	}

	start := time.Now()
	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()

		for _, ev := range events {
			h.processEvent(context.Background(), ev, start)
		}
	})
}

// inboundEvent pairs one message with the contact block of its delivery.
type inboundEvent struct {
	msg  wacloud.Message
	name string
}

// collectEvents flattens the delivery envelope into a bounded event list.
func (h *Handler) collectEvents(payload wacloud.WebhookPayload) []inboundEvent {
	var events []inboundEvent
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, st := range change.Value.Statuses {
				h.logger.WithField("message_id", st.ID).
					WithField("status", st.Status).Debug("Delivery status update")
				h.metrics.RecordWebhook("status", "success", 0)
			}
			for _, msg := range change.Value.Messages {
				events = append(events, inboundEvent{
					msg:  msg,
					name: change.Value.ContactName(msg.From),
				})
			}
		}
	}

	if len(events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		events = events[:h.maxEventsPerWebhook]
	}
	return events
}

// processEvent handles a single inbound message end to end.
func (h *Handler) processEvent(ctx context.Context, ev inboundEvent, batchStart time.Time) {
	eventStart := time.Now()
	msg := ev.msg

	requestID := msg.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = ctxutil.WithRequestID(ctx, requestID)
	ctx = ctxutil.WithUserID(ctx, msg.From)
	log := h.logger.WithRequestID(requestID)

	if msg.Type != "text" || msg.Text == nil {
		log.WithField("message_type", msg.Type).Debug("Unsupported message type")
		h.metrics.RecordWebhook("unsupported", "success", time.Since(eventStart).Seconds())
		return
	}

	// Same-user messages are processed one at a time so replies arrive
	// in order. The wait is bounded by the processing timeout.
	queueCtx, cancel := context.WithTimeout(ctx, config.WebhookProcessing)
	defer cancel()
	if err := h.queue.acquire(queueCtx, msg.From); err != nil {
		log.WithError(err).Warn("Gave up waiting for earlier message from same user")
		h.metrics.RecordWebhook("message", "error", time.Since(eventStart).Seconds())
		return
	}
	defer h.queue.release(msg.From)

	reply, err := h.processor.ProcessMessage(ctx, bot.IncomingMessage{
		From: msg.From,
		Name: ev.name,
		Text: msg.Text.Body,
	})

	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).Error("Failed to handle message")
	}

	if reply != "" && err == nil {
		if !h.globalLimit.Allow() {
			log.Warn("Global rate limit exceeded; waiting")
			h.metrics.RecordRateLimiterDrop("global")
			if waitErr := h.globalLimit.Wait(queueCtx); waitErr != nil {
				log.WithError(waitErr).Error("Abandoned send while waiting for global limiter")
				h.metrics.RecordWebhook("message", "error", time.Since(eventStart).Seconds())
				return
			}
		}

		if _, sendErr := h.sender.SendText(ctx, msg.From, reply); sendErr != nil {
			status = "reply_error"
			log.WithError(sendErr).Error("Failed to send reply")
		}
	}

	h.metrics.RecordWebhook("message", status, time.Since(eventStart).Seconds())
	log.WithField("event_duration_ms", time.Since(eventStart).Milliseconds()).
		WithField("batch_duration_ms", time.Since(batchStart).Milliseconds()).
		Info("Event processed")
}

// Shutdown waits for all async event processing to complete.
// Returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
