// Package farewell implements the goodbye/thanks classifier.
// It must run before course lookup so a message like "thanks for the
// Safety Management info" is not misrouted into a course search.
package farewell

import (
	"context"
	"strings"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// ModuleName identifies this handler in logs, metrics, and intent routing.
const ModuleName = "farewell"

// farewellKeywords are matched as word-boundary phrases anywhere in the
// normalized message, not as whole-message matches.
var farewellKeywords = []string{
	"thank you",
	"thanks",
	"thankyou",
	"thanku",
	"thnx",
	"thx",
	"bye",
	"goodbye",
	"good bye",
	"take care",
	"see you",
}

// Handler handles goodbye and thanks messages.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new farewell handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true if the message contains a farewell phrase.
func (h *Handler) CanHandle(text string) bool {
	norm := stringutil.Normalize(text)
	if norm == "" {
		return false
	}
	padded := " " + norm + " "
	for _, kw := range farewellKeywords {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

// Handle returns the fixed farewell template.
func (h *Handler) Handle(ctx context.Context, _ bot.IncomingMessage) string {
	h.logger.WithModule(ModuleName).DebugContext(ctx, "Handling farewell")
	return reply.Farewell()
}

var _ bot.Handler = (*Handler)(nil)
