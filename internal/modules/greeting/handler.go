// Package greeting implements the hello classifier. Greetings are exact
// whole-message matches so that "hi tech maintenance course" still reaches
// the course resolver.
package greeting

import (
	"context"
	"slices"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// ModuleName identifies this handler in logs, metrics, and intent routing.
const ModuleName = "greeting"

// greetingKeywords include common misspellings seen in real traffic.
var greetingKeywords = []string{
	"hi",
	"hii",
	"hiii",
	"hello",
	"helo",
	"hellow",
	"hey",
	"heyy",
	"namaste",
	"good morning",
	"good afternoon",
	"good evening",
	"gm",
}

// Handler handles greeting messages.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new greeting handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true if the whole message is a greeting.
func (h *Handler) CanHandle(text string) bool {
	return slices.Contains(greetingKeywords, stringutil.Normalize(text))
}

// Handle returns the welcome template with usage hints.
func (h *Handler) Handle(ctx context.Context, msg bot.IncomingMessage) string {
	h.logger.WithModule(ModuleName).DebugContext(ctx, "Handling greeting")
	return reply.Welcome(msg.Name)
}

var _ bot.Handler = (*Handler)(nil)
