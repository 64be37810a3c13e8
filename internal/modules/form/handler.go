// Package form implements the registration-form request classifier.
package form

import (
	"context"
	"slices"
	"strings"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// ModuleName identifies this handler in logs, metrics, and intent routing.
const ModuleName = "form"

// formPhrases are matched against the whole normalized message.
var formPhrases = []string{
	"registration form",
	"registration",
	"register",
	"how to register",
	"how do i register",
	"how to apply",
	"how do i apply",
	"apply",
	"application form",
	"sign up",
	"signup",
	"enroll",
	"enrollment",
	"admission form",
}

// Handler handles registration-form requests.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new form handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true for a curated phrase or the standalone word
// "form". Word-boundary matching keeps "format" or "performance" from
// triggering it.
func (h *Handler) CanHandle(text string) bool {
	norm := stringutil.Normalize(text)
	if norm == "" {
		return false
	}
	if slices.Contains(formPhrases, norm) {
		return true
	}
	return strings.Contains(" "+norm+" ", " form ")
}

// Handle returns the registration-form template.
func (h *Handler) Handle(ctx context.Context, _ bot.IncomingMessage) string {
	h.logger.WithModule(ModuleName).DebugContext(ctx, "Handling form request")
	return reply.FormMessage()
}

var _ bot.Handler = (*Handler)(nil)
