// Package diag implements the diagnostic echo keyword. Operational, not
// business logic; it gives a quick way to verify the webhook pipeline
// end to end from a phone.
package diag

import (
	"context"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// ModuleName identifies this handler in logs and metrics.
const ModuleName = "diag"

// Handler handles the diagnostic test keyword.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new diag handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true only for the exact keyword "test".
func (h *Handler) CanHandle(text string) bool {
	return stringutil.Normalize(text) == "test"
}

// Handle returns the diagnostic echo reply.
func (h *Handler) Handle(ctx context.Context, _ bot.IncomingMessage) string {
	h.logger.WithModule(ModuleName).DebugContext(ctx, "Handling diagnostic echo")
	return reply.DiagEcho()
}

var _ bot.Handler = (*Handler)(nil)
