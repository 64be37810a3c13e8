package farewell

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
)

func newTestHandler() *Handler {
	return NewHandler(logger.NewWithWriter("error", io.Discard))
}

func TestCanHandle(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		text string
		want bool
	}{
		{"bye", true},
		{"ok bye!", true},
		{"Thank you", true},
		{"thanks a lot", true},
		{"thx", true},
		{"Take care", true},
		// Farewell phrase anywhere in the message wins, even when the
		// rest looks like a course query.
		{"thank you for info on Safety Management System", true},
		{"safety management system", false},
		{"goodbyeee", false},
		{"thankless job training", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := h.CanHandle(tt.text); got != tt.want {
			t.Errorf("CanHandle(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHandle(t *testing.T) {
	h := newTestHandler()

	out := h.Handle(context.Background(), bot.IncomingMessage{From: "911234567890", Text: "bye"})
	if !strings.Contains(out, "Thank you for reaching out") {
		t.Errorf("Handle() = %q, want farewell template", out)
	}
}
