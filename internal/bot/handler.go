// Package bot provides the handler interface and dispatch pipeline for
// chatbot modules. Each module (greeting, directory, lookup, ...) implements
// the Handler interface to process inbound WhatsApp text messages.
package bot

import "context"

// IncomingMessage is one inbound text message after webhook parsing.
type IncomingMessage struct {
	// From is the digits-only WhatsApp account id of the sender.
	From string

	// Name is the sender's display name from the webhook contact block.
	// May be empty; reply templates fall back to a neutral salutation.
	Name string

	// Text is the message body.
	Text string
}

// Handler defines the interface that all bot modules must implement.
type Handler interface {
	// Name identifies the handler in logs, metrics, and NLU intent routing.
	Name() string

	// CanHandle checks if this handler recognizes the message text.
	CanHandle(text string) bool

	// Handle processes the message and returns the reply body.
	// An empty reply means the handler claimed the message but could not
	// produce an answer; the processor then falls through to NLU or the
	// fallback template.
	Handle(ctx context.Context, msg IncomingMessage) string
}
