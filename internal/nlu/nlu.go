// Package nlu provides intent classification for messages that no keyword
// handler recognized, via an OpenAI-compatible chat completion API.
package nlu

import (
	"context"
	"time"
)

// Intent values returned by the classifier. They mirror the keyword handler
// names so the processor can route a classified message through the same
// module that a keyword match would have reached.
const (
	IntentGreeting  = "greeting"
	IntentFarewell  = "farewell"
	IntentForm      = "form"
	IntentDirectory = "directory"
	IntentLookup    = "lookup"
	IntentUnknown   = "unknown"
)

// Result is the outcome of classifying one message.
type Result struct {
	// Intent is one of the Intent* constants.
	Intent string

	// Query is the extracted course phrase for IntentLookup, empty otherwise.
	Query string

	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64
}

// Classifier produces an intent guess for a free-text message.
// Implementations must be safe for concurrent use.
type Classifier interface {
	// Classify analyzes the text and returns the detected intent.
	// Returns ErrLowConfidence (wrapped) when the model's confidence is
	// below the configured threshold.
	Classify(ctx context.Context, text string) (*Result, error)

	// IsEnabled reports whether the classifier is configured and usable.
	IsEnabled() bool
}

// RetryConfig controls retry behavior for classification requests.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the retry configuration used when the caller
// does not override it.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}
