// Package sentry wires error tracking to Better Stack through the Sentry
// SDK. Better Stack speaks the Sentry ingest protocol, so the only local
// work is assembling the DSN and picking sane defaults.
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds the tracking settings. An empty Token disables tracking
// entirely; every capture call then becomes a no-op.
type Config struct {
	Token       string // Better Stack Errors application token
	Host        string // ingest host, e.g. "errors.betterstack.com"
	Environment string
	Release     string
	SampleRate  float64 // 0 means capture everything
	Debug       bool
}

// Initialize configures the global SDK client. Call once at startup,
// before any goroutine can capture.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when a token is set")
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		// Better Stack ignores the project id segment, but the SDK
		// insists on one.
		Dsn:              fmt.Sprintf("https://%s@%s/1", cfg.Token, cfg.Host),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// Flush blocks until buffered events are delivered or the timeout
// expires. Reports whether everything made it out.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled reports whether a client is configured.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureExceptionWithContext reports err on the hub bound to ctx, so
// events raised inside a request carry that request's scope.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
