package bot

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/nlu"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeClassifier returns a canned result or error.
type fakeClassifier struct {
	result *nlu.Result
	err    error
}

func (f *fakeClassifier) IsEnabled() bool { return true }

func (f *fakeClassifier) Classify(context.Context, string) (*nlu.Result, error) {
	return f.result, f.err
}

// panicHandler always panics when handling.
type panicHandler struct{}

func (panicHandler) Name() string                                 { return "panic" }
func (panicHandler) CanHandle(string) bool                        { return true }
func (panicHandler) Handle(context.Context, IncomingMessage) string { panic("boom") }

func newTestProcessor(t *testing.T, registry *Registry, classifier nlu.Classifier, limiter *ratelimit.PerKeyLimiter) *Processor {
	t.Helper()
	return NewProcessor(ProcessorConfig{
		Registry:    registry,
		Classifier:  classifier,
		UserLimiter: limiter,
		Logger:      logger.NewWithWriter("error", io.Discard),
		Metrics:     metrics.New(prometheus.NewRegistry()),
		BotConfig: &config.BotConfig{
			WebhookTimeout:   5 * time.Second,
			MaxMessageLength: 4096,
		},
	})
}

func testMessage(text string) IncomingMessage {
	return IncomingMessage{From: "919876543210", Name: "Anand", Text: text}
}

func TestProcessMessageDispatches(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{name: "greeting", keyword: "hello", answer: "hi there"})
	p := newTestProcessor(t, r, nil, nil)

	got, err := p.ProcessMessage(context.Background(), testMessage("hello"))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if got != "hi there" {
		t.Errorf("ProcessMessage() = %q, want handler reply", got)
	}
}

func TestProcessMessageNormalizesWhitespace(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{name: "greeting", keyword: "hello world", answer: "hi"})
	p := newTestProcessor(t, r, nil, nil)

	got, _ := p.ProcessMessage(context.Background(), testMessage("  hello \n  world  "))
	if got != "hi" {
		t.Errorf("ProcessMessage() = %q, want whitespace-normalized dispatch", got)
	}
}

func TestProcessMessageEmptyText(t *testing.T) {
	p := newTestProcessor(t, NewRegistry(), nil, nil)

	got, err := p.ProcessMessage(context.Background(), testMessage("   "))
	if err != nil || got != "" {
		t.Errorf("ProcessMessage() = %q, %v; want empty reply", got, err)
	}
}

func TestProcessMessageTooLong(t *testing.T) {
	p := newTestProcessor(t, NewRegistry(), nil, nil)

	got, _ := p.ProcessMessage(context.Background(), testMessage(strings.Repeat("a", 5000)))
	if !strings.Contains(got, "too long") {
		t.Errorf("ProcessMessage() = %q, want over-length reply", got)
	}
}

func TestProcessMessageRateLimited(t *testing.T) {
	limiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0.001,
		CleanupPeriod: time.Hour,
	})
	defer limiter.Stop()

	r := NewRegistry()
	r.Register(&stubHandler{name: "greeting", keyword: "hello", answer: "hi"})
	p := newTestProcessor(t, r, nil, limiter)

	if got, _ := p.ProcessMessage(context.Background(), testMessage("hello")); got != "hi" {
		t.Fatalf("first message should dispatch, got %q", got)
	}
	got, _ := p.ProcessMessage(context.Background(), testMessage("hello"))
	if !strings.Contains(got, "too quickly") {
		t.Errorf("second message = %q, want throttle reply", got)
	}
}

func TestProcessMessageFallbackWithoutNLU(t *testing.T) {
	p := newTestProcessor(t, NewRegistry(), nil, nil)

	got, _ := p.ProcessMessage(context.Background(), testMessage("something nobody handles"))
	if !strings.Contains(got, "Sorry Anand") {
		t.Errorf("ProcessMessage() = %q, want fallback with display name", got)
	}
}

func TestProcessMessageNLULookupRewrite(t *testing.T) {
	r := NewRegistry()
	lookup := &stubHandler{name: "lookup", keyword: "dangerous goods", answer: "course details"}
	r.Register(lookup)

	classifier := &fakeClassifier{result: &nlu.Result{
		Intent:     nlu.IntentLookup,
		Query:      "dangerous goods",
		Confidence: 0.9,
	}}
	p := newTestProcessor(t, r, classifier, nil)

	// The raw text matches no handler; the classifier extracts the course
	// phrase and the processor re-routes it through the lookup handler.
	got, _ := p.ProcessMessage(context.Background(), testMessage("how much does the dg training cost"))
	if got != "course details" {
		t.Errorf("ProcessMessage() = %q, want NLU-routed lookup reply", got)
	}
}

func TestProcessMessageNLUIntentRouting(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{name: "form", keyword: "never-matches-keyword", answer: "form link"})

	classifier := &fakeClassifier{result: &nlu.Result{Intent: nlu.IntentForm, Confidence: 0.8}}
	p := newTestProcessor(t, r, classifier, nil)

	got, _ := p.ProcessMessage(context.Background(), testMessage("how do i sign up"))
	if got != "form link" {
		t.Errorf("ProcessMessage() = %q, want form handler reply", got)
	}
}

func TestProcessMessageNLULowConfidence(t *testing.T) {
	classifier := &fakeClassifier{err: apperrors.ErrLowConfidence}
	p := newTestProcessor(t, NewRegistry(), classifier, nil)

	got, _ := p.ProcessMessage(context.Background(), testMessage("mumble mumble"))
	if !strings.Contains(got, "Sorry Anand") {
		t.Errorf("ProcessMessage() = %q, want fallback", got)
	}
}

func TestProcessMessagePanicRecovery(t *testing.T) {
	r := NewRegistry()
	r.Register(panicHandler{})
	p := newTestProcessor(t, r, nil, nil)

	got, err := p.ProcessMessage(context.Background(), testMessage("anything"))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v, want recovered nil", err)
	}
	if !strings.Contains(got, "Sorry Anand") {
		t.Errorf("ProcessMessage() = %q, want fallback after panic", got)
	}
}

func TestProcessMessageNilMetrics(t *testing.T) {
	r := NewRegistry()
	r.Register(panicHandler{})
	p := NewProcessor(ProcessorConfig{
		Registry: r,
		Logger:   logger.NewWithWriter("error", io.Discard),
		BotConfig: &config.BotConfig{
			WebhookTimeout:   5 * time.Second,
			MaxMessageLength: 4096,
		},
	})

	// The recovery path records a counter; with no metrics configured it
	// must still produce the fallback instead of re-panicking.
	got, err := p.ProcessMessage(context.Background(), testMessage("anything"))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if !strings.Contains(got, "Sorry Anand") {
		t.Errorf("ProcessMessage() = %q, want fallback", got)
	}

	p2 := NewProcessor(ProcessorConfig{
		Registry: NewRegistry(),
		Logger:   logger.NewWithWriter("error", io.Discard),
		BotConfig: &config.BotConfig{
			WebhookTimeout:   5 * time.Second,
			MaxMessageLength: 4096,
		},
	})
	if got, _ := p2.ProcessMessage(context.Background(), testMessage("unhandled text")); !strings.Contains(got, "Sorry Anand") {
		t.Errorf("unmatched path with nil metrics = %q, want fallback", got)
	}
}
