package nlu

import (
	"context"
	"errors"
	"io"
	"testing"

	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
)

func testClassifierConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:              "test-key",
		Model:               "gpt-4o-mini",
		ConfidenceThreshold: 0.3,
		Logger:              logger.NewWithWriter("error", io.Discard),
	}
}

func TestNewOpenAIClassifierRequiresKey(t *testing.T) {
	cfg := testClassifierConfig()
	cfg.APIKey = ""

	if _, err := NewOpenAIClassifier(cfg); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewOpenAIClassifierRequiresModel(t *testing.T) {
	cfg := testClassifierConfig()
	cfg.Model = ""

	if _, err := NewOpenAIClassifier(cfg); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestNewOpenAIClassifierDefaultsRetry(t *testing.T) {
	c, err := NewOpenAIClassifier(testClassifierConfig())
	if err != nil {
		t.Fatalf("NewOpenAIClassifier() = %v", err)
	}
	if c.retry.MaxAttempts != DefaultRetryConfig().MaxAttempts {
		t.Errorf("retry attempts = %d, want %d", c.retry.MaxAttempts, DefaultRetryConfig().MaxAttempts)
	}
}

func TestIsEnabledNilClassifier(t *testing.T) {
	var c *OpenAIClassifier
	if c.IsEnabled() {
		t.Error("nil classifier should report disabled")
	}
}

func TestClassifyNilClassifier(t *testing.T) {
	var c *OpenAIClassifier
	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Error("expected error for nil classifier")
	}
}

func TestClassifyCanceledContext(t *testing.T) {
	c, err := NewOpenAIClassifier(testClassifierConfig())
	if err != nil {
		t.Fatalf("NewOpenAIClassifier() = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Classify(ctx, "what courses do you offer"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestParseToolCallArgs(t *testing.T) {
	tests := []struct {
		name     string
		funcName string
		args     string
		want     *Result
		wantErr  bool
	}{
		{
			name:     "lookup with query",
			funcName: "classify_message",
			args:     `{"intent":"lookup","query":"dangerous goods","confidence":0.9}`,
			want:     &Result{Intent: IntentLookup, Query: "dangerous goods", Confidence: 0.9},
		},
		{
			name:     "greeting without query",
			funcName: "classify_message",
			args:     `{"intent":"greeting","confidence":0.8}`,
			want:     &Result{Intent: IntentGreeting, Confidence: 0.8},
		},
		{
			name:     "unknown function name",
			funcName: "do_something_else",
			args:     `{"intent":"greeting","confidence":0.8}`,
			wantErr:  true,
		},
		{
			name:     "invalid intent value",
			funcName: "classify_message",
			args:     `{"intent":"order_pizza","confidence":0.8}`,
			wantErr:  true,
		},
		{
			name:     "malformed json",
			funcName: "classify_message",
			args:     `{"intent":`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToolCallArgs(tt.funcName, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseToolCallArgs() = %v", err)
			}
			if *got != *tt.want {
				t.Errorf("parseToolCallArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLowConfidenceSentinel(t *testing.T) {
	// The processor distinguishes low confidence from transport errors
	// via errors.Is, so the sentinel must survive wrapping.
	err := errors.Join(errors.New("context"), apperrors.ErrLowConfidence)
	if !errors.Is(err, apperrors.ErrLowConfidence) {
		t.Error("wrapped low-confidence error should match the sentinel")
	}
}
