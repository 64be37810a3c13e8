package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// classifySystemPrompt instructs the model to classify course assistant
// messages. The intents mirror the keyword handlers so a classified message
// can be routed through the same module a keyword match would reach.
const classifySystemPrompt = `You classify WhatsApp messages sent to the Indian Aviation Academy course
information assistant. The academy offers training courses for aviation
professionals (airport operations, safety, finance, HR, engineering).

Call classify_message with exactly one intent:
- greeting: the user is saying hello or starting a conversation
- farewell: the user is saying thanks or goodbye
- form: the user wants the registration or application form
- directory: the user wants to browse or list available courses
- lookup: the user is asking about a specific course or topic; put the
  course phrase in query (e.g. "fee for the dangerous goods course" -> query
  "dangerous goods")
- unknown: none of the above fit

Set confidence to your certainty in the chosen intent, between 0 and 1.`

// classifyArgs is the JSON argument shape of the classify_message tool call.
type classifyArgs struct {
	Intent     string  `json:"intent"`
	Query      string  `json:"query"`
	Confidence float64 `json:"confidence"`
}

// OpenAIConfig configures an OpenAIClassifier.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string // empty = provider default
	Model         string
	FallbackModel string // tried once when the primary model errors out

	ConfidenceThreshold float64
	Retry               RetryConfig

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// OpenAIClassifier classifies message intent via an OpenAI-compatible
// chat completion endpoint using forced tool calling.
type OpenAIClassifier struct {
	client        openai.Client
	model         string
	fallbackModel string
	threshold     float64
	retry         RetryConfig
	tools         []openai.ChatCompletionToolUnionParam
	log           *logger.Logger
	met           *metrics.Metrics
}

// NewOpenAIClassifier creates a classifier. Returns an error if the API key
// or model is missing; callers decide whether NLU is configured at all.
func NewOpenAIClassifier(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("nlu: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("nlu: model is required")
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClassifier{
		client:        openai.NewClient(opts...),
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		threshold:     cfg.ConfidenceThreshold,
		retry:         cfg.Retry,
		tools:         buildClassifyTools(),
		log:           cfg.Logger,
		met:           cfg.Metrics,
	}, nil
}

// buildClassifyTools declares the single classify_message function.
// Lowercase JSON Schema types per Draft 2020-12.
func buildClassifyTools() []openai.ChatCompletionToolUnionParam {
	tool := openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        "classify_message",
		Description: openai.String("Classify the intent of a message sent to the course assistant"),
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"intent": map[string]any{
					"type":        "string",
					"enum":        []string{IntentGreeting, IntentFarewell, IntentForm, IntentDirectory, IntentLookup, IntentUnknown},
					"description": "The detected intent of the message",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "The course phrase to look up, only for the lookup intent",
				},
				"confidence": map[string]any{
					"type":        "number",
					"description": "Confidence in the chosen intent, between 0 and 1",
				},
			},
			"required": []string{"intent", "confidence"},
		},
	})
	return []openai.ChatCompletionToolUnionParam{tool}
}

// IsEnabled reports whether the classifier is usable.
func (c *OpenAIClassifier) IsEnabled() bool {
	return c != nil
}

// Classify analyzes the text and returns the detected intent.
// The primary model is retried with backoff; if it keeps failing and a
// fallback model is configured, the fallback is tried once.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	if c == nil {
		return nil, errors.New("nlu: classifier is nil")
	}

	start := time.Now()
	result, err := c.classifyWithRetry(ctx, c.model, text)

	if err != nil && c.fallbackModel != "" && !errors.Is(err, context.Canceled) {
		c.log.WithError(err).WithField("fallback_model", c.fallbackModel).
			Warn("Primary NLU model failed, trying fallback")
		result, err = c.classifyOnce(ctx, c.fallbackModel, text)
	}

	duration := time.Since(start).Seconds()

	switch {
	case err != nil:
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		c.recordRequest(status, duration)
		return nil, err
	case result.Confidence < c.threshold || result.Intent == IntentUnknown:
		c.recordRequest("low_confidence", duration)
		return nil, fmt.Errorf("intent %q with confidence %.2f: %w",
			result.Intent, result.Confidence, apperrors.ErrLowConfidence)
	default:
		c.recordRequest("success", duration)
		return result, nil
	}
}

// classifyWithRetry runs classifyOnce with the package retry policy.
func (c *OpenAIClassifier) classifyWithRetry(ctx context.Context, model, text string) (*Result, error) {
	var result *Result

	onRetry := func(attempt int, err error) {
		c.log.WithError(err).WithField("attempt", attempt).
			WithField("model", model).Debug("Retrying NLU classification")
	}

	err := WithRetry(ctx, c.retry, onRetry, func() error {
		var callErr error
		result, callErr = c.classifyOnce(ctx, model, text)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// classifyOnce issues a single chat completion request and parses the
// forced tool call.
func (c *OpenAIClassifier) classifyOnce(ctx context.Context, model, text string) (*Result, error) {
	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifySystemPrompt),
			openai.UserMessage(text),
		},
		Tools: c.tools,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(openai.ChatCompletionToolChoiceOptionAutoRequired)),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(128),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return parseClassifyResponse(resp)
}

// parseClassifyResponse extracts the Result from the tool call arguments.
func parseClassifyResponse(resp *openai.ChatCompletion) (*Result, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		// Required tool choice means the model must call the function.
		return nil, errors.New("no tool call in response")
	}

	tc := msg.ToolCalls[0]
	if tc.Type != "function" {
		return nil, fmt.Errorf("unexpected tool type: %s", tc.Type)
	}

	return parseToolCallArgs(tc.Function.Name, tc.Function.Arguments)
}

// parseToolCallArgs validates the function name and decodes the JSON
// arguments into a Result.
func parseToolCallArgs(name, rawArgs string) (*Result, error) {
	if name != "classify_message" {
		return nil, fmt.Errorf("unknown function: %s", name)
	}

	var args classifyArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return nil, fmt.Errorf("failed to parse function arguments: %w", err)
	}

	switch args.Intent {
	case IntentGreeting, IntentFarewell, IntentForm, IntentDirectory, IntentLookup, IntentUnknown:
	default:
		return nil, fmt.Errorf("unknown intent: %q", args.Intent)
	}

	return &Result{
		Intent:     args.Intent,
		Query:      args.Query,
		Confidence: args.Confidence,
	}, nil
}

func (c *OpenAIClassifier) recordRequest(status string, duration float64) {
	if c.met != nil {
		c.met.RecordNLURequest(status, duration)
	}
}
