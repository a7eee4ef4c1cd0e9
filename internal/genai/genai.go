// Package genai provides neural reply generation through the OpenAI API.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// Defaults for the chat-completion requests.
const (
	DefaultModel       = openai.ChatModelGPT4oMini
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 60
	DefaultCandidates  = 3

	// DefaultSystemPrompt keeps neural replies short enough to be paired
	// with a prompt in one utterance.
	DefaultSystemPrompt = "You are a friendly social chatbot. Reply to the user in one or two short, casual sentences. " +
		"Do not give medical, legal or financial advice. Do not mention that you are an AI model."
)

// ErrNoChoicesReturned is returned when the API answers without choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completionsService adapts the SDK's completion service to chatService.
type completionsService struct {
	svc *openai.ChatCompletionService
}

func (c completionsService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := c.svc.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int64
	Candidates   int64
	SystemPrompt string
	DebugMode    bool
	StateDir     string
}

// Option is a functional option for NewClient.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key. Without it OPENAI_API_KEY is used.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithMaxTokens bounds each completion.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) { o.MaxTokens = n }
}

// WithCandidates sets how many replies GenerateCandidates asks for.
func WithCandidates(n int64) Option {
	return func(o *Opts) { o.Candidates = n }
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(p string) Option {
	return func(o *Opts) { o.SystemPrompt = p }
}

// WithDebugMode writes every request and response under stateDir/debug.
func WithDebugMode(enabled bool, stateDir string) Option {
	return func(o *Opts) {
		o.DebugMode = enabled
		o.StateDir = stateDir
	}
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	chat         chatService
	model        string
	temperature  float64
	maxTokens    int64
	candidates   int64
	systemPrompt string
	debugMode    bool
	stateDir     string
}

// NewClient builds a client from options and the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	o := Opts{
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
		Candidates:   DefaultCandidates,
		SystemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if o.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cli := openai.NewClient(option.WithAPIKey(o.APIKey))
	slog.Debug("GenAI client created", "model", o.Model, "candidates", o.Candidates, "debug", o.DebugMode)
	return &Client{
		chat:         completionsService{svc: &cli.Chat.Completions},
		model:        o.Model,
		temperature:  o.Temperature,
		maxTokens:    o.MaxTokens,
		candidates:   max(o.Candidates, 1),
		systemPrompt: o.SystemPrompt,
		debugMode:    o.DebugMode,
		stateDir:     o.StateDir,
	}, nil
}

func (c *Client) params(messages []openai.ChatCompletionMessageParamUnion, n int64) openai.ChatCompletionNewParams {
	p := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               c.model,
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}
	if n > 1 {
		p.N = openai.Int(n)
	}
	return p
}

// GenerateWithMessages returns the first choice for messages.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := c.params(messages, 1)
	resp, err := c.chat.Create(ctx, params)
	c.debugLog("GenerateWithMessages", params, resp, err)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// GeneratePromptWithContext answers userPrompt under systemPrompt.
func (c *Client) GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	})
}

// GenerateCandidates asks for several replies to userText. history holds
// prior utterances, oldest first, alternating bot and user and starting with
// the bot. Earlier choices score higher.
func (c *Client) GenerateCandidates(ctx context.Context, history []string, userText string) ([]models.NeuralCandidate, error) {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(c.systemPrompt)}
	for i, utt := range history {
		if i%2 == 0 {
			messages = append(messages, openai.AssistantMessage(utt))
		} else {
			messages = append(messages, openai.UserMessage(utt))
		}
	}
	messages = append(messages, openai.UserMessage(userText))

	params := c.params(messages, c.candidates)
	resp, err := c.chat.Create(ctx, params)
	c.debugLog("GenerateCandidates", params, resp, err)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoicesReturned
	}
	cands := make([]models.NeuralCandidate, 0, len(resp.Choices))
	for i, choice := range resp.Choices {
		text := strings.TrimSpace(choice.Message.Content)
		if text == "" {
			continue
		}
		cands = append(cands, models.NeuralCandidate{Text: text, Score: 1 / float64(i+1)})
	}
	slog.Debug("Client.GenerateCandidates: received", "choices", len(resp.Choices), "kept", len(cands))
	return cands, nil
}

// debugLog writes one request/response pair as JSON when debug mode is on.
func (c *Client) debugLog(method string, params openai.ChatCompletionNewParams, resp openai.ChatCompletion, callErr error) {
	if !c.debugMode || c.stateDir == "" {
		return
	}
	dir := filepath.Join(c.stateDir, "debug")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Client.debugLog: create dir failed", "dir", dir, "error", err)
		return
	}
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"method":    method,
		"model":     c.model,
		"params":    params,
		"response":  resp,
	}
	if callErr != nil {
		entry["error"] = callErr.Error()
	}
	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Warn("Client.debugLog: encode failed", "error", err)
		return
	}
	name := fmt.Sprintf("%s_%d.json", method, time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		slog.Warn("Client.debugLog: write failed", "error", err)
	}
}
