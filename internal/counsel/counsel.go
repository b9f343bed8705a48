package counsel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sadopc/clearway/internal/logger"
	"github.com/sadopc/clearway/internal/metrics"
)

const (
	SystemPrompt   = "You are a helpful AI counselor."
	DefaultModel   = "gpt-3.5-turbo"
	DefaultTimeout = 60 * time.Second
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoAPIKey     = errors.New("counselor API key not configured")
	ErrNoReply      = errors.New("counselor returned no reply")
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client sends one user message per request with a fixed system prompt.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	hasKey  bool
}

func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
		hasKey:  cfg.APIKey != "",
	}
}

// Ask returns the trimmed content of the first choice.
func (c *Client) Ask(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if !c.hasKey {
		metrics.ChatRequests.WithLabelValues("unconfigured").Inc()
		return "", ErrNoAPIKey
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		logger.Error("Chat completion failed", "model", c.model, "err", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ChatRequests.WithLabelValues("empty").Inc()
		return "", ErrNoReply
	}
	metrics.ChatRequests.WithLabelValues("ok").Inc()
	logger.Debug("Chat completion", "model", c.model, "duration", time.Since(start))
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleCounselor Role = "counselor"
)

type Message struct {
	ID   string
	Role Role
	Text string
	At   time.Time
}

// Conversation is the visible chat history. Failed replies are not added.
type Conversation struct {
	Messages []Message
}

func (c *Conversation) Add(role Role, text string) Message {
	m := Message{ID: uuid.NewString(), Role: role, Text: text, At: time.Now()}
	c.Messages = append(c.Messages, m)
	return m
}
