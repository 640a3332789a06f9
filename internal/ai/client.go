// Package ai produces plain-language explanations of checkups with a chat completion model.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"

	defaultAzureAPIVersion = "2024-08-01-preview"
)

// Config holds the connection settings of the chat completion provider
type Config struct {
	Provider          string
	Endpoint          string
	APIKey            string
	Model             string // deployment name on Azure
	APIVersion        string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

// Client wraps the openai-go SDK with retry, throttling and logging
type Client struct {
	client     *openai.Client
	model      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a chat completion client for the configured provider
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("api key and model are required")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	switch cfg.Provider {
	case ProviderAzure:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for the azure provider")
		}
		version := cfg.APIVersion
		if version == "" {
			version = defaultAzureAPIVersion
		}
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, version),
			azure.WithAPIKey(cfg.APIKey),
		)
	case ProviderOpenAI, "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	client := openai.NewClient(opts...)

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		client:     &client,
		model:      cfg.Model,
		logger:     logger,
		limiter:    limiter,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
	}, nil
}

// Complete sends a chat completion request with retry logic
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	startTime := time.Now()
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info("retrying chat completion request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter wait failed: %w", err)
			}
		}

		result, err := c.complete(ctx, messages)
		if err == nil {
			c.logger.Info("chat completion request completed",
				zap.Duration("processing_time", time.Since(startTime)),
				zap.Int("attempts", attempt+1),
			)
			return result, nil
		}

		lastErr = err
		if !isRetryable(ctx, err) {
			c.logger.Error("non-retryable chat completion error",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			return "", fmt.Errorf("chat completion failed: %w", err)
		}

		c.logger.Warn("chat completion request failed, will retry",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	c.logger.Error("chat completion request failed after retries",
		zap.Error(lastErr),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Int("max_retries", c.maxRetries),
	)

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries, lastErr)
}

// complete performs a single chat completion request
func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	requestStart := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}

	c.logger.Info("chat completion token usage",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return content, nil
}

// isRetryable retries rate limits, server errors and transport failures.
// Client errors and a finished context are not retried.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests, apiErr.StatusCode == http.StatusRequestTimeout:
			return true
		case apiErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "401") {
		return false
	}
	if strings.Contains(errStr, "bad request") || strings.Contains(errStr, "400") {
		return false
	}
	return true
}
