// Package llm asks an OpenAI-compatible chat completions endpoint (Groq by
// default) to narrate dataset analytics.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/redis"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/retry"
	"go.uber.org/zap"
)

// ErrNoAPIKey is returned when no API key is configured
var ErrNoAPIKey = errors.New("llm api key not configured")

// Narrator produces the AI narrative for a dataset's analytics
type Narrator interface {
	Interpret(ctx context.Context, datasetName string, analytics *model.Analytics) (*model.AIReport, error)
}

// Client calls the chat completions API
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	slots      *redis.SlotPool
	maxWait    time.Duration
}

// New creates a client. slots may be nil, in which case calls are not gated.
func New(cfg config.LLMConfig, slots *redis.SlotPool, maxWait time.Duration) *Client {
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		slots:      slots,
		maxWait:    maxWait,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Interpret builds the prompt, calls the model and fills in any field the
// model left out
func (c *Client) Interpret(ctx context.Context, datasetName string, analytics *model.Analytics) (*model.AIReport, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	payload := chatRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: BuildPrompt(datasetName, analytics)}},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var content string
	err = c.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		content, err = c.complete(ctx, jsonData)
		if err != nil {
			zap.L().Warn("Model call failed", zap.String("model", c.cfg.Model), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return ParseReport(content)
}

// acquire takes a concurrency slot for the model. Redis failures fall back to
// a direct call; running out of time waiting for a slot does not.
func (c *Client) acquire(ctx context.Context) (func(), error) {
	if c.slots == nil || c.cfg.MaxConcurrency <= 0 {
		return func() {}, nil
	}

	key := fmt.Sprintf("llm_concurrency:%s", c.cfg.Model)
	release, err := c.slots.Wait(ctx, key, c.cfg.MaxConcurrency, c.maxWait)
	if err == nil {
		return release, nil
	}
	if errors.Is(err, redis.ErrSlotTimeout) || ctx.Err() != nil {
		return nil, err
	}

	zap.L().Warn("Redis error, falling back to direct call",
		zap.String("model", c.cfg.Model),
		zap.Error(err))
	return func() {}, nil
}

func (c *Client) complete(ctx context.Context, jsonData []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		// 429 is worth another try, other client errors are not
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Permanent(err)
		}
		return "", err
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to parse response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "{}", nil
	}

	return result.Choices[0].Message.Content, nil
}
