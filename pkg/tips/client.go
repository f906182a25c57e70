// Package tips asks a hosted language model for short encouragement and
// health tips. Every call has a local fallback; callers never see an error.
package tips

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"

	// DefaultTip is shown whenever the daily tip cannot be fetched
	DefaultTip = "Remember to stay hydrated and do some gentle stretching today. Small steps make a big difference!"

	tipPrompt = "Give a short, simple and encouraging health tip for a person living with Parkinson's disease. " +
		"Focus on one topic such as exercise, diet, mental wellbeing or symptom management. Keep it under 50 words."
	messagePrompt      = "Give me an inspiring sentence right now."
	messageInstruction = "You are an empathetic assistant focused on the wellbeing of people with Parkinson's disease. " +
		"Write very short motivational messages (at most 40 words) that are warm and encouraging."
)

// ErrNoKey is returned when no API key is configured
var ErrNoKey = errors.New("tips: no API key configured")

// ErrEmptyResponse is returned when the model answers without text
var ErrEmptyResponse = errors.New("tips: empty response")

// Config selects the model endpoint
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Gemini generateContent endpoint
type Client struct {
	client *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates a client; empty fields take their defaults
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		client: c,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		logger: logger,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt with an optional system instruction and returns the
// model's text
func (c *Client) Generate(ctx context.Context, prompt, instruction string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoKey
	}

	req := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}
	if instruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: instruction}}}
	}

	var out generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetBody(&req).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), resp.String())
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// DailyTip returns a fresh health tip, or DefaultTip on any failure
func (c *Client) DailyTip(ctx context.Context) string {
	tip, err := c.Generate(ctx, tipPrompt, "")
	if err != nil {
		c.logger.Warn("Health tip unavailable, using fallback", zap.Error(err))
		return DefaultTip
	}
	return tip
}

// Message is a motivational message. Offline marks a fallback from the local bank.
type Message struct {
	Text    string
	Offline bool
}

// Motivate returns a motivational message, falling back to the local bank
func (c *Client) Motivate(ctx context.Context) Message {
	text, err := c.Generate(ctx, messagePrompt, messageInstruction)
	if err != nil {
		c.logger.Warn("Message generation failed, using local bank", zap.Error(err))
		return Message{Text: fallbackMessages[rand.Intn(len(fallbackMessages))], Offline: true}
	}
	return Message{Text: text}
}
