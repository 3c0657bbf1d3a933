// Package oracle talks to an OpenAI-compatible chat completion API and
// hosts the two marketplace personas: the cryptic oracle and the VIP
// concierge.
package oracle

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const oracleSystemPrompt = "You are a cryptic oracle. Respond to the user with one or two short, " +
	"profound, philosophical sentences. Do not be conversational. Be mysterious and abstract."

const conciergeSystemPrompt = `You are an exclusive VIP concierge service AI assistant for a luxury marketplace called "Lowkey Luxury".

Your role is to:
- Help VIP members discover exclusive luxury experiences and items
- Provide personalized recommendations based on their preferences
- Answer questions about available products and services
- Assist with booking and purchase inquiries
- Offer luxury lifestyle advice and suggestions
- Maintain a sophisticated, professional tone
- Always prioritize the member's satisfaction and exclusive experience

You have access to their purchase history and preferences. Be warm, attentive, and go the extra mile to exceed expectations.`

// fallback when the model returns an empty choice list
const quietAnswer = "The stream is quiet."

type Client struct {
	apiKey  string
	baseURL string
	model   string
	hc      *http.Client
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, model: model, hc: &http.Client{Timeout: timeout}}
}

// Configured reports whether an API key is present. Handlers surface an
// unconfigured oracle as a generic upstream failure.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if !c.Configured() {
		return "", errs.Upstream(errors.New("oracle api key missing"), "ORACLE_NOT_CONFIGURED", "oracle not configured")
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var body []byte
	var code int
	err := gout.New(c.hc).
		POST(c.baseURL+"/v1/chat/completions").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetJSON(req).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return "", errs.Upstream(errors.Wrap(err, "chat completion"), "ORACLE_ERROR", "oracle unreachable")
	}

	var resp chatResponse
	if err := jsoniter.Unmarshal(body, &resp); err != nil {
		return "", errs.Upstream(errors.Wrap(err, "decode completion"), "ORACLE_ERROR", "oracle returned malformed data")
	}
	if code >= http.StatusBadRequest {
		zap.L().Error("oracle upstream error",
			zap.Int("status", code),
			zap.String("type", resp.Error.Type),
			zap.String("message", resp.Error.Message))
		return "", errs.Upstream(errors.Errorf("oracle api status %d", code), "ORACLE_ERROR", "oracle upstream error")
	}
	if len(resp.Choices) == 0 {
		return quietAnswer, nil
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return quietAnswer, nil
	}
	return answer, nil
}

// Oracle answers a public question in one or two cryptic sentences.
func (c *Client) Oracle(ctx context.Context, question string) (string, error) {
	return c.complete(ctx, oracleSystemPrompt, question, 80, 0.9)
}

// Concierge answers a member message in the concierge persona.
func (c *Client) Concierge(ctx context.Context, message string) (string, error) {
	return c.complete(ctx, conciergeSystemPrompt, message, 1024, 0.7)
}
