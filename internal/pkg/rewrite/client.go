package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptpal/promptpal-server/config"
)

// Result is the rewriting model's answer for one prompt.
type Result struct {
	OptimizedPrompt string   `json:"optimizedPrompt"`
	Reasoning       string   `json:"reasoning"`
	Improvements    []string `json:"improvements"`
}

// Client is the external prompt-rewriting collaborator. Implementations may
// fail or time out; the caller bounds the call with its context.
type Client interface {
	Rewrite(ctx context.Context, prompt, audience string, focusAreas []string) (*Result, error)
}

// HTTPClient talks to an OpenAI-compatible chat completion endpoint.
type HTTPClient struct {
	cfg        *config.RewriteConfig
	httpClient *http.Client
}

func NewHTTPClient(cfg *config.RewriteConfig) *HTTPClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Rewrite sends the prompt to the model and parses its JSON answer.
// A transport or API failure is returned as an error. A syntactically broken
// model answer degrades to echoing the original prompt instead of failing
// the whole request.
func (c *HTTPClient) Rewrite(ctx context.Context, prompt, audience string, focusAreas []string) (*Result, error) {
	body, err := json.Marshal(&chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(audience, focusAreas)},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
		Temperature:    0.3,
		MaxTokens:      c.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rewrite request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("rewrite api status %d: %s", resp.StatusCode, string(data))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode rewrite response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("rewrite api returned no choices")
	}

	result := parseResult(chat.Choices[0].Message.Content, prompt)
	return result, nil
}

// parseResult interprets the model's JSON content, falling back to the
// original prompt when the content is unusable.
func parseResult(content, originalPrompt string) *Result {
	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil || result.OptimizedPrompt == "" {
		return &Result{
			OptimizedPrompt: originalPrompt,
			Reasoning:       "The model response could not be parsed; the original prompt was returned.",
			Improvements:    []string{},
		}
	}
	if result.Improvements == nil {
		result.Improvements = []string{}
	}
	if result.Reasoning == "" {
		result.Reasoning = "Prompt optimized for better AI understanding and response"
	}
	return &result
}

func buildSystemPrompt(audience string, focusAreas []string) string {
	var b strings.Builder
	b.WriteString("You are an AI prompt optimization expert tasked with improving user prompts for better results from language models.\n")
	b.WriteString("Make the prompt more effective based on these requirements:\n\n")
	fmt.Fprintf(&b, "TARGET AUDIENCE: %s\n", audience)
	fmt.Fprintf(&b, "OPTIMIZATION FOCUS: %s\n\n", strings.Join(focusAreas, ", "))

	b.WriteString("OPTIMIZATION RULES:\n")
	for _, area := range focusAreas {
		switch area {
		case "specificity":
			b.WriteString("- Add specific details, examples, and parameters where helpful\n")
		case "clarity":
			b.WriteString("- Improve structure, eliminate ambiguity, and use clear language\n")
		case "ctas":
			b.WriteString("- Add clear calls-to-action for specific outputs/formats\n")
		case "engagement":
			b.WriteString("- Make the prompt more emotionally engaging or attention-grabbing\n")
		}
	}
	if audience != "general" {
		fmt.Fprintf(&b, "- Adapt language and terminology for %s audience\n", audience)
	}

	b.WriteString("\nRespond in JSON with the keys optimizedPrompt, reasoning and improvements.\n")
	b.WriteString("Preserve the original intent completely. Keep the optimized prompt concise.\n")
	return b.String()
}
