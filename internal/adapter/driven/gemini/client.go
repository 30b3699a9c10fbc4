// Package gemini implements the TextGenerator port against the Google
// Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

const (
	// DefaultBaseURL is the production Generative Language endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"

	providerName = "gemini"

	maxOutputTokens = 2000
	temperature     = 0.8

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// Compile-time interface satisfaction check.
var _ driven.TextGenerator = (*Client)(nil)

// Client calls models/{model}:generateContent.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewClient creates a Client. Empty baseURL and model fall back to
// DefaultBaseURL and DefaultModel. The http.Client should carry a timeout.
func NewClient(httpClient *http.Client, baseURL, apiKey, model string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// generateRequest is the JSON body sent to generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// generateResponse is the subset of the generateContent response we read.
// Error is set instead of Candidates when the API rejects the call.
type generateResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt with fixed generation parameters and returns the
// trimmed text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &driven.ProviderError{Provider: providerName, Message: "API key not configured"}
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", driven.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %w", driven.ErrProviderUnavailable, err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(raw, &genResp); err != nil {
		return "", fmt.Errorf("%w: HTTP %d: %w", driven.ErrMalformedResponse, resp.StatusCode, err)
	}

	if genResp.Error != nil {
		return "", &driven.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Code:       genResp.Error.Status,
			Message:    genResp.Error.Message,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d without error payload", driven.ErrMalformedResponse, resp.StatusCode)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" && len(genResp.Candidates) == 0 {
		return "", &driven.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Code:       genResp.PromptFeedback.BlockReason,
			Message:    "prompt blocked: " + genResp.PromptFeedback.BlockReason,
		}
	}

	if len(genResp.Candidates) == 0 || genResp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates", driven.ErrMalformedResponse)
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		text.WriteString(p.Text)
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty candidate (finish reason %q)", driven.ErrMalformedResponse, genResp.Candidates[0].FinishReason)
	}

	return out, nil
}
