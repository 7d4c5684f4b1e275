package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gbp-backend/internal/llm"
	"gbp-backend/internal/profile"
	"gbp-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements llm.Client using the Gemini generateContent API.
type Client struct {
	apiKey     string
	baseURL    string
	modelFlash string
	modelPro   string
	httpClient *http.Client
}

// NewClient constructs a Gemini client with a model per tier.
func NewClient(apiKey, modelFlash, modelPro string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(modelFlash) == "" {
		modelFlash = "gemini-1.5-flash"
	}
	if strings.TrimSpace(modelPro) == "" {
		modelPro = "gemini-1.5-pro"
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		modelFlash: modelFlash,
		modelPro:   modelPro,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Summarize produces the narrative for an analyzed record. Any failure
// returns fixed fallback text, never an error.
func (c *Client) Summarize(ctx context.Context, record *profile.Record, score float64, tier string) string {
	model := c.modelFlash
	if llm.NormalizeTier(tier) == llm.TierPro {
		model = c.modelPro
	}

	prompt, err := buildPrompt(record, score)
	if err != nil {
		telemetry.Error("gemini.summarize", map[string]any{"error": err.Error()})
		return llm.FallbackUnavailable
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		telemetry.Error("gemini.summarize", map[string]any{"error": err.Error()})
		return llm.FallbackUnavailable
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		telemetry.Error("gemini.summarize", map[string]any{"error": err.Error()})
		return llm.FallbackAPIError
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("gemini.summarize", map[string]any{"model": model, "error": err.Error()})
		return llm.FallbackAPIError
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		telemetry.Error("gemini.summarize", map[string]any{"model": model, "error": err.Error()})
		return llm.FallbackAPIError
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		telemetry.Error("gemini.summarize", map[string]any{"model": model, "error": err.Error()})
		return llm.FallbackAPIError
	}
	if decoded.Error != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("status %d", resp.StatusCode)
		if decoded.Error != nil {
			message = decoded.Error.Message
		}
		telemetry.Error("gemini.summarize", map[string]any{"model": model, "error": message})
		return llm.FallbackAPIError
	}

	text := extractText(decoded)
	if text == "" {
		telemetry.Warn("gemini.summarize", map[string]any{"model": model, "empty_response": true})
		return llm.FallbackAPIError
	}
	return text
}

func extractText(resp generateResponse) string {
	for _, candidate := range resp.Candidates {
		var builder strings.Builder
		for _, p := range candidate.Content.Parts {
			builder.WriteString(p.Text)
		}
		if text := strings.TrimSpace(builder.String()); text != "" {
			return text
		}
	}
	return ""
}

func buildPrompt(record *profile.Record, score float64) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, score, data), nil
}

const promptTemplate = `You are a local-SEO consultant reviewing a Google Business Profile.
The profile scored %.1f out of 10 on our health check.

Write a concise, professional analysis for the business owner:
- Summarize the overall health of the profile in one short paragraph.
- Call out the two or three weakest areas and what to do about each.
- Mention the strongest area so the owner knows what is already working.
- Keep it under 250 words, no markdown headings.

Profile data:
%s`
