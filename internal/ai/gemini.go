package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jgoulah/envirolink/internal/config"
)

var safetyCategories = []string{
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
}

// GeminiClient talks to the generateContent endpoint of the Gemini API
type GeminiClient struct {
	apiKey      string
	baseURL     string
	model       string
	visionModel string
	timeout     time.Duration
	httpClient  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"` // encoding/json writes []byte as base64
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient creates a client from config. A missing API key is not an
// error here; Generate reports it without touching the network.
func NewGeminiClient(cfg *config.Config) *GeminiClient {
	return &GeminiClient{
		apiKey:      cfg.GetGeminiAPIKey(),
		baseURL:     strings.TrimRight(cfg.GetGeminiBaseURL(), "/"),
		model:       cfg.GetGeminiModel(),
		visionModel: cfg.GetGeminiVisionModel(),
		timeout:     cfg.GetAITimeout(),
		httpClient:  &http.Client{},
	}
}

// Generate sends req and returns the first candidate's first text part
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", credentialMissing("Gemini")
	}

	model := c.model
	if req.HasImage() {
		model = c.visionModel
	}

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return "", invalidRequest("encoding request", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", transportError("creating request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError("request failed", redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("reading response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", malformed("decoding response", err)
	}

	if len(parsed.Candidates) == 0 {
		return "", malformed("response has no candidates", nil)
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", malformed("first candidate has no text part", nil)
	}

	return parts[0].Text, nil
}

func (c *GeminiClient) buildRequest(req Request) geminiRequest {
	parts := make([]geminiPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Image != nil {
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{
				MIMEType: p.Image.MIMEType,
				Data:     p.Image.Data,
			}})
			continue
		}
		parts = append(parts, geminiPart{Text: p.Text})
	}

	safety := make([]geminiSafetySetting, 0, len(safetyCategories))
	for _, category := range safetyCategories {
		safety = append(safety, geminiSafetySetting{Category: category, Threshold: "BLOCK_MEDIUM_AND_ABOVE"})
	}

	return geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Options.Temperature,
			TopK:            req.Options.TopK,
			TopP:            req.Options.TopP,
			MaxOutputTokens: req.Options.MaxOutputTokens,
		},
		SafetySettings: safety,
	}
}

// redactKey keeps the API key out of url.Error messages, which include the full URL
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
