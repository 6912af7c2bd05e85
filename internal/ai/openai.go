package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/jgoulah/envirolink/internal/config"
)

// OpenAIClient is the chat-completions provider. The first text part becomes
// the system message and everything after it the user message.
type OpenAIClient struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a client from config
func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	apiKey := cfg.GetOpenAIAPIKey()

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.AI.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AI.OpenAI.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client:  &client,
		apiKey:  apiKey,
		model:   cfg.GetOpenAIModel(),
		timeout: cfg.GetAITimeout(),
	}
}

// Generate sends req as one system and one user message
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", credentialMissing("OpenAI")
	}
	if len(req.Parts) == 0 {
		return "", &Error{Kind: ErrEmptyInput, Message: "no prompt parts"}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: buildMessages(req.Parts),
	}
	if req.Options.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Options.MaxOutputTokens))
	}
	params.Temperature = openai.Float(req.Options.Temperature)
	if req.Options.TopP > 0 {
		params.TopP = openai.Float(req.Options.TopP)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &Error{Kind: ErrTransport, StatusCode: apiErr.StatusCode, Message: "openai request rejected", Cause: err}
		}
		return "", transportError("openai request failed", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", malformed("openai returned empty response", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func buildMessages(parts []Part) []openai.ChatCompletionMessageParamUnion {
	system := parts[0].Text
	rest := parts[1:]

	var userParts []openai.ChatCompletionContentPartUnionParam
	var texts []string
	hasImage := false
	for _, p := range rest {
		if p.Image != nil {
			hasImage = true
			userParts = append(userParts, openai.ChatCompletionContentPartUnionParam{
				OfImageURL: &openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
						URL: "data:" + p.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Image.Data),
					},
				},
			})
			continue
		}
		texts = append(texts, p.Text)
		userParts = append(userParts, openai.ChatCompletionContentPartUnionParam{
			OfText: &openai.ChatCompletionContentPartTextParam{Text: p.Text},
		})
	}

	user := openai.ChatCompletionUserMessageParam{}
	if hasImage {
		user.Content = openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: userParts}
	} else {
		user.Content = openai.ChatCompletionUserMessageParamContentUnion{
			OfString: openai.String(strings.Join(texts, "\n\n")),
		}
	}

	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{OfUser: &user},
	}
}
