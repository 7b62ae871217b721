package gemini

import (
	"context"
	"fmt"
	"strings"

	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/pkg/llm"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

var _ llm.LLMProvider = &GeminiProvider{}

// NewGeminiProvider creates a Gemini API client. baseURL is only set when
// talking to a proxy or a test server.
func NewGeminiProvider(ctx context.Context, apiKey, modelName, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, &apperror.ConfigurationError{Keys: []string{"GEMINI_API_KEY"}}
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{client: client, modelName: modelName}, nil
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.Apply(llm.Options{Temperature: 0.3, Model: g.modelName}, opts...)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(options.Temperature)),
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}

	var contents []*genai.Content
	for _, msg := range history {
		switch msg.Role {
		case "system":
			config.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, options.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	out := &llm.Completion{Text: responseText(resp)}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
