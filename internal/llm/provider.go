package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"thoughtcap/internal/config"
)

// Profile selects which model of a provider handles a request.
type Profile string

const (
	// ProfileClassify is the full model used for classification/enrichment.
	ProfileClassify Profile = "classify"
	// ProfilePicks is the cheaper model used for picks rationale.
	ProfilePicks Profile = "picks"
)

// Request is a single completion request against a provider.
type Request struct {
	Prompt      string
	Image       []byte // optional; requires a vision-capable provider
	ImageMIME   string
	Profile     Profile
	Temperature float32
	MaxTokens   int
}

// Provider is one configured LLM endpoint. Implementations must be safe for
// concurrent use and must respect ctx cancellation on the outbound call.
type Provider interface {
	Name() string
	SupportsVision() bool
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint
// through the go-openai SDK. Primary and fallback providers are two
// instances of this type with different configuration.
type OpenAIProvider struct {
	client        *openai.Client
	name          string
	classifyModel string
	picksModel    string
	vision        bool
}

// NewOpenAIProvider creates a provider from its configuration.
func NewOpenAIProvider(cfg config.ProviderConfig) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIProvider{
		client:        openai.NewClientWithConfig(clientConfig),
		name:          cfg.Name,
		classifyModel: cfg.ClassifyModel,
		picksModel:    cfg.PicksModel,
		vision:        cfg.SupportsVision,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) SupportsVision() bool { return p.vision }

// Complete performs one chat completion and returns the raw text content of
// the first choice. An empty choice list counts as an error so the gateway
// can fall back.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	model := p.classifyModel
	if req.Profile == ProfilePicks && p.picksModel != "" {
		model = p.picksModel
	}

	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Image) > 0 {
		if !p.vision {
			return "", fmt.Errorf("provider %s does not support vision input", p.name)
		}
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(req.Image))
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailAuto,
				},
			},
		}
	} else {
		message.Content = req.Prompt
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model %s", model)
	}

	return resp.Choices[0].Message.Content, nil
}
