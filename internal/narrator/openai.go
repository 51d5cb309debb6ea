package narrator

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"

	"dungeon-master/internal/config"
	"dungeon-master/internal/model"
)

const (
	sceneMaxTokens   = 600
	sceneTemperature = 0.9
)

// OpenAINarrator asks an OpenAI chat model for JSON-formatted turns.
type OpenAINarrator struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAINarrator creates a narrator from config. Extra options are appended
// after the config-derived ones, so tests can point it at a local server.
func NewOpenAINarrator(cfg *config.OpenAIConfig, opts ...option.RequestOption) *OpenAINarrator {
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAINarrator{
		client:      openai.NewClient(append(base, opts...)...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// InitialScene implements Narrator.
func (n *OpenAINarrator) InitialScene(ctx context.Context, req SceneRequest) (*Scene, error) {
	if req.AdventureType == "" {
		req.AdventureType = "fantasy"
	}

	content, err := n.complete(ctx, sceneSystemPrompt(req), sceneUserPrompt(req), sceneMaxTokens, sceneTemperature)
	if err != nil {
		return nil, err
	}

	scene, err := parseScene(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return scene, nil
}

// Respond implements Narrator.
func (n *OpenAINarrator) Respond(ctx context.Context, gc Context, action string, roll *model.DiceRollResult) (*Response, error) {
	content, err := n.complete(ctx, respondSystemPrompt(gc), respondUserPrompt(gc, action, roll), n.maxTokens, n.temperature)
	if err != nil {
		return nil, err
	}

	resp, err := parseResponse(content, gc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

func (n *OpenAINarrator) complete(ctx context.Context, system, user string, maxTokens int64, temperature float64) (string, error) {
	completion, err := n.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(n.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		log.Error().Err(err).Str("model", n.model).Msg("OpenAI completion failed")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	log.Debug().
		Str("model", n.model).
		Int64("prompt_tokens", completion.Usage.PromptTokens).
		Int64("completion_tokens", completion.Usage.CompletionTokens).
		Msg("OpenAI completion")

	return completion.Choices[0].Message.Content, nil
}
