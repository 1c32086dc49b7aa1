package llmsvc

import (
	"context"
	"fmt"
	"strings"

	llmsdk "github.com/hoangvvo/llm-sdk/sdk-go"
	"github.com/hoangvvo/llm-sdk/sdk-go/google"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/chat"
)

var ErrNotConfigured = errors.New("generation service is not configured")

// GenerationOptions are the sampling settings sent with every call.
type GenerationOptions struct {
	Temperature float64
	TopP        float64
	TopK        int32
	MaxTokens   uint32
}

var DefaultGenerationOptions = GenerationOptions{
	Temperature: 1,
	TopP:        0.95,
	TopK:        40,
	MaxTokens:   8192,
}

type languageModel interface {
	Generate(ctx context.Context, input *llmsdk.LanguageModelInput) (*llmsdk.ModelResponse, error)
}

type gemini struct {
	model   languageModel
	modelID string
	opts    GenerationOptions
	logger  core.Logger
}

var _ chat.Generator = (*gemini)(nil) // interface compliance check

// NewGenerator returns the Gemini backed chat.Generator. Without an API key, every call
// fails with ErrNotConfigured.
func NewGenerator(conf *core.Config, logger core.Logger) chat.Generator {
	if conf.Gemini.APIKey == "" {
		logger.Warn("gemini API key missing: chat requests will fail")
		return unconfigured{}
	}
	model := google.NewGoogleModel(conf.Gemini.Model, google.GoogleModelOptions{
		APIKey:  conf.Gemini.APIKey,
		BaseURL: conf.Gemini.BaseURL,
	})
	return newGemini(model, conf.Gemini.Model, DefaultGenerationOptions, logger)
}

func newGemini(model languageModel, modelID string, opts GenerationOptions, logger core.Logger) *gemini {
	return &gemini{model: model, modelID: modelID, opts: opts, logger: logger}
}

func textMessage(msg chat.Message) llmsdk.Message {
	parts := []llmsdk.Part{{TextPart: &llmsdk.TextPart{Text: msg.Text}}}
	if msg.Role == chat.RoleModel {
		return llmsdk.Message{AssistantMessage: &llmsdk.AssistantMessage{Content: parts}}
	}
	return llmsdk.Message{UserMessage: &llmsdk.UserMessage{Content: parts}}
}

func (g *gemini) input(req chat.Request) *llmsdk.LanguageModelInput {
	temperature, topP, topK, maxTokens := g.opts.Temperature, g.opts.TopP, g.opts.TopK, g.opts.MaxTokens
	in := &llmsdk.LanguageModelInput{
		Messages:    make([]llmsdk.Message, 0, len(req.Messages)),
		Temperature: &temperature,
		TopP:        &topP,
		TopK:        &topK,
		MaxTokens:   &maxTokens,
	}
	if req.System != "" {
		system := req.System
		in.SystemPrompt = &system
	}
	for _, msg := range req.Messages {
		in.Messages = append(in.Messages, textMessage(msg))
	}
	return in
}

func (g *gemini) Generate(ctx context.Context, req chat.Request) (string, error) {
	resp, err := g.model.Generate(ctx, g.input(req))
	if err != nil {
		var lmErr *llmsdk.LanguageModelError
		if errors.As(err, &lmErr) {
			return "", errors.Wrapf(err, "gemini %s (kind=%s status=%d)", g.modelID, lmErr.Kind, lmErr.Status)
		}
		return "", errors.Wrapf(err, "gemini %s", g.modelID)
	}

	var sb strings.Builder
	for _, part := range resp.Content {
		if part.TextPart != nil {
			sb.WriteString(part.TextPart.Text)
		}
	}
	if resp.Usage != nil {
		g.logger.Debug(fmt.Sprintf("gemini %s usage: %d in / %d out tokens",
			g.modelID, resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}
	return sb.String(), nil
}

type unconfigured struct{}

func (unconfigured) Generate(context.Context, chat.Request) (string, error) {
	return "", ErrNotConfigured
}
