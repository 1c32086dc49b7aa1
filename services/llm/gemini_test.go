package llmsvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	llmsdk "github.com/hoangvvo/llm-sdk/sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/chat"
	testutil "github.com/trezcool/mwalimu/tests"
)

type modelMock struct {
	input *llmsdk.LanguageModelInput
	resp  *llmsdk.ModelResponse
	err   error
}

func (m *modelMock) Generate(_ context.Context, input *llmsdk.LanguageModelInput) (*llmsdk.ModelResponse, error) {
	m.input = input
	return m.resp, m.err
}

func TestGemini_Generate_mapsRequest(t *testing.T) {
	model := &modelMock{resp: &llmsdk.ModelResponse{Content: []llmsdk.Part{
		{TextPart: &llmsdk.TextPart{Text: "A variable "}},
		{TextPart: &llmsdk.TextPart{Text: "names a value."}},
	}}}
	gen := newGemini(model, "gemini-2.5-flash", DefaultGenerationOptions, new(testutil.Logger))

	req := chat.BuildRequest(core.HistoryModeFixedScope, "You are a COMP1010 tutor", "What is a variable?")
	text, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "A variable names a value.", text)

	in := model.input
	require.NotNil(t, in)
	assert.Nil(t, in.SystemPrompt)
	require.Len(t, in.Messages, 3)
	assert.Equal(t, "You are a COMP1010 tutor", in.Messages[0].UserMessage.Content[0].TextPart.Text)
	assert.Equal(t, chat.PrimingReply, in.Messages[1].AssistantMessage.Content[0].TextPart.Text)
	assert.Equal(t, "What is a variable?", in.Messages[2].UserMessage.Content[0].TextPart.Text)
	assert.Equal(t, 1.0, *in.Temperature)
	assert.Equal(t, 0.95, *in.TopP)
	assert.Equal(t, int32(40), *in.TopK)
	assert.Equal(t, uint32(8192), *in.MaxTokens)

	req = chat.BuildRequest(core.HistoryModeNone, "You are a COMP1010 tutor", "What is a variable?")
	_, err = gen.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, model.input.SystemPrompt)
	assert.Equal(t, "You are a COMP1010 tutor", *model.input.SystemPrompt)
	assert.Len(t, model.input.Messages, 1)
}

func TestGemini_Generate_providerError(t *testing.T) {
	model := &modelMock{err: llmsdk.NewStatusCodeError(http.StatusTooManyRequests, "quota exceeded")}
	gen := newGemini(model, "gemini-2.5-flash", DefaultGenerationOptions, new(testutil.Logger))

	_, err := gen.Generate(context.Background(), chat.Request{Messages: []chat.Message{{Role: chat.RoleUser, Text: "hi"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")

	var lmErr *llmsdk.LanguageModelError
	assert.True(t, errors.As(err, &lmErr))
}

func TestNewGenerator_google(t *testing.T) {
	var gotKey, gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Compilation happens ahead of time."}]}}]}`))
	}))
	defer srv.Close()

	conf := &core.Config{}
	conf.Gemini.APIKey = "test-key"
	conf.Gemini.Model = "gemini-2.5-flash"
	conf.Gemini.BaseURL = srv.URL

	gen := NewGenerator(conf, new(testutil.Logger))
	req := chat.BuildRequest(core.HistoryModeNone, "You are a COMP1010 tutor", "Compilation vs interpretation?")
	text, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Compilation happens ahead of time.", text)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Contains(t, gotBody, "contents")
	assert.Contains(t, gotBody, "systemInstruction")
}

func TestNewGenerator_unconfigured(t *testing.T) {
	logger := new(testutil.Logger)
	gen := NewGenerator(&core.Config{}, logger)
	_, err := gen.Generate(context.Background(), chat.Request{})
	assert.Equal(t, ErrNotConfigured, err)
	assert.True(t, logger.Contains("API key missing"))
}
