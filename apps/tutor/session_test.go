package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/client"
	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/tests"
)

type generatorFunc func(ctx context.Context, req chat.Request) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req chat.Request) (string, error) { return f(ctx, req) }

func newSession(t *testing.T, gen chat.Generator, input string) (*session, *bytes.Buffer, *testutil.Logger) {
	api := testutil.StartAPI(t, gen)
	cl := client.New(api.URL, nil)
	logger := new(testutil.Logger)
	out := new(bytes.Buffer)
	return &session{
		conv:    chat.NewConversation(logger),
		sender:  cl,
		catalog: cl,
		in:      strings.NewReader(input),
		out:     out,
	}, out, logger
}

func TestSession_run(t *testing.T) {
	var prompts []string
	gen := generatorFunc(func(_ context.Context, req chat.Request) (string, error) {
		prompt := req.Messages[len(req.Messages)-1].Text
		prompts = append(prompts, prompt)
		return "answer to " + prompt, nil
	})
	s, out, _ := newSession(t, gen, strings.Join([]string{
		"/topics",
		"2",
		"7",
		"/objectives",
		"   ",
		"What is recursion?",
		"/quit",
		"never sent",
	}, "\n"))

	require.NoError(t, s.run(context.Background()))
	assert.Equal(t, []string{"Explain the difference between compilation and interpretation", "What is recursion?"}, prompts)

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "tutor> "+chat.Greeting+"\n"))
	assert.Contains(t, got, "Introduction to Programming\n  1. What is a variable?\n  2. Explain the difference")
	assert.Contains(t, got, "tutor> answer to Explain the difference between compilation and interpretation\n")
	assert.Contains(t, got, "no example question 7, try /topics\n")
	assert.Contains(t, got, "- Understand fundamental programming concepts\n")
	assert.Contains(t, got, "you> What is recursion?\ntutor> answer to What is recursion?\n")
	assert.NotContains(t, got, "never sent")
	assert.Equal(t, chat.Idle, s.conv.State())
}

func TestSession_run_failure(t *testing.T) {
	gen := generatorFunc(func(context.Context, chat.Request) (string, error) {
		return "", errors.New("status 503: backend unavailable")
	})
	s, out, logger := newSession(t, gen, "What is a variable?\n")

	require.NoError(t, s.run(context.Background()))
	assert.Contains(t, out.String(), "tutor> "+chat.FailureText+"\n")
	assert.NotContains(t, out.String(), "upstream_error")
	assert.True(t, logger.Contains("upstream_error"))
	assert.Equal(t, chat.ErrorDisplayed, s.conv.State())
}
