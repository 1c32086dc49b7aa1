package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"

	// PrimingReply is the scripted model turn that acknowledges the AI scope in fixed-scope mode.
	PrimingReply = "Understood. I will assist students with COMP1010 concepts as described."

	// error codes safe to show to clients
	CodeUpstream      = "upstream_error"
	CodeEmptyResponse = "empty_response"

	auditTimeout = 5 * time.Second
)

var ErrEmptyPrompt = errors.New("Prompt is required")

type (
	Role string

	Message struct {
		Role Role   `json:"role"`
		Text string `json:"text"`
	}

	// Request is one stateless generation call.
	Request struct {
		System   string
		Messages []Message
	}

	Generator interface {
		Generate(ctx context.Context, req Request) (string, error)
	}

	// ScopeSource provides the current AI scope. It must never fail.
	ScopeSource interface {
		AIScope(ctx context.Context) string
	}

	AuditEntry struct {
		ID        uuid.UUID
		Prompt    string
		Response  string
		CreatedAt time.Time // UTC
	}

	AuditRepository interface {
		CreateEntry(ctx context.Context, entry AuditEntry) error
	}

	Reply struct {
		Text string `json:"aiResponse"`
	}

	Relay struct {
		gen    Generator
		scopes ScopeSource
		audit  AuditRepository
		mode   string
		logger core.Logger
	}
)

// NewRelay returns a Relay. audit may be nil.
func NewRelay(gen Generator, scopes ScopeSource, audit AuditRepository, historyMode string, logger core.Logger) *Relay {
	if historyMode == "" {
		historyMode = core.HistoryModeFixedScope
	}
	return &Relay{gen: gen, scopes: scopes, audit: audit, mode: historyMode, logger: logger}
}

// BuildRequest shapes the generation call for prompt according to the history mode.
func BuildRequest(mode, scope, prompt string) Request {
	if mode == core.HistoryModeNone {
		return Request{
			System:   scope,
			Messages: []Message{{Role: RoleUser, Text: prompt}},
		}
	}
	return Request{
		Messages: []Message{
			{Role: RoleUser, Text: scope},
			{Role: RoleModel, Text: PrimingReply},
			{Role: RoleUser, Text: prompt},
		},
	}
}

// Relay forwards prompt, together with the current AI scope, to the generator.
func (r *Relay) Relay(ctx context.Context, prompt string) (Reply, error) {
	prompt = core.CleanString(prompt)
	if prompt == "" {
		return Reply{}, core.NewValidationError(ErrEmptyPrompt)
	}

	req := BuildRequest(r.mode, r.scopes.AIScope(ctx), prompt)
	text, err := r.gen.Generate(ctx, req)
	if err != nil {
		return Reply{}, core.NewUpstreamError(CodeUpstream, errors.Wrap(err, "generating reply"))
	}
	if core.CleanString(text) == "" {
		return Reply{}, core.NewUpstreamError(CodeEmptyResponse, errors.New("generator returned no text"))
	}

	r.record(ctx, prompt, text)
	return Reply{Text: text}, nil
}

// Send implements Sender so a Conversation can talk to the relay directly.
func (r *Relay) Send(ctx context.Context, prompt string) (string, error) {
	reply, err := r.Relay(ctx, prompt)
	return reply.Text, err
}

// record writes the audit entry; failures are only logged.
func (r *Relay) record(ctx context.Context, prompt, response string) {
	if r.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	entry := AuditEntry{
		ID:        uuid.New(),
		Prompt:    prompt,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.audit.CreateEntry(ctx, entry); err != nil {
		r.logger.Warn(fmt.Sprintf("chat audit %s not recorded", entry.ID), err)
	}
}
