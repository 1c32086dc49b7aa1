package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

const (
	Idle State = iota
	Sending
	ErrorDisplayed
)

const (
	Greeting    = "Hello! How can I help you today?"
	FailureText = "Sorry, I ran into an error. Please try again."
)

var (
	ErrBusy       = errors.New("a message is already being sent")
	ErrNotSending = errors.New("no message is being sent")
)

type (
	State int

	// Sender delivers one prompt and returns the generated text.
	Sender interface {
		Send(ctx context.Context, prompt string) (string, error)
	}

	SenderFunc func(ctx context.Context, prompt string) (string, error)

	// Conversation is the client side chat state machine:
	// Idle --Submit--> Sending --Resolve--> Idle
	//                  Sending --Fail-----> ErrorDisplayed --Submit--> Sending
	// At most one prompt is in flight.
	Conversation struct {
		mu         sync.Mutex
		state      State
		transcript []Message
		logger     core.Logger
	}
)

func (f SenderFunc) Send(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case ErrorDisplayed:
		return "error"
	}
	return "unknown"
}

func NewConversation(logger core.Logger) *Conversation {
	return &Conversation{
		transcript: []Message{{Role: RoleModel, Text: Greeting}},
		logger:     logger,
	}
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the messages shown so far.
func (c *Conversation) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]Message, len(c.transcript))
	copy(msgs, c.transcript)
	return msgs
}

// Submit appends the user message right away and enters Sending.
func (c *Conversation) Submit(prompt string) error {
	prompt = core.CleanString(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Sending {
		return ErrBusy
	}
	c.transcript = append(c.transcript, Message{Role: RoleUser, Text: prompt})
	c.state = Sending
	return nil
}

func (c *Conversation) Resolve(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Sending {
		return ErrNotSending
	}
	c.transcript = append(c.transcript, Message{Role: RoleModel, Text: text})
	c.state = Idle
	return nil
}

// Fail shows FailureText in place of the reply; err only goes to the logs.
func (c *Conversation) Fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Sending {
		return ErrNotSending
	}
	c.transcript = append(c.transcript, Message{Role: RoleModel, Text: FailureText})
	c.state = ErrorDisplayed
	if c.logger != nil {
		c.logger.Error("chat request failed", err)
	}
	return nil
}

// Ask runs one full turn: Submit, send, then Resolve or Fail.
// It returns the model message appended to the transcript. A send failure is returned
// alongside the FailureText message; Submit errors leave the transcript untouched.
func (c *Conversation) Ask(ctx context.Context, sender Sender, prompt string) (Message, error) {
	if err := c.Submit(prompt); err != nil {
		return Message{}, err
	}

	text, err := sender.Send(ctx, core.CleanString(prompt))
	if err == nil && core.CleanString(text) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		_ = c.Fail(err)
		return Message{Role: RoleModel, Text: FailureText}, err
	}
	_ = c.Resolve(text)
	return Message{Role: RoleModel, Text: text}, nil
}
