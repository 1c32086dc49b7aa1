package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
)

const help = `Type a question and press enter.
  /topics       list topics and example questions
  /objectives   list the learning objectives
  <number>      ask the example question with that number
  /quit         leave`

type catalog interface {
	CourseData(ctx context.Context) (course.Snapshot, error)
}

// session is one terminal chat. Example questions are numbered in the order /topics shows them.
type session struct {
	conv     *chat.Conversation
	sender   chat.Sender
	catalog  catalog
	in       io.Reader
	out      io.Writer
	examples []string
}

func (s *session) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *session) say(msg chat.Message) {
	who := "you"
	if msg.Role == chat.RoleModel {
		who = "tutor"
	}
	s.printf("%s> %s\n", who, msg.Text)
}

func (s *session) run(ctx context.Context) error {
	for _, msg := range s.conv.Transcript() {
		s.say(msg)
	}
	s.printf("%s\n", help)

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/help":
			s.printf("%s\n", help)
		case line == "/topics":
			s.topics(ctx)
		case line == "/objectives":
			s.objectives(ctx)
		default:
			if n, err := strconv.Atoi(line); err == nil {
				if n < 1 || n > len(s.examples) {
					s.printf("no example question %d, try /topics\n", n)
					continue
				}
				line = s.examples[n-1]
			}
			s.ask(ctx, line)
		}
	}
	return errors.Wrap(scanner.Err(), "reading input")
}

func (s *session) ask(ctx context.Context, prompt string) {
	s.say(chat.Message{Role: chat.RoleUser, Text: prompt})
	msg, err := s.conv.Ask(ctx, s.sender, prompt)
	if err != nil && msg.Text == "" { // rejected before sending
		s.printf("%s\n", err)
		return
	}
	s.say(msg)
}

func (s *session) topics(ctx context.Context) {
	snap, err := s.catalog.CourseData(ctx)
	if err != nil {
		s.printf("could not load topics: %s\n", err)
		return
	}
	s.examples = s.examples[:0]
	for _, t := range snap.Topics {
		s.printf("%s\n", t.Title)
		for _, q := range t.Questions {
			s.examples = append(s.examples, q)
			s.printf("  %d. %s\n", len(s.examples), q)
		}
	}
	if len(snap.Topics) == 0 {
		s.printf("no topics yet\n")
	}
}

func (s *session) objectives(ctx context.Context) {
	snap, err := s.catalog.CourseData(ctx)
	if err != nil {
		s.printf("could not load learning objectives: %s\n", err)
		return
	}
	for _, o := range snap.LearningObjectives {
		s.printf("- %s\n", o)
	}
	if len(snap.LearningObjectives) == 0 {
		s.printf("no learning objectives yet\n")
	}
}
