package course

import (
	"time"
)

// DefaultAIScope is used whenever no usable AI scope is stored.
const DefaultAIScope = "You are a helpful teaching assistant for COMP1010 - Introduction to Programming."

// DefaultSlidesFilename is reported when no slide deck was uploaded yet.
const DefaultSlidesFilename = "lecture9.pdf"

type Topic struct {
	ID        int      `json:"id" validate:"gt=0"`
	Title     string   `json:"title" validate:"notblank"`
	Questions []string `json:"questions" validate:"required"`
}

// Content is the course document edited from the portal.
type Content struct {
	Topics             []Topic  `json:"topics" validate:"required,dive"`
	LearningObjectives []string `json:"learningObjectives" validate:"required"`
	AIScope            string   `json:"aiScope" validate:"notblank"`
}

// Revision is one stored version of the Content. The one with the highest ID is current.
type Revision struct {
	ID        int64
	Content   Content
	UpdatedAt time.Time // UTC
}

// Snapshot is what readers of the course content get.
type Snapshot struct {
	Content
	SlidesFilename string `json:"slidesFilename"`
}

// DefaultContent returns a fresh copy of the built-in course content.
func DefaultContent() Content {
	return Content{
		Topics: []Topic{
			{
				ID:    1,
				Title: "Introduction to Programming",
				Questions: []string{
					"What is a variable?",
					"Explain the difference between compilation and interpretation",
				},
			},
		},
		LearningObjectives: []string{"Understand fundamental programming concepts"},
		AIScope:            DefaultAIScope,
	}
}

// Normalize makes sure collections are never nil.
func (c *Content) Normalize() {
	if c.Topics == nil {
		c.Topics = []Topic{}
	}
	for i := range c.Topics {
		if c.Topics[i].Questions == nil {
			c.Topics[i].Questions = []string{}
		}
	}
	if c.LearningObjectives == nil {
		c.LearningObjectives = []string{}
	}
}
