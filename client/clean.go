package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/mwalimu/core/course"
)

// CleanContent drops what the portal editor leaves behind: blank questions and
// objectives, and topics without a title. Kept values are left as typed and
// collections are never nil.
func CleanContent(c course.Content) course.Content {
	out := course.Content{
		Topics:             make([]course.Topic, 0, len(c.Topics)),
		LearningObjectives: dropBlank(c.LearningObjectives),
		AIScope:            c.AIScope,
	}
	for _, t := range c.Topics {
		if isBlank(t.Title) {
			continue
		}
		out.Topics = append(out.Topics, course.Topic{ID: t.ID, Title: t.Title, Questions: dropBlank(t.Questions)})
	}
	return out
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func dropBlank(ss []string) []string {
	kept := make([]string, 0, len(ss))
	for _, s := range ss {
		if !isBlank(s) {
			kept = append(kept, s)
		}
	}
	return kept
}

// BackupFilename names a course document backup taken at now.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("courseData-backup-%d.json", now.UnixMilli())
}
