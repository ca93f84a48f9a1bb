package service

import (
	"braindump-service/internal/models"

	"github.com/google/uuid"
)

const (
	FallbackTaskText   = "Review and organize extracted content"
	FallbackTaskDue    = "Today"
	FallbackSubject    = "General"
	fallbackNoteLength = 200
	truncationEllipsis = "..."
)

// SynthesizeFallback builds the result used when the model reply cannot be parsed:
// one review task and one note holding the start of the input.
func SynthesizeFallback(input string) models.ExtractedResult {
	due := FallbackTaskDue
	taskSubject := FallbackSubject
	noteSubject := FallbackSubject

	head, _ := truncateRunes(input, fallbackNoteLength)

	return models.ExtractedResult{
		Todos: []models.Todo{{
			ID:        uuid.NewString(),
			Text:      FallbackTaskText,
			Due:       &due,
			Priority:  models.PriorityMedium,
			Completed: false,
			Subject:   &taskSubject,
		}},
		Projects: []models.Project{},
		Events:   []models.Event{},
		Notes: []models.Note{{
			ID:      uuid.NewString(),
			Content: head + truncationEllipsis,
			Subject: &noteSubject,
		}},
		Subjects: []string{FallbackSubject},
	}
}

// truncateRunes cuts s to at most n characters and reports whether anything was cut.
func truncateRunes(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s, false
	}
	return string(runes[:n]), true
}
