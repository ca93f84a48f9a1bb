package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"braindump-service/internal/models"
)

var (
	fenceOpen  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	fenceClose = regexp.MustCompile("\r?\n?```$")
)

// Sanitized is the outcome of turning a model reply into an ExtractedResult.
// Data is always usable; ParseErr is set when Data is the synthesized fallback.
type Sanitized struct {
	Data     models.ExtractedResult
	Fallback bool
	ParseErr error
}

// StripCodeFences removes a leading ```lang marker and a trailing ``` marker.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseExtraction decodes a model reply. Missing collections come back empty and scalar
// fields decode loosely; anything that is not a single JSON object with list-valued
// collections is an error.
func ParseExtraction(raw string) (models.ExtractedResult, error) {
	cleaned := StripCodeFences(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return models.ExtractedResult{}, errors.New("model reply is not a JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))

	var result models.ExtractedResult
	if err := dec.Decode(&result); err != nil {
		return models.ExtractedResult{}, fmt.Errorf("failed to parse model reply: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return models.ExtractedResult{}, errors.New("unexpected data after JSON object")
	}

	return withEmptyCollections(result), nil
}

// Sanitize never fails: a reply that cannot be parsed is replaced by the fallback built
// from the user's own input.
func Sanitize(raw, input string) Sanitized {
	result, err := ParseExtraction(raw)
	if err != nil {
		return Sanitized{
			Data:     SynthesizeFallback(input),
			Fallback: true,
			ParseErr: err,
		}
	}
	return Sanitized{Data: result}
}

func withEmptyCollections(r models.ExtractedResult) models.ExtractedResult {
	if r.Todos == nil {
		r.Todos = []models.Todo{}
	}
	if r.Projects == nil {
		r.Projects = []models.Project{}
	}
	for i := range r.Projects {
		if r.Projects[i].Steps == nil {
			r.Projects[i].Steps = []models.ProjectStep{}
		}
	}
	if r.Events == nil {
		r.Events = []models.Event{}
	}
	if r.Notes == nil {
		r.Notes = []models.Note{}
	}
	if r.Subjects == nil {
		r.Subjects = []string{}
	}
	return r
}
