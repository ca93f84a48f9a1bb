package service

import (
	"strings"
	"testing"

	"braindump-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMaterialize_CountsMatchResult(t *testing.T) {
	sub := models.BrainDumpSubmission{UserID: "u1", Text: "raw"}
	data := models.ExtractedResult{
		Todos: []models.Todo{
			{ID: "t1", Text: "Essay", Due: strPtr("Friday"), Priority: models.PriorityHigh, Subject: strPtr("English")},
			{ID: "t2", Text: "Lab", Priority: models.PriorityLow, Completed: true},
			{ID: "t3", Text: "Quiz", Priority: models.PriorityMedium},
		},
		Projects: []models.Project{{ID: "p1", Name: "Thesis"}},
		Events:   []models.Event{{ID: "e1", Name: "Class", Time: "Mon", Recurring: true}},
		Notes: []models.Note{
			{ID: "n1", Content: "Chapter 5 covers integrals", Subject: strPtr("Math")},
		},
	}

	ws := Materialize(sub, data)

	assert.Len(t, ws.Tasks, len(data.Todos))
	assert.Len(t, ws.Notes, len(data.Notes))

	assert.Equal(t, "u1", ws.Audit.UserID)
	assert.Equal(t, "raw", ws.Audit.RawText)
	assert.Equal(t, data, ws.Audit.ProcessedData)

	first := ws.Tasks[0]
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, "Essay", first.Text)
	assert.Equal(t, models.PriorityHigh, first.Priority)
	require.NotNil(t, first.DueDate)
	assert.Equal(t, "Friday", *first.DueDate)
	assert.Equal(t, "English", *first.Subject)
	assert.True(t, ws.Tasks[1].Completed)
	assert.Nil(t, ws.Tasks[1].DueDate)

	note := ws.Notes[0]
	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, "Chapter 5 covers integrals", note.Title)
	assert.Equal(t, "Math", *note.Subject)
	assert.NotNil(t, note.Tags)
	assert.Empty(t, note.Tags)
}

func TestMaterialize_EmptyResultOnlyAudits(t *testing.T) {
	ws := Materialize(models.BrainDumpSubmission{UserID: "u1", Text: "raw"}, models.ExtractedResult{})

	assert.Empty(t, ws.Tasks)
	assert.Empty(t, ws.Notes)
	assert.Equal(t, "u1", ws.Audit.UserID)
}

func TestMaterialize_FallbackResult(t *testing.T) {
	input := strings.Repeat("x", 300)
	ws := Materialize(models.BrainDumpSubmission{UserID: "u1", Text: input}, SynthesizeFallback(input))

	require.Len(t, ws.Tasks, 1)
	require.Len(t, ws.Notes, 1)
	assert.Equal(t, FallbackTaskText, ws.Tasks[0].Text)
	assert.Equal(t, strings.Repeat("x", 50)+"...", ws.Notes[0].Title)
}

func TestNoteTitle(t *testing.T) {
	exactly50 := strings.Repeat("a", 50)
	assert.Equal(t, exactly50, NoteTitle(exactly50))
	assert.Equal(t, exactly50+"...", NoteTitle(exactly50+"b"))
	assert.Equal(t, "short", NoteTitle("short"))
	assert.Equal(t, "", NoteTitle(""))

	// characters, not bytes
	accented := strings.Repeat("é", 50)
	assert.Equal(t, accented, NoteTitle(accented))
	assert.Equal(t, accented+"...", NoteTitle(accented+"é"))
}
