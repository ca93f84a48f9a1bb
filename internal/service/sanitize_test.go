package service

import (
	"strings"
	"testing"

	"braindump-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanReply = `{
  "todos": [
    {"id": "t1", "text": "Study for math exam", "due": "May 30", "priority": "high", "completed": false, "subject": "Math"},
    {"id": "t2", "text": "Read Shakespeare Act 2", "due": null, "priority": "low", "completed": false, "subject": null}
  ],
  "projects": [{"id": "p1", "name": "Lab report", "steps": [{"id": "s1", "text": "Outline", "completed": false}]}],
  "events": [{"id": "e1", "name": "Biology class", "time": "Monday 10am", "recurring": true}],
  "notes": [],
  "subjects": ["Math", "Biology"]
}`

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fence without newlines", in: "```json{\"a\":1}```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  \n```json\n{\"a\":1}\n```\n  ", want: `{"a":1}`},
		{name: "crlf", in: "```json\r\n{\"a\":1}\r\n```", want: `{"a":1}`},
		{name: "prose untouched", in: "Sorry, I can't help with that", want: "Sorry, I can't help with that"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestParseExtraction_FencedEqualsUnfenced(t *testing.T) {
	plain, err := ParseExtraction(cleanReply)
	require.NoError(t, err)

	fenced, err := ParseExtraction("```json\n" + cleanReply + "\n```")
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	require.Len(t, plain.Todos, 2)
	assert.Equal(t, "Study for math exam", plain.Todos[0].Text)
	assert.Equal(t, models.PriorityHigh, plain.Todos[0].Priority)
	require.NotNil(t, plain.Todos[0].Due)
	assert.Equal(t, "May 30", *plain.Todos[0].Due)
	assert.Nil(t, plain.Todos[1].Due)
	assert.Nil(t, plain.Todos[1].Subject)
	require.Len(t, plain.Events, 1)
	assert.True(t, plain.Events[0].Recurring)
	assert.Equal(t, []string{"Math", "Biology"}, plain.Subjects)
}

func TestParseExtraction_MissingKeysBecomeEmpty(t *testing.T) {
	result, err := ParseExtraction(`{"todos": [{"id": "t1", "text": "Only a task", "priority": "medium"}], "projects": [{"id": "p1", "name": "No steps"}]}`)
	require.NoError(t, err)

	assert.Len(t, result.Todos, 1)
	assert.NotNil(t, result.Notes)
	assert.Empty(t, result.Notes)
	assert.NotNil(t, result.Events)
	assert.NotNil(t, result.Subjects)
	require.Len(t, result.Projects, 1)
	assert.NotNil(t, result.Projects[0].Steps)
}

func TestSanitize_KeepsNumericIDs(t *testing.T) {
	reply := `{
  "todos": [
    {"id": 1, "text": "Study for math exam", "due": "May 30", "priority": "high", "completed": false, "subject": "Math"},
    {"id": 2, "text": "Review biology notes", "due": null, "priority": "medium", "completed": null, "subject": "Biology"}
  ],
  "events": [{"id": 3, "name": "Biology class", "time": "Monday 10am", "recurring": true}]
}`

	s := Sanitize(reply, "Math exam May 30 | Biology class every Monday 10am")

	require.False(t, s.Fallback, "unexpected fallback: %v", s.ParseErr)
	require.Len(t, s.Data.Todos, 2)
	assert.Equal(t, "1", s.Data.Todos[0].ID)
	assert.Equal(t, "Study for math exam", s.Data.Todos[0].Text)
	assert.False(t, s.Data.Todos[1].Completed)
	require.Len(t, s.Data.Events, 1)
	assert.Equal(t, "3", s.Data.Events[0].ID)
	assert.True(t, s.Data.Events[0].Recurring)
}

func TestParseExtraction_Rejects(t *testing.T) {
	inputs := map[string]string{
		"prose":          "Sorry, I can't help with that",
		"empty":          "",
		"null":           "null",
		"array":          `[{"text": "x"}]`,
		"truncated":      `{"todos": [{"text": "x"`,
		"wrong type":     `{"todos": "write essay"}`,
		"object as id":   `{"todos": [{"id": {"n": 1}, "text": "x"}]}`,
		"trailing data":  `{"todos": []} and some commentary`,
		"two objects":    `{"todos": []}{"notes": []}`,
		"fenced garbage": "```json\nnot json\n```",
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseExtraction(in)
			assert.Error(t, err)
		})
	}
}

func TestSanitize_IdempotentOnValidReply(t *testing.T) {
	first := Sanitize(cleanReply, "input")
	second := Sanitize(cleanReply, "input")

	assert.False(t, first.Fallback)
	assert.NoError(t, first.ParseErr)
	assert.Equal(t, first.Data, second.Data)
}

func TestSanitize_FallbackOnInvalidReply(t *testing.T) {
	input := "Math exam May 30 | Biology class every Monday 10am"

	first := Sanitize("Sorry, I can't help with that", input)
	second := Sanitize("Sorry, I can't help with that", input)

	require.True(t, first.Fallback)
	assert.Error(t, first.ParseErr)
	require.Len(t, first.Data.Todos, 1)
	require.Len(t, first.Data.Notes, 1)
	assert.Equal(t, input+"...", first.Data.Notes[0].Content)

	assert.NotEqual(t, first.Data.Todos[0].ID, second.Data.Todos[0].ID)
	assert.NotEqual(t, first.Data.Notes[0].ID, second.Data.Notes[0].ID)
}

func TestSanitize_FallbackTruncatesLongInput(t *testing.T) {
	input := strings.Repeat("abcdefghij", 30)

	s := Sanitize("not json", input)

	require.Len(t, s.Data.Notes, 1)
	assert.Equal(t, input[:200]+"...", s.Data.Notes[0].Content)
}
