package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodo_DecodesLooseScalars(t *testing.T) {
	var todo Todo
	err := json.Unmarshal([]byte(`{"id": 7, "text": "Essay", "due": null, "priority": "high", "completed": null, "subject": 101}`), &todo)
	require.NoError(t, err)

	assert.Equal(t, "7", todo.ID)
	assert.Equal(t, "Essay", todo.Text)
	assert.Nil(t, todo.Due)
	assert.Equal(t, PriorityHigh, todo.Priority)
	assert.False(t, todo.Completed)
	require.NotNil(t, todo.Subject)
	assert.Equal(t, "101", *todo.Subject)
}

func TestProject_DecodesStepsLoosely(t *testing.T) {
	var p Project
	err := json.Unmarshal([]byte(`{"id": 1, "name": "Thesis", "steps": [{"id": 2.5, "text": "Outline", "completed": true}]}`), &p)
	require.NoError(t, err)

	assert.Equal(t, "1", p.ID)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, ProjectStep{ID: "2.5", Text: "Outline", Completed: true}, p.Steps[0])
}

func TestEventAndNote_DecodeLooseScalars(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "name": "Class", "time": "Mon 10am", "recurring": null}`), &e))
	assert.Equal(t, Event{ID: "3", Name: "Class", Time: "Mon 10am"}, e)

	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"id": 4, "content": "Integrals"}`), &n))
	assert.Equal(t, "4", n.ID)
	assert.Nil(t, n.Subject)
}

func TestLooseDecoding_RejectsStructuralMismatch(t *testing.T) {
	inputs := []string{
		`{"id": {"nested": true}}`,
		`{"id": "t1", "completed": "yes"}`,
		`{"text": ["a", "b"]}`,
	}
	for _, in := range inputs {
		var todo Todo
		assert.Error(t, json.Unmarshal([]byte(in), &todo), in)
	}
}

func TestExtractedResult_RoundTripsThroughStrictEncoding(t *testing.T) {
	due := "Friday"
	in := ExtractedResult{
		Todos:    []Todo{{ID: "t1", Text: "Essay", Due: &due, Priority: PriorityLow, Completed: true}},
		Projects: []Project{{ID: "p1", Name: "Lab", Steps: []ProjectStep{{ID: "s1", Text: "Outline"}}}},
		Events:   []Event{{ID: "e1", Name: "Class", Time: "Mon", Recurring: true}},
		Notes:    []Note{{ID: "n1", Content: "x"}},
		Subjects: []string{"English"},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out ExtractedResult
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
