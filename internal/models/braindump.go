package models

import "time"

// Priority of an extracted todo
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// BrainDumpSubmission is the normalized input of a single pipeline run
type BrainDumpSubmission struct {
	UserID string
	Text   string
}

// BrainDumpRequest is the inbound HTTP body
type BrainDumpRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId"`
}

// ExtractedResult is the structure produced by the model or by the fallback synthesizer.
// Every field is optional when decoding model output.
type ExtractedResult struct {
	Todos    []Todo    `json:"todos"`
	Projects []Project `json:"projects"`
	Events   []Event   `json:"events"`
	Notes    []Note    `json:"notes"`
	Subjects []string  `json:"subjects"`
}

// Todo is a single actionable item
type Todo struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Due       *string  `json:"due"`
	Priority  Priority `json:"priority"`
	Completed bool     `json:"completed"`
	Subject   *string  `json:"subject"`
}

// Project groups ordered steps under a name
type Project struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Steps []ProjectStep `json:"steps"`
}

type ProjectStep struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Event is a one-off or recurring schedule entry
type Event struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Time      string `json:"time"`
	Recurring bool   `json:"recurring"`
}

type Note struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Subject *string `json:"subject"`
}

// PersistedTask is a row of the tasks table
type PersistedTask struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	Priority  Priority  `json:"priority" db:"priority"`
	DueDate   *string   `json:"due_date,omitempty" db:"due_date"`
	Subject   *string   `json:"subject,omitempty" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PersistedNote is a row of the notes table
type PersistedNote struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Subject   *string   `json:"subject,omitempty" db:"subject"`
	Tags      []string  `json:"tags" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BrainDumpAudit records the raw exchange of one submission
type BrainDumpAudit struct {
	ID            int64           `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	RawText       string          `json:"raw_text" db:"raw_text"`
	ProcessedData ExtractedResult `json:"processed_data" db:"-"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// UserStats summarizes what the pipeline has stored for a user
type UserStats struct {
	UserID     string `json:"user_id"`
	BrainDumps int    `json:"brain_dumps"`
	Tasks      int    `json:"tasks"`
	Notes      int    `json:"notes"`
}

// BrainDumpResponse is the 200 body
type BrainDumpResponse struct {
	Success  bool            `json:"success"`
	Data     ExtractedResult `json:"data"`
	Message  string          `json:"message"`
	Warnings []WriteWarning  `json:"warnings,omitempty"`
}

// WriteWarning is a non-fatal persistence failure surfaced to the caller
type WriteWarning struct {
	Entity string `json:"entity"`
	Error  string `json:"error"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProcessedEvent is published after a brain dump has been processed
type ProcessedEvent struct {
	UserID     string    `json:"user_id"`
	Todos      int       `json:"todos"`
	Notes      int       `json:"notes"`
	Projects   int       `json:"projects"`
	Events     int       `json:"events"`
	Fallback   bool      `json:"fallback"`
	OccurredAt time.Time `json:"occurred_at"`
}
