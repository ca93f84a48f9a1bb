package service

import "braindump-service/internal/models"

const noteTitleLength = 50

// WriteSet is everything one submission writes to the gateway.
// Projects and events are returned to the caller but never persisted.
type WriteSet struct {
	Audit models.BrainDumpAudit
	Tasks []models.PersistedTask
	Notes []models.PersistedNote
}

// Materialize maps a sanitized result onto persistence records.
func Materialize(sub models.BrainDumpSubmission, data models.ExtractedResult) WriteSet {
	ws := WriteSet{
		Audit: models.BrainDumpAudit{
			UserID:        sub.UserID,
			RawText:       sub.Text,
			ProcessedData: data,
		},
	}

	if len(data.Todos) > 0 {
		ws.Tasks = make([]models.PersistedTask, 0, len(data.Todos))
		for _, todo := range data.Todos {
			ws.Tasks = append(ws.Tasks, models.PersistedTask{
				UserID:    sub.UserID,
				Text:      todo.Text,
				Completed: todo.Completed,
				Priority:  todo.Priority,
				DueDate:   todo.Due,
				Subject:   todo.Subject,
			})
		}
	}

	if len(data.Notes) > 0 {
		ws.Notes = make([]models.PersistedNote, 0, len(data.Notes))
		for _, note := range data.Notes {
			ws.Notes = append(ws.Notes, models.PersistedNote{
				UserID:  sub.UserID,
				Title:   NoteTitle(note.Content),
				Content: note.Content,
				Subject: note.Subject,
				Tags:    []string{},
			})
		}
	}

	return ws
}

// NoteTitle is the first 50 characters of the content, with an ellipsis only when cut.
func NoteTitle(content string) string {
	title, cut := truncateRunes(content, noteTitleLength)
	if cut {
		return title + truncationEllipsis
	}
	return title
}
