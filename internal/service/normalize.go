package service

import (
	"strings"

	"braindump-service/internal/models"
)

// Normalize trims the submission and rejects it when either part is empty.
func Normalize(text, userID string) (models.BrainDumpSubmission, error) {
	text = strings.TrimSpace(text)
	userID = strings.TrimSpace(userID)

	if text == "" {
		return models.BrainDumpSubmission{}, &ValidationError{Field: "text"}
	}
	if userID == "" {
		return models.BrainDumpSubmission{}, &ValidationError{Field: "userId"}
	}

	return models.BrainDumpSubmission{UserID: userID, Text: text}, nil
}
