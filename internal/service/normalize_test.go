package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		userID    string
		wantField string
		wantText  string
	}{
		{name: "valid", text: "Math exam May 30", userID: "u1", wantText: "Math exam May 30"},
		{name: "trims", text: "  Math exam\n", userID: " u1 ", wantText: "Math exam"},
		{name: "missing text", text: "", userID: "u1", wantField: "text"},
		{name: "blank text", text: " \t\n", userID: "u1", wantField: "text"},
		{name: "missing user", text: "Math exam", userID: "", wantField: "userId"},
		{name: "both missing", wantField: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Normalize(tt.text, tt.userID)
			if tt.wantField != "" {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, sub.Text)
			assert.Equal(t, "u1", sub.UserID)
		})
	}
}
