package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_EmbedsTextVerbatim(t *testing.T) {
	text := "Math exam May 30 | \"quoted\"\nnext line"

	got := BuildPrompt(text)

	assert.True(t, strings.HasPrefix(got, "Please analyze this student brain dump"))
	assert.Contains(t, got, `"`+text+`"`)
}

func TestSystemInstruction_DescribesAllCategories(t *testing.T) {
	for _, key := range []string{`"todos"`, `"projects"`, `"events"`, `"notes"`, `"subjects"`} {
		assert.Contains(t, SystemInstruction, key)
	}
}
