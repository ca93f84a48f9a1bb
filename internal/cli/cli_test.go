package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"braindump-service/internal/config"
	"braindump-service/internal/llm"
	"braindump-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	reply string
	err   error
}

func (s stubProvider) Extract(context.Context, string) (string, error) { return s.reply, s.err }
func (s stubProvider) Close() error                                     { return nil }
func (s stubProvider) GetModelInfo() map[string]interface{}             { return map[string]interface{}{"model": "stub"} }

func testEnv(t *testing.T, provider stubProvider) (*env, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	cfgPath := filepath.Join(dir, "config.yml")
	body := "providers:\n  - type: openai\n    api_key: test\ndatabase:\n  type: sqlite\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	e := defaultEnv()
	e.logger = zap.NewNop()
	e.newExtractor = func(*config.Config, *zap.Logger) (llm.Provider, error) { return provider, nil }
	return e, cfgPath
}

func run(e *env, stdin string, args ...string) (string, error) {
	root := newRoot(e)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProcess_FromStdin(t *testing.T) {
	e, cfgPath := testEnv(t, stubProvider{reply: `{"todos":[{"id":"t1","text":"Study","priority":"high","completed":false}]}`})

	out, err := run(e, "Math exam May 30", "--config", cfgPath, "process", "--user", "u1")
	require.NoError(t, err)

	var resp models.BrainDumpResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Todos, 1)
	assert.Equal(t, "Study", resp.Data.Todos[0].Text)
}

func TestProcess_FromFileWithFallback(t *testing.T) {
	e, cfgPath := testEnv(t, stubProvider{reply: "I could not parse that"})
	input := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(input, []byte("Physics homework problems 1-15"), 0o600))

	out, err := run(e, "", "--config", cfgPath, "process", "-u", "u1", "-f", input)
	require.NoError(t, err)

	var resp models.BrainDumpResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Notes, 1)
	assert.Equal(t, "Physics homework problems 1-15...", resp.Data.Notes[0].Content)
}

func TestProcess_Errors(t *testing.T) {
	e, cfgPath := testEnv(t, stubProvider{err: errors.New("upstream 500")})

	_, err := run(e, "", "--config", cfgPath, "process", "--user", "u1")
	assert.Error(t, err, "empty stdin is a validation error")

	_, err = run(e, "Math exam", "--config", cfgPath, "process", "--user", "u1")
	assert.ErrorContains(t, err, "upstream 500")

	_, err = run(e, "Math exam", "--config", cfgPath, "process")
	assert.Error(t, err, "--user is required")
}

func TestMigrate(t *testing.T) {
	e, cfgPath := testEnv(t, stubProvider{})

	out, err := run(e, "", "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sqlite schema is up to date\n", out)
}

func TestMigrate_CreatesDataDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "nested", "braindump.db")
	cfgPath := filepath.Join(dir, "config.yml")
	body := "providers:\n  - type: openai\n    api_key: test\ndatabase:\n  type: sqlite\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	e := defaultEnv()
	e.logger = zap.NewNop()

	_, err := run(e, "", "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)
}
