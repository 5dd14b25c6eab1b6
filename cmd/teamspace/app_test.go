package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamspace/internal/config"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/seed"
	"github.com/nhle/teamspace/internal/workspace"
)

// writeConfig points a fresh config at a sqlite file in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.SQLitePath = filepath.Join(dir, "workspace.db")
	cfg.Log.Level = "error"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "teamspace version "+Version)
}

func TestCommands_PersistAcrossInvocations(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 projects, 3 documents")

	out, err = run(t, cfg, "task", "create", "mdx", "Write release notes", "--points", "3", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Created MDX-7 in Sprint 1")

	out, err = run(t, cfg, "tasks", "--search", "release notes")
	require.NoError(t, err)
	assert.Contains(t, out, "MDX-7")

	out, err = run(t, cfg, "task", "status", "MDX-7", "done")
	require.NoError(t, err)
	assert.Contains(t, out, "MDX-7 is now Done")

	out, err = run(t, cfg, "task", "show", "MDX-7")
	require.NoError(t, err)
	assert.Contains(t, out, "Done")
	assert.Contains(t, out, "3 points")
}

func TestCommands_Errors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "task", "show", "not-a-key")
	require.ErrorIs(t, err, workspace.ErrInvalid)

	_, err = run(t, cfg, "task", "show", "MDX-99")
	require.ErrorIs(t, err, workspace.ErrNotFound)

	_, err = run(t, cfg, "board", "NOPE")
	require.ErrorIs(t, err, workspace.ErrNotFound)

	_, err = run(t, cfg, "task", "create", "MDX", "  ")
	require.ErrorIs(t, err, workspace.ErrInvalid)
}

func TestCommands_Board(t *testing.T) {
	out, err := run(t, writeConfig(t), "board", "MDX", "--width", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "MDX · Sprint 1")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "% done")
}

func TestCommands_SessionAndChat(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "whoami")
	require.Error(t, err)

	out, err := run(t, cfg, "login", "--email", "jane.doe@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Jane Doe <jane.doe@example.com>")

	out, err = run(t, cfg, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "jane.doe@example.com")

	_, err = run(t, cfg, "chat", "send", "#general", "Shipping MDX-3 today")
	require.NoError(t, err)

	out, err = run(t, cfg, "chat", "read", "general")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Shipping MDX-3 today")

	_, err = run(t, cfg, "logout")
	require.NoError(t, err)
	_, err = run(t, cfg, "chat", "send", "general", "hi")
	require.Error(t, err)
}

func TestCommands_DocsAndNotifications(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "docs", "export", seed.DocOnboardingID)
	require.NoError(t, err)
	assert.Contains(t, out, "# Welcome to MarineDox")

	out, err = run(t, cfg, "notifications")
	require.NoError(t, err)
	assert.Contains(t, out, "4 unread")

	_, err = run(t, cfg, "notifications", "read-all")
	require.NoError(t, err)
	out, err = run(t, cfg, "notifications")
	require.NoError(t, err)
	assert.Contains(t, out, "0 unread")

	out, err = run(t, cfg, "folders", "show", seed.FolderEngineeringID)
	require.NoError(t, err)
	assert.Contains(t, out, "MDX-2")
}

func TestPickSprint(t *testing.T) {
	p := model.Project{Key: "ST", Sprints: []model.Sprint{
		{ID: "a", Name: "Sprint 1", Status: model.SprintCompleted},
		{ID: "b", Name: "Sprint 2", Status: model.SprintActive},
	}}

	s, err := pickSprint(p, "")
	require.NoError(t, err)
	assert.Equal(t, "b", s.ID)

	s, err = pickSprint(p, "sprint 1")
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)

	_, err = pickSprint(p, "Sprint 9")
	require.Error(t, err)
	_, err = pickSprint(model.Project{Key: "X"}, "")
	require.Error(t, err)
}
