package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaknet/monkeysync/internal/config"
	"github.com/yaknet/monkeysync/internal/fieldspec"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir, _ := newProject(t)

	expectedDirs := []string{
		"logs",
		"imports",
		filepath.Join("imports", "processed"),
		filepath.Join("imports", "out"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	_, configPath := newProject(t)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "Friends of the Library", cfg.Organization.Name)
	assert.Equal(t, "now-1M/M:now-1M/M", cfg.Stripe.Window)
	assert.Equal(t, "fieldspecs.yaml", cfg.Import.FieldSpecs)
}

func TestInit_FieldSpecs(t *testing.T) {
	dir, _ := newProject(t)

	specs, err := fieldspec.Load(filepath.Join(dir, "fieldspecs.yaml"))
	require.NoError(t, err)
	assert.Equal(t, fieldspec.Default(), specs)
}

func TestInit_Gitignore(t *testing.T) {
	dir, _ := newProject(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	contents := string(data)

	for _, pattern := range []string{".env", "*.db", "imports/processed/"} {
		assert.Contains(t, contents, pattern, ".gitignore should contain %s", pattern)
	}
}

func TestInit_GitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := runMonkeysync(t, nil, "init", dir, "--name", "Test Org")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: Initialize Test Org|MonkeySync <monkeysync@localhost>")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runMonkeysync(t, nil, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir, _ := newProject(t)

	out, err := runMonkeysync(t, nil, "init", dir, "--name", "Again", "--git=false")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}
