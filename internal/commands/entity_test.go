package commands_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaknet/monkeysync/internal/directory/emulator"
	"github.com/yaknet/monkeysync/internal/model"
)

func newDirectory(t *testing.T) (*emulator.Store, []string) {
	t.Helper()
	store, err := emulator.Open(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(emulator.NewRouter(store, "tok_test", zerolog.Nop()))
	t.Cleanup(srv.Close)
	return store, []string{"MONKEYPOD_API=" + srv.URL, "MONKEYPOD_TOKEN=tok_test"}
}

func TestEntity_CreateMatchDelete(t *testing.T) {
	store, env := newDirectory(t)
	_, configPath := newProject(t)

	file := filepath.Join(t.TempDir(), "ada.yaml")
	require.NoError(t, os.WriteFile(file, []byte("first_name: Ada\nlast_name: Lovelace\nemail: ada@example.org\nroles: [Donor]\n"), 0o644))

	out, err := runMonkeysync(t, env, "entity", "create", "--config", configPath, "-f", file, "--log-level", "error")
	require.NoError(t, err, out)

	var created model.Entity
	require.NoError(t, yaml.Unmarshal([]byte(out), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ada@example.org", created.Email)

	out, err = runMonkeysync(t, env, "entity", "match", "--config", configPath, "-e", "ADA@example.org", "--log-level", "error")
	require.NoError(t, err, out)
	var matches []model.Entity
	require.NoError(t, yaml.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, created.ID, matches[0].ID)

	out, err = runMonkeysync(t, env, "entity", "delete", "--config", configPath, "-e", "ada@example.org")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted ada@example.org")

	_, err = store.Get(created.ID)
	assert.Error(t, err)
}

func TestEntity_MatchRequiresQuery(t *testing.T) {
	_, env := newDirectory(t)
	_, configPath := newProject(t)

	out, err := runMonkeysync(t, env, "entity", "match", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, out, "at least one of")
}

func TestEntity_DeleteFlags(t *testing.T) {
	_, env := newDirectory(t)
	_, configPath := newProject(t)

	out, err := runMonkeysync(t, env, "entity", "delete", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, out, "either id or email is required")

	out, err = runMonkeysync(t, env, "entity", "delete", "--config", configPath, "-i", "abc", "-e", "ada@example.org")
	require.Error(t, err)
	assert.Contains(t, out, "only one of id or email is accepted")
}

func TestEntity_FlagsOverrideEnvironment(t *testing.T) {
	_, env := newDirectory(t)
	_, configPath := newProject(t)

	// Wrong token from the flag wins over the environment.
	out, err := runMonkeysync(t, env, "entity", "match", "--config", configPath, "-e", "ada@example.org", "--token", "wrong")
	require.Error(t, err)
	assert.Contains(t, out, "status 401")
}
