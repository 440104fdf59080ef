package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "monkeysync-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "monkeysync")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/monkeysync")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runMonkeysync runs the binary with secrets stripped from the
// environment; env adds KEY=value pairs back.
func runMonkeysync(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "STRIPE_") || strings.HasPrefix(kv, "MONKEYPOD_") || strings.HasPrefix(kv, "MONKEYSYNC_") {
			continue
		}
		cmd.Env = append(cmd.Env, kv)
	}
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// newProject initializes a project without git and returns its config path.
func newProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	out, err := runMonkeysync(t, nil, "init", dir, "--name", "Friends of the Library", "--git=false")
	if err != nil {
		t.Fatalf("init failed: %v\n%s", err, out)
	}
	return dir, filepath.Join(dir, "monkeysync.yaml")
}

func TestVersion(t *testing.T) {
	out, err := runMonkeysync(t, nil, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "dev (commit: none, built: unknown)") {
		t.Errorf("unexpected version output: %s", out)
	}
}
