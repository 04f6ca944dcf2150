package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to rel, a slash-separated path under root,
// creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// WriteModule creates a Go module rooted in a temporary directory with the
// given files and returns its root. A go.mod for TestModulePath is added
// unless files provides one.
func WriteModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	if _, ok := files["go.mod"]; !ok {
		WriteFile(t, root, "go.mod", TestGoMod)
	}
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}
