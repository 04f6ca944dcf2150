package commands

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGoVersionSupported(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected bool
	}{
		{name: "exactly minimum version", version: "go1.24.0", expected: true},
		{name: "patch release", version: "go1.24.6", expected: true},
		{name: "newer minor", version: "go1.25.1", expected: true},
		{name: "pre-release", version: "go1.26.0-rc1", expected: true},
		{name: "older minor", version: "go1.23.9", expected: false},
		{name: "much older", version: "go1.21.0", expected: false},
		{name: "missing go prefix", version: "1.24.0", expected: false},
		{name: "empty string", version: "", expected: false},
		{name: "malformed version", version: "go1.24.x", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isGoVersionSupported(tt.version))
		})
	}
}

func TestCheckProjectStructure(t *testing.T) {
	t.Run("go files present", func(t *testing.T) {
		root := writeProject(t, widgetsSource)
		assert.NoError(t, checkProjectStructure(root))
	})

	t.Run("only skipped directories", func(t *testing.T) {
		root := t.TempDir()
		for _, dir := range []string{"vendor", "testdata", ".git", "_examples"} {
			require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(root, dir, "x.go"), []byte("package x\n"), 0o644))
		}
		require.NoError(t, os.WriteFile(filepath.Join(root, "x_test.go"), []byte("package x\n"), 0o644))

		err := checkProjectStructure(root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no Go files found")
	})

	t.Run("missing root", func(t *testing.T) {
		err := checkProjectStructure(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path does not exist")
	})
}

func TestCheckManifest(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "api.yaml")
	require.NoError(t, os.WriteFile(valid, []byte(widgetsManifest), 0o644))
	assert.NoError(t, checkManifest(valid))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.EqualError(t, checkManifest(empty), "manifest declares no types")

	assert.Error(t, checkManifest(filepath.Join(dir, "missing.yaml")))
}

func TestCheckOutputDir(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, checkOutputDir(dir))
	assert.NoError(t, checkOutputDir(filepath.Join(dir, "not", "yet", "created")))
	assert.NoDirExists(t, filepath.Join(dir, "not"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err = checkOutputDir(filepath.Join(file, "docs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDoctorCommand(t *testing.T) {
	t.Run("healthy project", func(t *testing.T) {
		if !isGoVersionSupported(runtime.Version()) {
			t.Skip("toolchain older than the supported minimum")
		}
		root := writeProject(t, widgetsSource)
		out := filepath.Join(t.TempDir(), "docs")

		stdout, _, err := execute(t, NewDoctorCommand(), "-p", root, "-o", out)
		require.NoError(t, err)
		assert.Contains(t, stdout, "✅ Configuration")
		assert.Contains(t, stdout, "📁 Project Root: "+root)
		assert.Contains(t, stdout, "✅ Project structure")
		assert.Contains(t, stdout, "✅ Output directory")
		assert.Contains(t, stdout, "All checks passed")
	})

	t.Run("manifest source", func(t *testing.T) {
		dir := t.TempDir()
		manifest := filepath.Join(dir, "api.yaml")
		require.NoError(t, os.WriteFile(manifest, []byte(widgetsManifest), 0o644))

		stdout, _, _ := execute(t, NewDoctorCommand(), "--manifest", manifest, "-o", dir)
		assert.Contains(t, stdout, "📄 Manifest: "+manifest)
		assert.Contains(t, stdout, "✅ Manifest")
	})

	t.Run("invalid configuration", func(t *testing.T) {
		stdout, _, err := execute(t, NewDoctorCommand())
		require.ErrorIs(t, err, ErrHealthCheck)
		assert.Contains(t, stdout, "❌ Configuration")
		assert.Contains(t, stdout, "Health check failed")
		assert.NotContains(t, stdout, "Project Root")
	})

	t.Run("project without go files", func(t *testing.T) {
		stdout, _, err := execute(t, NewDoctorCommand(), "-p", t.TempDir())
		require.ErrorIs(t, err, ErrHealthCheck)
		assert.Contains(t, stdout, "❌ Project structure: no Go files found in project")
	})
}
