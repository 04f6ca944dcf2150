package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{name: "development version", version: "dev"},
		{name: "release version", version: "v1.2.3"},
		{name: "empty version", version: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			require.NotNil(t, cmd)
			assert.Equal(t, "version", cmd.Use)

			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(nil)
			require.NoError(t, cmd.Execute())

			expected := "restdoc version " + tt.version + "\n" +
				"Built with " + runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH + "\n"
			assert.Equal(t, expected, out.String())
		})
	}
}
