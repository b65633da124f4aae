package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/manifest"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReader_Read(t *testing.T) {
	path := writeManifest(t, `{
  "name": "@acme/ui",
  "scripts": {"build": "tsc -p ."},
  "dependencies": {"@acme/core": "workspace:*"}
}`)

	raw, err := manifest.NewReader().Read(path)
	require.NoError(t, err)

	assert.Equal(t, "@acme/ui", raw["name"])
	scripts, ok := raw["scripts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tsc -p .", scripts["build"])
}

func TestReader_Read_BOM(t *testing.T) {
	path := writeManifest(t, "\xef\xbb\xbf{\"name\":\"bom\"}")

	raw, err := manifest.NewReader().Read(path)
	require.NoError(t, err)
	assert.Equal(t, "bom", raw["name"])
}

func TestReader_Read_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "invalid json", content: `{"name": `, want: "failed to parse manifest"},
		{name: "array top level", content: `["a"]`, want: "failed to parse manifest"},
		{name: "null top level", content: `null`, want: "invalid manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.NewReader().Read(writeManifest(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReader_Read_Missing(t *testing.T) {
	_, err := manifest.NewReader().Read(filepath.Join(t.TempDir(), "package.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse manifest")
}
