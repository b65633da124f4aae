package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/app"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/zerr"
)

func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"package.json":               `{"name": "root", "private": true, "workspaces": ["packages/*"]}`,
		"packages/core/package.json": `{"name": "core"}`,
		"packages/ui/package.json":   `{"name": "ui", "dependencies": {"core": "workspace:*"}}`,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func quiet(a *app.App) {
	a.WithOutput(io.Discard, io.Discard)
}

func TestRun(t *testing.T) {
	t.Setenv(domain.GuardEnvVar, "")
	root := writeWorkspace(t)

	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{name: "all", args: []string{"-C", root, "all"}, expectedExit: 0},
		{name: "graph", args: []string{"-C", root, "graph"}, expectedExit: 0},
		{name: "order", args: []string{"-C", root, "order", "ui"}, expectedExit: 0},
		{name: "unknown package", args: []string{"-C", root, "order", "missing"}, expectedExit: 1},
		{name: "no active package", args: []string{"-C", root, "build"}, expectedExit: 1},
		{name: "active package", args: []string{"-C", filepath.Join(root, "packages", "ui"), "build"}, expectedExit: 0},
		{name: "invalid log format", args: []string{"--log-format", "xml", "-C", root, "all"}, expectedExit: 1},
		{name: "unknown command", args: []string{"publish"}, expectedExit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stderr, executeGraft, quiet)
			assert.Equal(t, tt.expectedExit, code)
		})
	}
}

func TestRun_Orchestrated(t *testing.T) {
	t.Setenv(domain.GuardEnvVar, domain.GuardEnvValue)

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-C", t.TempDir(), "build"}, &stderr, executeGraft, quiet)
	assert.Equal(t, 0, code)
}

func TestRun_ProviderError(t *testing.T) {
	failing := func(context.Context) (*app.Components, error) {
		return nil, zerr.New("graph resolution failed")
	}

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"all"}, &stderr, failing)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: graph resolution failed")
}
