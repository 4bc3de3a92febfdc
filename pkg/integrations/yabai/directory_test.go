package yabai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oculus/oculus/pkg/window"
)

const sampleWindows = `[
  {
    "id": 42,
    "pid": 811,
    "app": "Editor",
    "title": "main.go",
    "frame": {"x": 0.0, "y": 25.0, "w": 1440.0, "h": 875.0},
    "has-focus": true
  },
  {
    "id": 7,
    "pid": 512,
    "app": "Browser",
    "title": "Docs",
    "has-focus": false
  }
]`

func TestParseWindows(t *testing.T) {
	windows, err := parseWindows([]byte(sampleWindows))
	require.NoError(t, err)

	assert.Equal(t, []window.Window{
		{ID: 42, App: "Editor", Title: "main.go"},
		{ID: 7, App: "Browser", Title: "Docs"},
	}, windows)
}

func TestParseWindowsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty output", input: ""},
		{name: "Truncated JSON", input: `[{"id": 42, "app": "Edi`},
		{name: "Object instead of array", input: `{"id": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWindows([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseWindowsSkipsEntriesWithoutID(t *testing.T) {
	windows, err := parseWindows([]byte(`[{"app": "Ghost"}, {"id": 3, "app": "Term", "title": ""}]`))
	require.NoError(t, err)
	assert.Equal(t, []window.Window{{ID: 3, App: "Term"}}, windows)
}

func TestListUnavailableWithoutBinary(t *testing.T) {
	d := &Directory{binary: "nonexistent_yabai_xyz"}
	assert.False(t, d.IsAvailable())

	_, err := d.Lookup(context.Background(), 42)

	var unavailable *window.DirectoryUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "yabai", unavailable.Backend)
}

func TestDirectoryInterface(t *testing.T) {
	var _ window.Directory = (*Directory)(nil)
	var _ window.Lister = (*Directory)(nil)
}
