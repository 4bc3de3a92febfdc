package wayland

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oculus/oculus/pkg/window"
)

const swayTree = `{
  "id": 1,
  "type": "root",
  "name": "root",
  "nodes": [
    {
      "id": 2,
      "type": "output",
      "name": "eDP-1",
      "nodes": [
        {
          "id": 3,
          "type": "workspace",
          "name": "1",
          "nodes": [
            {"id": 10, "type": "con", "name": "main.go - Editor", "app_id": "editor", "pid": 4411, "nodes": []},
            {
              "id": 11,
              "type": "con",
              "name": null,
              "nodes": [
                {"id": 12, "type": "con", "name": "Docs", "app_id": null, "pid": 5120,
                 "window_properties": {"class": "Browser", "instance": "browser"}, "nodes": []}
              ]
            }
          ],
          "floating_nodes": [
            {"id": 20, "type": "floating_con", "name": "Picker", "app_id": "picker", "pid": 6000, "nodes": []}
          ]
        }
      ]
    }
  ]
}`

func TestParseSwayTree(t *testing.T) {
	windows, err := parseSwayTree([]byte(swayTree))
	require.NoError(t, err)

	assert.Equal(t, []window.Window{
		{ID: 10, App: "editor", Title: "main.go - Editor"},
		{ID: 12, App: "Browser", Title: "Docs"},
		{ID: 20, App: "picker", Title: "Picker"},
	}, windows)
}

func TestParseSwayTreeInvalid(t *testing.T) {
	_, err := parseSwayTree([]byte(`{"nodes": [`))
	assert.Error(t, err)

	_, err = parseSwayTree([]byte(`[]`))
	assert.Error(t, err)
}

const hyprClients = `[
  {"address": "0x55d4c1a8e0f0", "mapped": true, "class": "kitty", "title": "~", "pid": 1200},
  {"address": "0x2a", "mapped": true, "class": "firefox", "title": "Docs", "pid": 1300}
]`

func TestParseHyprlandClients(t *testing.T) {
	windows, err := parseHyprlandClients([]byte(hyprClients))
	require.NoError(t, err)

	assert.Equal(t, []window.Window{
		{ID: 0x55d4c1a8e0f0, App: "kitty", Title: "~"},
		{ID: 42, App: "firefox", Title: "Docs"},
	}, windows)
}

func TestParseHyprlandClientsBadAddress(t *testing.T) {
	_, err := parseHyprlandClients([]byte(`[{"address": "zz", "class": "x"}]`))
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "Prefixed", input: "0x2a", want: 42},
		{name: "Unprefixed socket form", input: "55d4c1a8e0f0", want: 0x55d4c1a8e0f0},
		{name: "Empty", input: "", wantErr: true},
		{name: "Not hex", input: "0xnope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectCompositor(t *testing.T) {
	tests := []struct {
		name     string
		hyprland string
		swaysock string
		want     string
	}{
		{name: "Hyprland", hyprland: "abc_123", want: Hyprland},
		{name: "Sway", swaysock: "/run/user/1000/sway-ipc.sock", want: Sway},
		{name: "Hyprland wins", hyprland: "abc", swaysock: "/tmp/sock", want: Hyprland},
		{name: "Unknown", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", tt.hyprland)
			t.Setenv("SWAYSOCK", tt.swaysock)
			assert.Equal(t, tt.want, DetectCompositor())
		})
	}
}

func TestUnavailableWithoutBinary(t *testing.T) {
	sway := &SwayDirectory{binary: "nonexistent_swaymsg_xyz"}
	hypr := &HyprlandDirectory{binary: "nonexistent_hyprctl_xyz"}

	assert.False(t, sway.IsAvailable())
	assert.False(t, hypr.IsAvailable())

	for _, d := range []window.Directory{sway, hypr} {
		_, err := d.Lookup(context.Background(), 1)
		var unavailable *window.DirectoryUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, d.Backend(), unavailable.Backend)
	}
}

func TestParseSwayTreeFallsBackToProcessName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs procfs")
	}

	tree := fmt.Sprintf(`{"id": 1, "type": "root", "pid": 0, "nodes": [
		{"id": 30, "type": "con", "name": "untitled", "app_id": null, "pid": %d, "nodes": []}
	]}`, os.Getpid())

	windows, err := parseSwayTree([]byte(tree))
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, int64(30), windows[0].ID)
	assert.NotEmpty(t, windows[0].App)
}
