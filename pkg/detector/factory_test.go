package detector

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTools puts empty executables named like the window manager tools on PATH
func fakeTools(t *testing.T, names ...string) {
	t.Helper()

	bin := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0755))
	}
	t.Setenv("PATH", bin)
}

func TestNew(t *testing.T) {
	fakeTools(t, "yabai", "swaymsg", "hyprctl")
	t.Setenv("DISPLAY", ":0")

	tests := []struct {
		backend string
		want    string
	}{
		{backend: Yabai, want: "yabai"},
		{backend: X11, want: "x11"},
		{backend: Sway, want: "sway"},
		{backend: Hyprland, want: "hyprland"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			dir, err := New(tt.backend)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dir.Backend())
		})
	}
}

func TestNewBackendNotAvailable(t *testing.T) {
	fakeTools(t)
	t.Setenv("DISPLAY", "")

	for _, backend := range Backends {
		t.Run(backend, func(t *testing.T) {
			dir, err := New(backend)
			require.Error(t, err)
			assert.Nil(t, dir)
			assert.Equal(t, backend+" backend not available", err.Error())
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("wmctrl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown window directory backend")
}

func TestDetect(t *testing.T) {
	if runtime.GOOS == "darwin" {
		assert.Equal(t, Yabai, Detect())
		return
	}

	tests := []struct {
		name     string
		hyprland string
		swaysock string
		display  string
		want     string
	}{
		{name: "Hyprland session", hyprland: "sig", display: ":0", want: Hyprland},
		{name: "Sway session", swaysock: "/run/user/1000/sway.sock", want: Sway},
		{name: "X11 session", display: ":1", want: X11},
		{name: "Nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", tt.hyprland)
			t.Setenv("SWAYSOCK", tt.swaysock)
			t.Setenv("DISPLAY", tt.display)
			assert.Equal(t, tt.want, Detect())
		})
	}
}

func TestNewAutoWithoutWindowManager(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("auto always resolves to yabai on darwin")
	}

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("SWAYSOCK", "")
	t.Setenv("DISPLAY", "")

	_, err := New(Auto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no supported window manager detected")
}
