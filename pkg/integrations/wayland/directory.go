package wayland

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/oculus/oculus/pkg/integrations/common"
	"github.com/oculus/oculus/pkg/integrations/process"
	"github.com/oculus/oculus/pkg/window"
)

// Compositor names understood by this package
const (
	Sway     = "sway"
	Hyprland = "hyprland"
)

// DetectCompositor returns the running Wayland compositor based on the
// environment the compositor exports to its clients, or "" if unknown.
func DetectCompositor() string {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return Hyprland
	}
	if os.Getenv("SWAYSOCK") != "" {
		return Sway
	}
	return ""
}

// SwayDirectory lists windows from the sway layout tree
type SwayDirectory struct {
	binary string
}

// NewSwayDirectory creates a new sway directory
func NewSwayDirectory() *SwayDirectory {
	return &SwayDirectory{binary: "swaymsg"}
}

func (d *SwayDirectory) IsAvailable() bool {
	return common.CommandExists(d.binary)
}

func (d *SwayDirectory) Backend() string {
	return Sway
}

func (d *SwayDirectory) List(ctx context.Context) ([]window.Window, error) {
	out, err := common.Query(ctx, Sway, d.binary, "-t", "get_tree")
	if err != nil {
		return nil, err
	}

	windows, err := parseSwayTree(out)
	if err != nil {
		return nil, window.Unavailable(Sway, err)
	}
	return windows, nil
}

func (d *SwayDirectory) Lookup(ctx context.Context, id int64) (*window.Window, error) {
	return window.FromLister(d).Lookup(ctx, id)
}

// parseSwayTree walks nodes and floating_nodes collecting every view.
// A view is any container that belongs to a client process (pid > 0).
func parseSwayTree(out []byte) ([]window.Window, error) {
	if !gjson.ValidBytes(out) {
		return nil, errors.New("swaymsg returned invalid JSON")
	}

	root := gjson.ParseBytes(out)
	if !root.IsObject() {
		return nil, errors.New("swaymsg returned a non-object tree")
	}

	var windows []window.Window
	walkSwayNode(root, &windows)
	return windows, nil
}

func walkSwayNode(node gjson.Result, windows *[]window.Window) {
	if node.Get("pid").Int() > 0 {
		app := node.Get("app_id").String()
		if app == "" {
			// XWayland clients carry the X11 class instead of an app_id
			app = node.Get("window_properties.class").String()
		}
		if app == "" {
			if name, err := process.Name(node.Get("pid").Int()); err == nil {
				app = name
			}
		}
		*windows = append(*windows, window.Window{
			ID:    node.Get("id").Int(),
			App:   app,
			Title: node.Get("name").String(),
		})
	}

	for _, key := range []string{"nodes", "floating_nodes"} {
		node.Get(key).ForEach(func(_, child gjson.Result) bool {
			walkSwayNode(child, windows)
			return true
		})
	}
}

// HyprlandDirectory lists windows through hyprctl
type HyprlandDirectory struct {
	binary string
}

// NewHyprlandDirectory creates a new Hyprland directory
func NewHyprlandDirectory() *HyprlandDirectory {
	return &HyprlandDirectory{binary: "hyprctl"}
}

func (d *HyprlandDirectory) IsAvailable() bool {
	return common.CommandExists(d.binary)
}

func (d *HyprlandDirectory) Backend() string {
	return Hyprland
}

func (d *HyprlandDirectory) List(ctx context.Context) ([]window.Window, error) {
	out, err := common.Query(ctx, Hyprland, d.binary, "clients", "-j")
	if err != nil {
		return nil, err
	}

	windows, err := parseHyprlandClients(out)
	if err != nil {
		return nil, window.Unavailable(Hyprland, err)
	}
	return windows, nil
}

func (d *HyprlandDirectory) Lookup(ctx context.Context, id int64) (*window.Window, error) {
	return window.FromLister(d).Lookup(ctx, id)
}

// parseHyprlandClients converts hyprctl clients output. Hyprland identifies
// windows by a hex address, which becomes the numeric window id.
func parseHyprlandClients(out []byte) ([]window.Window, error) {
	if !gjson.ValidBytes(out) {
		return nil, errors.New("hyprctl returned invalid JSON")
	}

	result := gjson.ParseBytes(out)
	if !result.IsArray() {
		return nil, errors.New("hyprctl returned a non-array client list")
	}

	var windows []window.Window
	var parseErr error
	result.ForEach(func(_, c gjson.Result) bool {
		id, err := ParseAddress(c.Get("address").String())
		if err != nil {
			parseErr = err
			return false
		}
		windows = append(windows, window.Window{
			ID:    id,
			App:   c.Get("class").String(),
			Title: c.Get("title").String(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return windows, nil
}

// ParseAddress converts a Hyprland window address ("0x55d4c1a8e0f0" or the
// unprefixed form used in socket events) into a window id.
func ParseAddress(address string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(address), "0x")
	if trimmed == "" {
		return 0, errors.New("empty hyprland window address")
	}

	id, err := strconv.ParseInt(trimmed, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid hyprland window address %q", address)
	}
	return id, nil
}
