package yabai

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/oculus/oculus/pkg/integrations/common"
	"github.com/oculus/oculus/pkg/window"
)

const backendName = "yabai"

// Directory lists windows through the yabai window manager on macOS
type Directory struct {
	binary string
}

// NewDirectory creates a new yabai directory
func NewDirectory() *Directory {
	return &Directory{binary: "yabai"}
}

// IsAvailable checks if the yabai binary is in PATH
func (d *Directory) IsAvailable() bool {
	return common.CommandExists(d.binary)
}

func (d *Directory) Backend() string {
	return backendName
}

// List runs `yabai -m query --windows` and parses the result
func (d *Directory) List(ctx context.Context) ([]window.Window, error) {
	out, err := common.Query(ctx, backendName, d.binary, "-m", "query", "--windows")
	if err != nil {
		return nil, err
	}

	windows, err := parseWindows(out)
	if err != nil {
		return nil, window.Unavailable(backendName, err)
	}
	return windows, nil
}

func (d *Directory) Lookup(ctx context.Context, id int64) (*window.Window, error) {
	return window.FromLister(d).Lookup(ctx, id)
}

// parseWindows extracts id, app and title from the yabai window array
func parseWindows(out []byte) ([]window.Window, error) {
	if !gjson.ValidBytes(out) {
		return nil, errors.New("yabai returned invalid JSON")
	}

	result := gjson.ParseBytes(out)
	if !result.IsArray() {
		return nil, errors.New("yabai returned a non-array window list")
	}

	windows := make([]window.Window, 0, len(result.Array()))
	result.ForEach(func(_, w gjson.Result) bool {
		id := w.Get("id")
		if id.Type != gjson.Number {
			return true
		}
		windows = append(windows, window.Window{
			ID:    id.Int(),
			App:   w.Get("app").String(),
			Title: w.Get("title").String(),
		})
		return true
	})

	return windows, nil
}
