package detector

import (
	"fmt"
	"os"
	"runtime"

	"github.com/oculus/oculus/pkg/integrations/wayland"
	"github.com/oculus/oculus/pkg/integrations/x11"
	"github.com/oculus/oculus/pkg/integrations/yabai"
	"github.com/oculus/oculus/pkg/window"
)

// Backend names accepted by New
const (
	Auto     = "auto"
	Yabai    = "yabai"
	X11      = "x11"
	Sway     = wayland.Sway
	Hyprland = wayland.Hyprland
)

// Backends lists every concrete backend name
var Backends = []string{Yabai, X11, Sway, Hyprland}

// availableDirectory is a directory that can tell whether its window manager
// is reachable at all
type availableDirectory interface {
	window.Directory
	IsAvailable() bool
}

// New returns the window directory for backend. "auto" (or "") picks one
// from the running environment. A backend whose query tool or display is
// missing is an error.
func New(backend string) (window.Directory, error) {
	dir, err := newDirectory(backend)
	if err != nil {
		return nil, err
	}

	if !dir.IsAvailable() {
		return nil, fmt.Errorf("%s backend not available", dir.Backend())
	}
	return dir, nil
}

func newDirectory(backend string) (availableDirectory, error) {
	if backend == "" || backend == Auto {
		backend = Detect()
		if backend == "" {
			return nil, fmt.Errorf("no supported window manager detected (set OCULUS_DIRECTORY_BACKEND to one of %v)", Backends)
		}
	}

	switch backend {
	case Yabai:
		return yabai.NewDirectory(), nil
	case X11:
		return x11.NewDirectory(), nil
	case Sway:
		return wayland.NewSwayDirectory(), nil
	case Hyprland:
		return wayland.NewHyprlandDirectory(), nil
	default:
		return nil, fmt.Errorf("unknown window directory backend: %s", backend)
	}
}

// Detect picks the backend for the current session, or "" if none applies
func Detect() string {
	if runtime.GOOS == "darwin" {
		return Yabai
	}

	if compositor := wayland.DetectCompositor(); compositor != "" {
		return compositor
	}

	if os.Getenv("DISPLAY") != "" {
		return X11
	}

	return ""
}
