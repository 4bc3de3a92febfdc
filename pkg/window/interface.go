package window

import (
	"context"
	"fmt"
)

// Window represents one open window as reported by the window manager
type Window struct {
	ID    int64  `json:"id"`
	App   string `json:"app"`
	Title string `json:"title"`
}

// Directory resolves window identifiers to their owning application and title.
// Implementations must return *WindowNotFoundError when the window is not open
// and *DirectoryUnavailableError when the window manager could not be queried.
type Directory interface {
	// Lookup returns the window with the given identifier
	Lookup(ctx context.Context, id int64) (*Window, error)

	// Backend returns the backend name ("yabai", "x11", "sway", "hyprland")
	Backend() string
}

// Lister is implemented by backends that enumerate every open window at once
type Lister interface {
	List(ctx context.Context) ([]Window, error)
	Backend() string
}

// WindowNotFoundError is returned when the requested window is not open
type WindowNotFoundError struct {
	ID int64
}

func (e *WindowNotFoundError) Error() string {
	return fmt.Sprintf("window %d not found", e.ID)
}

// DirectoryUnavailableError is returned when the window manager query fails
// or produces output that cannot be parsed
type DirectoryUnavailableError struct {
	Backend string
	Err     error
}

func (e *DirectoryUnavailableError) Error() string {
	return fmt.Sprintf("window directory %s unavailable: %v", e.Backend, e.Err)
}

func (e *DirectoryUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a DirectoryUnavailableError for backend
func Unavailable(backend string, err error) error {
	return &DirectoryUnavailableError{Backend: backend, Err: err}
}
