package window

import "context"

// ListDirectory adapts a Lister into a Directory by filtering the full window
// list on every lookup.
type ListDirectory struct {
	lister Lister
}

// FromLister wraps l so it satisfies Directory
func FromLister(l Lister) *ListDirectory {
	return &ListDirectory{lister: l}
}

func (d *ListDirectory) Lookup(ctx context.Context, id int64) (*Window, error) {
	windows, err := d.lister.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range windows {
		if windows[i].ID == id {
			w := windows[i]
			return &w, nil
		}
	}

	return nil, &WindowNotFoundError{ID: id}
}

func (d *ListDirectory) Backend() string {
	return d.lister.Backend()
}

// StaticDirectory is a fixed in-memory directory. It is a test double for
// packages that consume a Directory; no window manager backend uses it.
type StaticDirectory struct {
	Windows []Window
	Name    string
}

func (d *StaticDirectory) List(ctx context.Context) ([]Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(d.Backend(), err)
	}
	return d.Windows, nil
}

func (d *StaticDirectory) Lookup(ctx context.Context, id int64) (*Window, error) {
	return FromLister(d).Lookup(ctx, id)
}

func (d *StaticDirectory) Backend() string {
	if d.Name == "" {
		return "static"
	}
	return d.Name
}
