package x11

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/oculus/oculus/pkg/window"
)

const backendName = "x11"

// maxPropertyLength bounds property reads, in 32-bit units
const maxPropertyLength = 1 << 16

var atomNames = []string{
	"_NET_CLIENT_LIST",
	"_NET_WM_NAME",
	"UTF8_STRING",
}

// Directory lists top-level client windows managed by an EWMH-compliant
// X11 window manager
type Directory struct {
	display string
}

// NewDirectory creates a new X11 directory for the display in $DISPLAY
func NewDirectory() *Directory {
	return &Directory{display: os.Getenv("DISPLAY")}
}

// IsAvailable checks if an X display is configured
func (d *Directory) IsAvailable() bool {
	return d.display != ""
}

func (d *Directory) Backend() string {
	return backendName
}

// List reads _NET_CLIENT_LIST from the root window. The X protocol calls,
// including the connection handshake, are not cancelable, so they run in a
// goroutine and the connection is closed as soon as ctx ends.
func (d *Directory) List(ctx context.Context) ([]window.Window, error) {
	type result struct {
		windows []window.Window
		err     error
	}

	done := make(chan result, 1)
	go func() {
		conn, err := xgb.NewConnDisplay(d.display)
		if err != nil {
			done <- result{err: errors.Wrap(err, "failed to connect to X server")}
			return
		}

		closeConn := sync.OnceFunc(conn.Close)
		defer closeConn()
		stop := context.AfterFunc(ctx, closeConn)
		defer stop()

		windows, err := newClient(conn).listWindows()
		done <- result{windows: windows, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, window.Unavailable(backendName, errors.Wrap(ctx.Err(), "X server did not respond"))
	case r := <-done:
		if r.err != nil {
			return nil, window.Unavailable(backendName, r.err)
		}
		return r.windows, nil
	}
}

func (d *Directory) Lookup(ctx context.Context, id int64) (*window.Window, error) {
	return window.FromLister(d).Lookup(ctx, id)
}

type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func newClient(conn *xgb.Conn) *client {
	return &client{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom),
	}
}

func (c *client) internAtoms() error {
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(c.conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}
	return nil
}

func (c *client) getProperty(w xproto.Window, atom, atomType xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, atomType, 0, maxPropertyLength).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) listWindows() ([]window.Window, error) {
	if err := c.internAtoms(); err != nil {
		return nil, err
	}

	data, err := c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read _NET_CLIENT_LIST")
	}

	ids := parseWindowList(data)
	windows := make([]window.Window, 0, len(ids))
	for _, id := range ids {
		windows = append(windows, window.Window{
			ID:    int64(id),
			App:   c.windowClass(id),
			Title: c.windowName(id),
		})
	}
	return windows, nil
}

func (c *client) windowName(w xproto.Window) string {
	if data, err := c.getProperty(w, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"]); err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	if data, err := c.getProperty(w, xproto.AtomWmName, xproto.AtomString); err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

func (c *client) windowClass(w xproto.Window) string {
	data, err := c.getProperty(w, xproto.AtomWmClass, xproto.AtomString)
	if err != nil {
		return ""
	}
	return parseWMClass(data)
}

// parseWindowList decodes a list of 32-bit window ids
func parseWindowList(data []byte) []xproto.Window {
	ids := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		ids = append(ids, xproto.Window(xgb.Get32(data[i:])))
	}
	return ids
}

// parseWMClass returns the class part of a WM_CLASS value
// ("instance\x00Class\x00"), falling back to the instance
func parseWMClass(data []byte) string {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}
