package focus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"go.uber.org/zap"
)

// X11 resolves the focused window through EWMH properties. Any failed
// query yields no window information, which makes scope guards fail open.
type X11 struct {
	conn   *xgbutil.XUtil
	logger *zap.Logger
}

// NewX11 connects to the X server named by DISPLAY.
func NewX11(logger *zap.Logger) (*X11, error) {
	conn, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server failed: %w", err)
	}
	return &X11{conn: conn, logger: logger}, nil
}

// Close disconnects from the X server.
func (x *X11) Close() {
	x.conn.Conn().Close()
}

// FocusedWindow reads _NET_ACTIVE_WINDOW and its WM_CLASS, name and owning
// process. The class vector carries both the X11 instance and class
// strings. Executable fields stay empty when _NET_WM_PID is unset or the
// process cannot be inspected.
func (x *X11) FocusedWindow() *Window {
	active, err := ewmh.ActiveWindowGet(x.conn)
	if err != nil || active == 0 {
		x.logger.Debug("no active window", zap.Error(err))
		return nil
	}

	var window Window

	if class, err := icccm.WmClassGet(x.conn, active); err == nil {
		window.WindowClass = []string{class.Instance, class.Class}
	}

	if name, err := ewmh.WmNameGet(x.conn, active); err == nil && name != "" {
		window.WindowName = name
	} else if name, err := icccm.WmNameGet(x.conn, active); err == nil {
		window.WindowName = name
	}

	if pid, err := ewmh.WmPidGet(x.conn, active); err == nil && pid > 0 {
		if exe, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
			window.ExecutablePath = exe
			window.ExecutableBasename = filepath.Base(exe)
		}
	}

	return &window
}
