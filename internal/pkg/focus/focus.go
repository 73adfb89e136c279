// Package focus answers "which desktop window is focused right now".
package focus

// Window describes the currently focused desktop window. WindowClass may
// hold several entries (X11 reports both the instance and class strings).
// ExecutablePath and ExecutableBasename are empty when the backend could
// not resolve the owning process.
type Window struct {
	WindowClass        []string
	WindowName         string
	ExecutablePath     string
	ExecutableBasename string
}

// Adapter is the narrow interface the evaluation core consumes; the X11
// backend and the test stubs implement it.
type Adapter interface {
	// FocusedWindow returns nil when no window information is available.
	FocusedWindow() *Window
}
