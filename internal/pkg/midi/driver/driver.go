// Package driver abstracts MIDI input port enumeration and subscription.
package driver

import (
	"errors"

	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

// ErrNoMatchingPort is returned when no input port name contains the
// requested pattern.
var ErrNoMatchingPort = errors.New("no matching midi input port")

// Driver is the narrow interface the core consumes. Implementations own
// the ingest goroutine: StartListening transfers the sending end of the
// event channel to the driver, which closes it after StopListening.
type Driver interface {
	// ListPorts returns the available MIDI input port names.
	ListPorts() ([]string, error)
	// StartListening subscribes to the first port whose name contains
	// pattern (case-insensitive; empty pattern picks the first port) and
	// pushes decoded messages into events until StopListening is called.
	StartListening(pattern string, events chan<- midi.Message) error
	// StopListening stops the ingest goroutine and closes the channel
	// handed to StartListening. Safe to call when not listening.
	StopListening()
}
