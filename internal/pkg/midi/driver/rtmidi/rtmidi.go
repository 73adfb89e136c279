// Package rtmidi implements the driver interface on top of gomidi with the
// rtmidi backend.
package rtmidi

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/michd/mmpd-sub000/internal/pkg/midi"
	"github.com/michd/mmpd-sub000/internal/pkg/midi/driver"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the rtmidi driver
)

// Driver subscribes to one MIDI input port at a time.
type Driver struct {
	logger *zap.Logger

	mu     sync.Mutex // guards stop/events; StopListening may come from a signal handler
	stop   func()
	events chan<- midi.Message
}

func New(logger *zap.Logger) *Driver {
	return &Driver{logger: logger}
}

// ListPorts returns the names of all MIDI input ports.
func (d *Driver) ListPorts() ([]string, error) {
	ins := gomidi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

func findPort(pattern string) (drivers.In, error) {
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		return nil, driver.ErrNoMatchingPort
	}
	if pattern == "" {
		return ins[0], nil
	}
	needle := strings.ToLower(pattern)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), needle) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", driver.ErrNoMatchingPort, pattern)
}

// StartListening decodes every incoming message of the selected port and
// pushes it into events. The send blocks when the channel is full, which
// backpressures the rtmidi callback.
func (d *Driver) StartListening(pattern string, events chan<- midi.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return fmt.Errorf("already listening")
	}

	in, err := findPort(pattern)
	if err != nil {
		return err
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		decoded, ok := midi.Decode(msg.Bytes())
		if !ok {
			d.logger.Debug("dropping undecodable midi bytes",
				zap.Binary("bytes", msg.Bytes()))
			return
		}
		events <- decoded
	})
	if err != nil {
		return fmt.Errorf("listening on port %q failed: %w", in.String(), err)
	}

	d.logger.Info("listening for midi input", zap.String("port", in.String()))
	d.stop = stop
	d.events = events
	return nil
}

// StopListening tears the subscription down and closes the event channel.
func (d *Driver) StopListening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return
	}
	d.stop()
	d.stop = nil
	close(d.events)
	d.events = nil
}
