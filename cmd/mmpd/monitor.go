package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/logrusorgru/aurora"

	"github.com/michd/mmpd-sub000/internal/pkg/midi"
	"github.com/michd/mmpd-sub000/internal/pkg/midi/driver"
)

// runMonitor prints every decoded message of the selected port until
// interrupted.
func runMonitor(drv driver.Driver, pattern string) error {
	events := make(chan midi.Message, 128)
	if err := drv.StartListening(pattern, events); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		drv.StopListening()
	}()

	au := aurora.NewAurora(true)
	for msg := range events {
		fmt.Println(colorize(au, msg))
	}
	return nil
}

func colorize(au aurora.Aurora, msg midi.Message) aurora.Value {
	switch msg.Type {
	case midi.MessageNoteOn:
		return au.Green(msg.String())
	case midi.MessageNoteOff:
		return au.Red(msg.String())
	case midi.MessageControlChange:
		return au.Cyan(msg.String())
	case midi.MessageProgramChange:
		return au.Yellow(msg.String())
	case midi.MessagePitchBendChange:
		return au.Magenta(msg.String())
	case midi.MessagePolyAftertouch, midi.MessageChannelAftertouch:
		return au.Blue(msg.String())
	default:
		return au.Gray(12, msg.String())
	}
}
