package midi

import (
	"fmt"
)

// status byte upper nibbles
const (
	NoteOff           uint8 = 0b1000 << 4
	NoteOn            uint8 = 0b1001 << 4
	PolyAftertouch    uint8 = 0b1010 << 4 // polyphonic key pressure
	ControlChange     uint8 = 0b1011 << 4
	ProgramChange     uint8 = 0b1100 << 4
	ChannelAftertouch uint8 = 0b1101 << 4 // channel pressure
	PitchBendChange   uint8 = 0b1110 << 4

	statusMask  uint8 = 0b11110000
	channelMask uint8 = 0b00001111
	dataMask    uint8 = 0b01111111
)

// MessageType tags the decoded variant of a channel-voice message.
type MessageType uint8

const (
	MessageOther MessageType = iota
	MessageNoteOff
	MessageNoteOn
	MessagePolyAftertouch
	MessageControlChange
	MessageProgramChange
	MessageChannelAftertouch
	MessagePitchBendChange
)

func (t MessageType) String() string {
	switch t {
	case MessageNoteOff:
		return "note_off"
	case MessageNoteOn:
		return "note_on"
	case MessagePolyAftertouch:
		return "poly_aftertouch"
	case MessageControlChange:
		return "control_change"
	case MessageProgramChange:
		return "program_change"
	case MessageChannelAftertouch:
		return "channel_aftertouch"
	case MessagePitchBendChange:
		return "pitch_bend_change"
	default:
		return "other"
	}
}

// Message is one decoded channel-voice message. Which fields are meaningful
// depends on Type:
//
//	NoteOff/NoteOn:     Key, Velocity
//	PolyAftertouch:     Key, Value
//	ControlChange:      Control, Value
//	ProgramChange:      Program
//	ChannelAftertouch:  Value
//	PitchBendChange:    Value (14-bit, 0-16383)
//
// Channel is always populated except for Other.
type Message struct {
	Type     MessageType
	Channel  uint8
	Key      uint8
	Velocity uint8
	Control  uint8
	Program  uint8
	Value    uint16
}

// Decode interprets raw MIDI bytes as a single channel-voice message.
// Data bytes are masked to 7 bits, the channel to 4. Status bytes outside
// the channel-voice range decode to MessageOther. Too few bytes for the
// selected variant reports ok=false and the input is dropped.
func Decode(data []byte) (Message, bool) {
	if len(data) < 2 {
		return Message{}, false
	}

	channel := data[0] & channelMask

	switch data[0] & statusMask {
	case NoteOff, NoteOn, PolyAftertouch, ControlChange, PitchBendChange:
		if len(data) < 3 {
			return Message{}, false
		}
	}

	switch data[0] & statusMask {
	case NoteOff:
		return Message{Type: MessageNoteOff, Channel: channel, Key: data[1] & dataMask, Velocity: data[2] & dataMask}, true
	case NoteOn:
		return Message{Type: MessageNoteOn, Channel: channel, Key: data[1] & dataMask, Velocity: data[2] & dataMask}, true
	case PolyAftertouch:
		return Message{Type: MessagePolyAftertouch, Channel: channel, Key: data[1] & dataMask, Value: uint16(data[2] & dataMask)}, true
	case ControlChange:
		return Message{Type: MessageControlChange, Channel: channel, Control: data[1] & dataMask, Value: uint16(data[2] & dataMask)}, true
	case ProgramChange:
		return Message{Type: MessageProgramChange, Channel: channel, Program: data[1] & dataMask}, true
	case ChannelAftertouch:
		return Message{Type: MessageChannelAftertouch, Channel: channel, Value: uint16(data[1] & dataMask)}, true
	case PitchBendChange:
		value := uint16(data[1]&dataMask) | uint16(data[2]&dataMask)<<7
		return Message{Type: MessagePitchBendChange, Channel: channel, Value: value}, true
	default:
		return Message{Type: MessageOther}, true
	}
}

func (m Message) String() string {
	channel := m.Channel + 1
	switch m.Type {
	case MessageNoteOff:
		return fmt.Sprintf("Note Off: %s (channel: %2d, velocity: %3d)", noteToString(m.Key), channel, m.Velocity)
	case MessageNoteOn:
		return fmt.Sprintf("Note On : %s (channel: %2d, velocity: %3d)", noteToString(m.Key), channel, m.Velocity)
	case MessagePolyAftertouch:
		return fmt.Sprintf("Poly Aftertouch: %s (channel: %2d, pressure: %3d)", noteToString(m.Key), channel, m.Value)
	case MessageControlChange:
		return fmt.Sprintf("Control Change: %3d, value: %3d (channel: %2d)", m.Control, m.Value, channel)
	case MessageProgramChange:
		return fmt.Sprintf("Program Change: %3d (channel: %2d)", m.Program, channel)
	case MessageChannelAftertouch:
		return fmt.Sprintf("Channel Aftertouch: %3d (channel: %2d)", m.Value, channel)
	case MessagePitchBendChange:
		percent := (float64(m.Value) - 8192) / 8192 // 8192 = no pitch change
		return fmt.Sprintf("Pitch Bend: %4.0f%% (channel: %2d)", percent*100, channel)
	default:
		return "Other"
	}
}

var valToPitch = map[uint8]string{
	0: "C", 1: "C#", 2: "D", 3: "D#",
	4: "E", 5: "F", 6: "F#", 7: "G",
	8: "G#", 9: "A", 10: "A#", 11: "B",
}

// NoteToPitch renders the pitch class of a MIDI note number.
func NoteToPitch(note uint8) string {
	return valToPitch[note%12]
}

// NoteToOctave renders the octave of a MIDI note number, C-1 = note 0.
func NoteToOctave(note uint8) int {
	return int(note/12) - 1
}

func noteToString(note uint8) string {
	return fmt.Sprintf("%-2s%2d", NoteToPitch(note), NoteToOctave(note))
}
