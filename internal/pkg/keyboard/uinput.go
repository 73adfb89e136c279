package keyboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

const (
	keyRelease int32 = 0
	keyPress   int32 = 1
)

// chord is one synthesized keystroke: the key itself plus held modifiers.
type chord struct {
	key       evdev.EvCode
	modifiers []evdev.EvCode
}

var modifierCodes = map[string]evdev.EvCode{
	"ctrl":    evdev.KEY_LEFTCTRL,
	"control": evdev.KEY_LEFTCTRL,
	"shift":   evdev.KEY_LEFTSHIFT,
	"alt":     evdev.KEY_LEFTALT,
	"altgr":   evdev.KEY_RIGHTALT,
	"super":   evdev.KEY_LEFTMETA,
	"meta":    evdev.KEY_LEFTMETA,
}

// named keys accepted in key sequences, X11 keysym style
var namedKeys = map[string]evdev.EvCode{
	"return":    evdev.KEY_ENTER,
	"enter":     evdev.KEY_ENTER,
	"tab":       evdev.KEY_TAB,
	"space":     evdev.KEY_SPACE,
	"escape":    evdev.KEY_ESC,
	"backspace": evdev.KEY_BACKSPACE,
	"delete":    evdev.KEY_DELETE,
	"insert":    evdev.KEY_INSERT,
	"up":        evdev.KEY_UP,
	"down":      evdev.KEY_DOWN,
	"left":      evdev.KEY_LEFT,
	"right":     evdev.KEY_RIGHT,
	"home":      evdev.KEY_HOME,
	"end":       evdev.KEY_END,
	"page_up":   evdev.KEY_PAGEUP,
	"page_down": evdev.KEY_PAGEDOWN,
	"f1":        evdev.KEY_F1,
	"f2":        evdev.KEY_F2,
	"f3":        evdev.KEY_F3,
	"f4":        evdev.KEY_F4,
	"f5":        evdev.KEY_F5,
	"f6":        evdev.KEY_F6,
	"f7":        evdev.KEY_F7,
	"f8":        evdev.KEY_F8,
	"f9":        evdev.KEY_F9,
	"f10":       evdev.KEY_F10,
	"f11":       evdev.KEY_F11,
	"f12":       evdev.KEY_F12,
}

type runeKey struct {
	code  evdev.EvCode
	shift bool
}

// US-QWERTY layout table for typing literal text
var runeKeys = map[rune]runeKey{
	'a': {evdev.KEY_A, false}, 'A': {evdev.KEY_A, true},
	'b': {evdev.KEY_B, false}, 'B': {evdev.KEY_B, true},
	'c': {evdev.KEY_C, false}, 'C': {evdev.KEY_C, true},
	'd': {evdev.KEY_D, false}, 'D': {evdev.KEY_D, true},
	'e': {evdev.KEY_E, false}, 'E': {evdev.KEY_E, true},
	'f': {evdev.KEY_F, false}, 'F': {evdev.KEY_F, true},
	'g': {evdev.KEY_G, false}, 'G': {evdev.KEY_G, true},
	'h': {evdev.KEY_H, false}, 'H': {evdev.KEY_H, true},
	'i': {evdev.KEY_I, false}, 'I': {evdev.KEY_I, true},
	'j': {evdev.KEY_J, false}, 'J': {evdev.KEY_J, true},
	'k': {evdev.KEY_K, false}, 'K': {evdev.KEY_K, true},
	'l': {evdev.KEY_L, false}, 'L': {evdev.KEY_L, true},
	'm': {evdev.KEY_M, false}, 'M': {evdev.KEY_M, true},
	'n': {evdev.KEY_N, false}, 'N': {evdev.KEY_N, true},
	'o': {evdev.KEY_O, false}, 'O': {evdev.KEY_O, true},
	'p': {evdev.KEY_P, false}, 'P': {evdev.KEY_P, true},
	'q': {evdev.KEY_Q, false}, 'Q': {evdev.KEY_Q, true},
	'r': {evdev.KEY_R, false}, 'R': {evdev.KEY_R, true},
	's': {evdev.KEY_S, false}, 'S': {evdev.KEY_S, true},
	't': {evdev.KEY_T, false}, 'T': {evdev.KEY_T, true},
	'u': {evdev.KEY_U, false}, 'U': {evdev.KEY_U, true},
	'v': {evdev.KEY_V, false}, 'V': {evdev.KEY_V, true},
	'w': {evdev.KEY_W, false}, 'W': {evdev.KEY_W, true},
	'x': {evdev.KEY_X, false}, 'X': {evdev.KEY_X, true},
	'y': {evdev.KEY_Y, false}, 'Y': {evdev.KEY_Y, true},
	'z': {evdev.KEY_Z, false}, 'Z': {evdev.KEY_Z, true},

	'1': {evdev.KEY_1, false}, '!': {evdev.KEY_1, true},
	'2': {evdev.KEY_2, false}, '@': {evdev.KEY_2, true},
	'3': {evdev.KEY_3, false}, '#': {evdev.KEY_3, true},
	'4': {evdev.KEY_4, false}, '$': {evdev.KEY_4, true},
	'5': {evdev.KEY_5, false}, '%': {evdev.KEY_5, true},
	'6': {evdev.KEY_6, false}, '^': {evdev.KEY_6, true},
	'7': {evdev.KEY_7, false}, '&': {evdev.KEY_7, true},
	'8': {evdev.KEY_8, false}, '*': {evdev.KEY_8, true},
	'9': {evdev.KEY_9, false}, '(': {evdev.KEY_9, true},
	'0': {evdev.KEY_0, false}, ')': {evdev.KEY_0, true},

	'-':  {evdev.KEY_MINUS, false}, '_': {evdev.KEY_MINUS, true},
	'=':  {evdev.KEY_EQUAL, false}, '+': {evdev.KEY_EQUAL, true},
	'[':  {evdev.KEY_LEFTBRACE, false}, '{': {evdev.KEY_LEFTBRACE, true},
	']':  {evdev.KEY_RIGHTBRACE, false}, '}': {evdev.KEY_RIGHTBRACE, true},
	'\\': {evdev.KEY_BACKSLASH, false}, '|': {evdev.KEY_BACKSLASH, true},
	';':  {evdev.KEY_SEMICOLON, false}, ':': {evdev.KEY_SEMICOLON, true},
	'\'': {evdev.KEY_APOSTROPHE, false}, '"': {evdev.KEY_APOSTROPHE, true},
	',':  {evdev.KEY_COMMA, false}, '<': {evdev.KEY_COMMA, true},
	'.':  {evdev.KEY_DOT, false}, '>': {evdev.KEY_DOT, true},
	'/':  {evdev.KEY_SLASH, false}, '?': {evdev.KEY_SLASH, true},
	'`':  {evdev.KEY_GRAVE, false}, '~': {evdev.KEY_GRAVE, true},

	' ':  {evdev.KEY_SPACE, false},
	'\t': {evdev.KEY_TAB, false},
	'\n': {evdev.KEY_ENTER, false},
}

// Uinput injects keystrokes through a virtual keyboard device created via
// /dev/uinput.
type Uinput struct {
	dev    *evdev.InputDevice
	logger *zap.Logger
}

// NewUinput creates the virtual keyboard. Needs write access to
// /dev/uinput.
func NewUinput(logger *zap.Logger) (*Uinput, error) {
	var codes []evdev.EvCode
	for _, code := range evdev.KEYFromString {
		codes = append(codes, code)
	}

	dev, err := evdev.CreateDevice("mmpd virtual keyboard", evdev.InputID{
		BusType: 0x03,
		Vendor:  0x4d70, // "Mp"
		Product: 0x0001,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: codes,
	})
	if err != nil {
		return nil, fmt.Errorf("creating uinput device failed: %w", err)
	}

	return &Uinput{dev: dev, logger: logger}, nil
}

// Close removes the virtual device.
func (u *Uinput) Close() error {
	return u.dev.Close()
}

// SendKeySequence presses the chord described by one sequence token, e.g.
// "ctrl+shift+t" or "Return".
func (u *Uinput) SendKeySequence(sequence string, delayMicros uint32) error {
	c, err := parseSequence(sequence)
	if err != nil {
		return err
	}
	return u.sendChord(c, delayMicros)
}

// SendText types the literal text through the US-QWERTY table.
func (u *Uinput) SendText(text string, delayMicros uint32) error {
	for _, r := range text {
		key, ok := runeKeys[r]
		if !ok {
			return fmt.Errorf("no keystroke known for character %q", r)
		}
		c := chord{key: key.code}
		if key.shift {
			c.modifiers = []evdev.EvCode{evdev.KEY_LEFTSHIFT}
		}
		if err := u.sendChord(c, delayMicros); err != nil {
			return err
		}
	}
	return nil
}

// parseSequence resolves one "+"-separated token: leading parts are
// modifiers, the last part names the key, either a named key, a single
// character or a raw KEY_* constant.
func parseSequence(sequence string) (chord, error) {
	parts := strings.Split(sequence, "+")
	var c chord

	for _, part := range parts[:len(parts)-1] {
		code, ok := modifierCodes[strings.ToLower(part)]
		if !ok {
			return chord{}, fmt.Errorf("unsupported modifier %q in sequence %q", part, sequence)
		}
		c.modifiers = append(c.modifiers, code)
	}

	last := parts[len(parts)-1]
	if code, ok := namedKeys[strings.ToLower(last)]; ok {
		c.key = code
		return c, nil
	}
	if code, ok := evdev.KEYFromString[last]; ok {
		c.key = code
		return c, nil
	}
	runes := []rune(last)
	if len(runes) == 1 {
		key, ok := runeKeys[runes[0]]
		if ok {
			c.key = key.code
			if key.shift {
				c.modifiers = append(c.modifiers, evdev.KEY_LEFTSHIFT)
			}
			return c, nil
		}
	}
	return chord{}, fmt.Errorf("unsupported key %q in sequence %q", last, sequence)
}

func (u *Uinput) sendChord(c chord, delayMicros uint32) error {
	delay := time.Duration(delayMicros) * time.Microsecond

	for _, mod := range c.modifiers {
		if err := u.writeKey(mod, keyPress); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	if err := u.writeKey(c.key, keyPress); err != nil {
		return err
	}
	time.Sleep(delay)
	if err := u.writeKey(c.key, keyRelease); err != nil {
		return err
	}
	for i := len(c.modifiers) - 1; i >= 0; i-- {
		time.Sleep(delay)
		if err := u.writeKey(c.modifiers[i], keyRelease); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uinput) writeKey(code evdev.EvCode, value int32) error {
	err := u.dev.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  code,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("writing key event failed: %w", err)
	}
	err = u.dev.WriteOne(&evdev.InputEvent{
		Type: evdev.EV_SYN,
		Code: evdev.SYN_REPORT,
	})
	if err != nil {
		return fmt.Errorf("writing syn event failed: %w", err)
	}
	return nil
}
