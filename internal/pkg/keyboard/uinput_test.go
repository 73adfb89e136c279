package keyboard

import (
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSequence(t *testing.T) {
	cases := []struct {
		sequence  string
		key       evdev.EvCode
		modifiers []evdev.EvCode
	}{
		{"a", evdev.KEY_A, nil},
		{"Return", evdev.KEY_ENTER, nil},
		{"escape", evdev.KEY_ESC, nil},
		{"F5", evdev.KEY_F5, nil},
		{"KEY_PLAYPAUSE", evdev.KEY_PLAYPAUSE, nil},
		{"ctrl+s", evdev.KEY_S, []evdev.EvCode{evdev.KEY_LEFTCTRL}},
		{"Control+s", evdev.KEY_S, []evdev.EvCode{evdev.KEY_LEFTCTRL}},
		{"ctrl+shift+t", evdev.KEY_T, []evdev.EvCode{evdev.KEY_LEFTCTRL, evdev.KEY_LEFTSHIFT}},
		{"super+tab", evdev.KEY_TAB, []evdev.EvCode{evdev.KEY_LEFTMETA}},
		{"altgr+e", evdev.KEY_E, []evdev.EvCode{evdev.KEY_RIGHTALT}},
		// an upper-case character implies shift
		{"A", evdev.KEY_A, []evdev.EvCode{evdev.KEY_LEFTSHIFT}},
		{"ctrl+%", evdev.KEY_5, []evdev.EvCode{evdev.KEY_LEFTCTRL, evdev.KEY_LEFTSHIFT}},
	}

	for _, tc := range cases {
		t.Run(tc.sequence, func(t *testing.T) {
			c, err := parseSequence(tc.sequence)
			require.NoError(t, err)
			assert.Equal(t, tc.key, c.key)
			assert.Equal(t, tc.modifiers, c.modifiers)
		})
	}
}

func TestParseSequenceErrors(t *testing.T) {
	for _, sequence := range []string{
		"hyper+a",   // unknown modifier
		"ctrl+nope", // unknown key name
		"ctrl+ab",   // multi-character key that is not named
		"ctrl+",     // empty key
		"é",         // not on the US-QWERTY table
	} {
		t.Run(sequence, func(t *testing.T) {
			_, err := parseSequence(sequence)
			assert.Error(t, err)
		})
	}
}

func TestRuneTableCoversControlCharacters(t *testing.T) {
	assert.Equal(t, runeKey{evdev.KEY_ENTER, false}, runeKeys['\n'])
	assert.Equal(t, runeKey{evdev.KEY_TAB, false}, runeKeys['\t'])
	assert.Equal(t, runeKey{evdev.KEY_SPACE, false}, runeKeys[' '])
}
