// Package keyboard synthesizes keystrokes on behalf of macro actions.
package keyboard

// Adapter is the narrow interface the action runner consumes. delay is the
// inter-key pause in microseconds.
type Adapter interface {
	// SendKeySequence presses one key chord described by a sequence token
	// such as "ctrl+shift+t", "Return" or "a".
	SendKeySequence(sequence string, delayMicros uint32) error
	// SendText types the literal text.
	SendText(text string, delayMicros uint32) error
}
