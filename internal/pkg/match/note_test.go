package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileNoteWithOctave(t *testing.T) {
	for _, tc := range []struct {
		note     string
		expected uint32
	}{
		{"C-1", 0},
		{"c-1", 0},
		{"C0", 12},
		{"A0", 21},
		{"C4", 60},
		{"C#4", 61},
		{"Db4", 61},
		{"B3", 59},
		{"Cb4", 59},
		{"B#3", 60},
		{"F##4", 67}, // double sharp lands on G
		{"G9", 127},
	} {
		t.Run(tc.note, func(t *testing.T) {
			m, err := CompileNote(tc.note)
			require.NoError(t, err)
			assert.Equal(t, Val(tc.expected), m)
		})
	}
}

func TestCompileNoteWithoutOctave(t *testing.T) {
	m, err := CompileNote("C")
	require.NoError(t, err)
	require.Equal(t, NumberList, m.Kind)

	var values []uint32
	for _, sub := range m.List {
		require.Equal(t, NumberVal, sub.Kind)
		values = append(values, sub.Val)
	}
	assert.Equal(t, []uint32{0, 12, 24, 36, 48, 60, 72, 84, 96, 108, 120}, values)

	// every pitch class covers exactly the notes congruent to it mod 12
	for base, note := range map[uint32]string{
		0: "C", 2: "D", 4: "E", 5: "F", 7: "G", 9: "A", 11: "B",
	} {
		m, err := CompileNote(note)
		require.NoError(t, err)
		for n := uint32(0); n <= 127; n++ {
			assert.Equal(t, n%12 == base, m.Matches(n), "note %s value %d", note, n)
		}
	}
}

func TestCompileNoteRoundTrip(t *testing.T) {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	for n := 0; n <= 127; n++ {
		name := fmt.Sprintf("%s%d", names[n%12], n/12-1)
		m, err := CompileNote(name)
		require.NoError(t, err, name)
		assert.Equal(t, Val(uint32(n)), m, name)
	}
}

func TestCompileNoteErrors(t *testing.T) {
	for _, note := range []string{
		"",
		"H4",    // not a pitch letter
		"C 4",   // whitespace
		"C-2",   // below midi range
		"G#9",   // above midi range
		"Cb-1",  // flattens below zero
		"C4b",   // accidentals before octave only
		"C10",   // octave is a single digit
		"notes", // garbage
	} {
		t.Run(note, func(t *testing.T) {
			_, err := CompileNote(note)
			assert.Error(t, err)
		})
	}
}
