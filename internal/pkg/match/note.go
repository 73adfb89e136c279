package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var noteRegex = regexp.MustCompile(`^(?P<pitch>[A-Ga-g])(?P<accidentals>[b#]+)?(?P<octave>-?[0-9])?$`)

var pitchToVal = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// CompileNote turns a musical note name into a number matcher over MIDI note
// numbers (C-1 = 0, G9 = 127). Sharps add one semitone each, flats subtract
// one; multiple accidentals sum. With an octave the result is that single
// note; without one, every note of the same pitch class in 0-127.
// A note that lands outside the MIDI range is an error.
func CompileNote(note string) (Number, error) {
	groups := noteRegex.FindStringSubmatch(note)
	if groups == nil {
		return Number{}, fmt.Errorf("unsupported note format: %q", note)
	}

	pitch := strings.ToUpper(groups[1])
	base := pitchToVal[pitch]

	for _, r := range groups[2] {
		switch r {
		case '#':
			base++
		case 'b':
			base--
		}
	}

	if groups[3] != "" {
		octave, err := strconv.Atoi(groups[3])
		if err != nil {
			return Number{}, fmt.Errorf("parsing octave of %q failed: %w", note, err)
		}
		value := (octave+1)*12 + base
		if value < 0 || value > 127 {
			return Number{}, fmt.Errorf("note %q outside of midi range 0-127: %d", note, value)
		}
		return Val(uint32(value)), nil
	}

	pitchClass := ((base % 12) + 12) % 12
	var notes []Number
	for n := pitchClass; n <= 127; n += 12 {
		notes = append(notes, Val(uint32(n)))
	}
	if len(notes) == 0 {
		return Number{}, fmt.Errorf("note %q matches nothing in midi range 0-127", note)
	}
	if len(notes) == 1 {
		return notes[0], nil
	}
	return List(notes...), nil
}
