package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringMatchers(t *testing.T) {
	for _, tc := range []struct {
		name     string
		matcher  String
		input    string
		expected bool
	}{
		{"is hit", Is("firefox"), "firefox", true},
		{"is miss", Is("firefox"), "Firefox", false},
		{"contains hit", Contains("fox"), "firefox", true},
		{"contains miss", Contains("fox"), "chromium", false},
		{"starts hit", StartsWith("fire"), "firefox", true},
		{"starts miss", StartsWith("fox"), "firefox", false},
		{"ends hit", EndsWith("fox"), "firefox", true},
		{"ends miss", EndsWith("fire"), "firefox", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.matcher.Matches(tc.input))
		})
	}
}

func TestStringRegex(t *testing.T) {
	m, err := Regex(`fire(fox|bird)`)
	require.NoError(t, err)

	// partial-find semantics: a substring match is enough
	assert.True(t, m.Matches("firefox"))
	assert.True(t, m.Matches("GNU firebird browser"))
	assert.False(t, m.Matches("fire"))

	anchored, err := Regex(`^exactly$`)
	require.NoError(t, err)
	assert.True(t, anchored.Matches("exactly"))
	assert.False(t, anchored.Matches("not exactly"))
}

func TestStringRegexInvalid(t *testing.T) {
	_, err := Regex(`([`)
	assert.Error(t, err)
}
