package location_test

import (
	"testing"

	"bennypowers.dev/code-inspector/internal/location"
	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	m, err := location.NewMatcher("Transition", "/^el-/", "/Icon$/i")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	tests := []struct {
		tag  string
		want bool
	}{
		{tag: "transition", want: true},
		{tag: "TRANSITION", want: true},
		{tag: "el-button", want: true},
		{tag: "El-Button", want: true}, // tested lower-cased
		{tag: "SearchIcon", want: true},
		{tag: "div", want: false},
		{tag: "my-el-x", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.tag))
		})
	}
}

func TestMatcherAnyEntryMatches(t *testing.T) {
	m, err := location.NewMatcher("span")
	require.NoError(t, err)
	m.AddPattern(regexp2.MustCompile(`^h[1-6]$`, regexp2.ECMAScript))

	assert.True(t, m.Match("span"))
	assert.True(t, m.Match("H2"))
	assert.False(t, m.Match("p"))
}

func TestNilMatcher(t *testing.T) {
	var m *location.Matcher
	assert.False(t, m.Match("div"))
	assert.Equal(t, 0, m.Len())
}

func TestCompilePatternErrors(t *testing.T) {
	_, err := location.CompilePattern("/a/q")
	assert.Error(t, err)

	_, err = location.NewMatcher("/(/")
	assert.Error(t, err)

	_, err = location.CompilePattern("abc")
	assert.Error(t, err)
}

func TestCompilePatternFlags(t *testing.T) {
	re, err := location.CompilePattern("/^my-(panel|card)$/im")
	require.NoError(t, err)
	ok, err := re.MatchString("MY-Card")
	require.NoError(t, err)
	assert.True(t, ok)

	re, err = location.CompilePattern("/^a.b$/s")
	require.NoError(t, err)
	ok, err = re.MatchString("a\nb")
	require.NoError(t, err)
	assert.True(t, ok)
}
