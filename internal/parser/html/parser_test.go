package html_test

import (
	"testing"

	"bennypowers.dev/code-inspector/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElements(t *testing.T) {
	source := "<div class=\"a\">\n  <span>x</span><img src=\"y\">\n  <MyComp :a=\"b\" />\n</div>"

	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)

	elements, err := parser.Elements(source)
	require.NoError(t, err)
	require.Len(t, elements, 4)

	names := make([]string, len(elements))
	for i, el := range elements {
		names[i] = el.TagName
	}
	assert.Equal(t, []string{"div", "span", "img", "MyComp"}, names)

	div := elements[0]
	assert.Equal(t, 0, div.Start)
	assert.Equal(t, 4, div.NameEnd)
	assert.Equal(t, uint(0), div.Row)
	assert.Equal(t, uint(1), div.Col)
	assert.True(t, div.HasAttribute("class"))

	span := elements[1]
	assert.Equal(t, uint(1), span.Row)
	assert.Equal(t, uint(3), span.Col)
	assert.Equal(t, "span", source[span.NameEnd-4:span.NameEnd])

	comp := elements[3]
	assert.Equal(t, uint(2), comp.Row)
	assert.True(t, comp.HasAttribute(":a"))
	assert.False(t, comp.InError)
}

func TestElementsExistingLocation(t *testing.T) {
	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)

	elements, err := parser.Elements(`<p __location__="a.vue:1:1:p">hi</p>`)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.True(t, elements[0].HasAttribute("__location__"))
}

func TestElementsPlainText(t *testing.T) {
	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)

	elements, err := parser.Elements("just text, no tags")
	require.NoError(t, err)
	assert.Empty(t, elements)
}
