package js_test

import (
	"testing"

	"bennypowers.dev/code-inspector/internal/parser/js"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSX(t *testing.T) {
	source := `export function App() {
  return (
    <div className="app">
      <Header.Title text="hi" /><span>{name}</span>
      <>
        <p>frag</p>
      </>
    </div>
  );
}
`
	parser := js.AcquireParser(js.JavaScript)
	defer js.ReleaseParser(parser)

	result, err := parser.Parse(source)
	require.NoError(t, err)

	names := make([]string, 0, len(result.JSX))
	for _, el := range result.JSX {
		names = append(names, el.TagName)
	}
	assert.Equal(t, []string{"div", "Header.Title", "span", "p"}, names, "fragments are skipped")

	div := result.JSX[0]
	assert.Equal(t, "<div", source[div.Start:div.InsertAt])
	assert.True(t, div.HasAttribute("className"))

	title := result.JSX[1]
	assert.Equal(t, "<Header.Title", source[title.Start:title.InsertAt])
}

func TestParseTSXTypeArguments(t *testing.T) {
	source := "const x = <Select<Option> value={v} />;\n"

	parser := js.AcquireParser(js.TSX)
	defer js.ReleaseParser(parser)

	result, err := parser.Parse(source)
	require.NoError(t, err)
	require.Len(t, result.JSX, 1)

	el := result.JSX[0]
	assert.Equal(t, "Select", el.TagName)
	assert.Equal(t, "<Select<Option>", source[el.Start:el.InsertAt])
}

func TestParseTypeScriptTemplates(t *testing.T) {
	source := "class X { render(): unknown { return html`<p class=${this.c}>hi</p>`; } }\n"

	parser := js.AcquireParser(js.TypeScript)
	defer js.ReleaseParser(parser)

	result, err := parser.Parse(source)
	require.NoError(t, err)
	assert.Empty(t, result.JSX)
	require.Len(t, result.Templates, 1)

	tmpl := result.Templates[0]
	assert.Equal(t, "html", tmpl.Tag)
	require.Len(t, tmpl.Segments, 2, "split at the ${} boundary")
	assert.Equal(t, "<p class=", tmpl.Segments[0].Content)
	seg := tmpl.Segments[0]
	assert.Equal(t, seg.Content, source[seg.StartByte:seg.StartByte+len(seg.Content)])
}

func TestParseIgnoresOtherTags(t *testing.T) {
	parser := js.AcquireParser(js.JavaScript)
	defer js.ReleaseParser(parser)

	result, err := parser.Parse("const s = css`:host { color: red }`;\n")
	require.NoError(t, err)
	assert.Empty(t, result.Templates)
}

func TestParseSyntaxError(t *testing.T) {
	parser := js.AcquireParser(js.JavaScript)
	defer js.ReleaseParser(parser)

	_, err := parser.Parse("const = <div>;\n")
	assert.ErrorIs(t, err, js.ErrSyntax)
}

func TestLangString(t *testing.T) {
	assert.Equal(t, "javascript", js.JavaScript.String())
	assert.Equal(t, "typescript", js.TypeScript.String())
	assert.Equal(t, "tsx", js.TSX.String())
}
