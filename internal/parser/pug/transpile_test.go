package pug_test

import (
	"strings"
	"testing"

	htmlparser "bennypowers.dev/code-inspector/internal/parser/html"
	"bennypowers.dev/code-inspector/internal/parser/pug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `div.app(
  :class="cls"
)
  // a comment
  header
    h1 Title
  ul
    li(v-for="i in items") {{ i }}
  .footer#f: span.note ok
  img(src="a.png")
  p.
    block text
`

func TestTranspile(t *testing.T) {
	res, err := pug.Transpile(fixture)
	require.NoError(t, err)

	out := strings.Split(res.HTML, "\n")
	assert.Equal(t, []string{
		"<div>",
		"<!-- a comment -->",
		"  <header>",
		"    <h1>Title",
		"    </h1>",
		"  </header>",
		"  <ul>",
		"    <li>{{ i }}",
		"    </li>",
		"  </ul>",
		"  <div>",
		"    <span>ok",
		"    </span>",
		"  </div>",
		"  <img>",
		"  <p>",
		"block text",
		"  </p>",
		"</div>",
	}, out)

	assert.Equal(t, 13, res.Table.OriginalLines())
	assert.Equal(t, 19, res.Table.GeneratedLines())
}

func TestOffsetTableTranslate(t *testing.T) {
	res, err := pug.Transpile(fixture)
	require.NoError(t, err)
	table := res.Table

	t.Run("element line maps to authored line", func(t *testing.T) {
		entry, err := table.Translate(3, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, entry.Line)
		assert.Equal(t, "h1", entry.Name)
		assert.Equal(t, 4, entry.NameCol)
		assert.Equal(t, 6, entry.InsertCol)
	})

	t.Run("multi-line attributes keep the opening line", func(t *testing.T) {
		entry, err := table.Translate(0, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, entry.Line)
		assert.Equal(t, 3, entry.InsertCol)
	})

	t.Run("block expansion maps both elements to one line", func(t *testing.T) {
		outer, err := table.Translate(10, 3)
		require.NoError(t, err)
		inner, err := table.Translate(11, 5)
		require.NoError(t, err)

		assert.Equal(t, 8, outer.Line)
		assert.Equal(t, "", outer.Name, "implicit div")
		assert.Equal(t, 2, outer.NameCol)
		assert.Equal(t, 9, outer.InsertCol, "after the first shorthand")

		assert.Equal(t, 8, inner.Line)
		assert.Equal(t, "span", inner.Name)
		assert.Equal(t, 13, inner.NameCol)
	})

	t.Run("synthesized closing line has no origin", func(t *testing.T) {
		_, err := table.Translate(4, 6)
		assert.ErrorIs(t, err, pug.ErrOffsetTranslation)
	})

	t.Run("column mismatch is rejected", func(t *testing.T) {
		_, err := table.Translate(3, 4)
		var offErr *pug.OffsetError
		require.ErrorAs(t, err, &offErr)
		assert.Equal(t, 3, offErr.GeneratedLine)
	})

	t.Run("line outside the table", func(t *testing.T) {
		_, err := table.Translate(99, 0)
		assert.ErrorIs(t, err, pug.ErrOffsetTranslation)
	})
}

// Every element the HTML parser finds in the bracketed form must translate back to
// a line of the original whose text at NameCol is the element's own name.
func TestTranspiledElementsTranslateToAuthoredLines(t *testing.T) {
	res, err := pug.Transpile(fixture)
	require.NoError(t, err)
	original := strings.Split(fixture, "\n")

	parser := htmlparser.AcquireParser()
	defer htmlparser.ReleaseParser(parser)

	elements, err := parser.Elements(res.HTML)
	require.NoError(t, err)
	require.Len(t, elements, 9)

	diverged := 0
	for _, el := range elements {
		entry, err := res.Table.Translate(int(el.Row), int(el.Col))
		require.NoError(t, err, el.TagName)

		if int(el.Row) != entry.Line {
			diverged++
		}
		text := original[entry.Line]
		if entry.Name != "" {
			assert.Equal(t, entry.Name, text[entry.NameCol:entry.NameCol+len(entry.Name)])
		} else {
			assert.Contains(t, ".#", string(text[entry.NameCol]))
		}
	}
	assert.Positive(t, diverged, "fixture must force generated and original lines apart")
}

func TestTranspileExistingLocation(t *testing.T) {
	res, err := pug.Transpile(`p(__location__="a.vue:1:1:p") hi`)
	require.NoError(t, err)
	assert.Equal(t, `<p __location__="">hi`+"\n</p>", res.HTML)
}

func TestTranspileControlFlow(t *testing.T) {
	src := "ul\n  each item in items\n    li= item\n  if empty\n    li none\n  else\n    li(class='x')/\n"
	res, err := pug.Transpile(src)
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n    <li>\n    </li>\n    <li>none\n    </li>\n    <li/>\n</ul>", res.HTML)
}

func TestTranspileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "mixed indentation", src: "div\n \tp"},
		{name: "unterminated attributes", src: "div(a=\"1\"\n  p"},
		{name: "stray text", src: "div\n  {{ x }}"},
		{name: "garbage after element", src: "div%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pug.Transpile(tt.src)
			assert.ErrorIs(t, err, pug.ErrSyntax)
		})
	}
}

func TestDetect(t *testing.T) {
	assert.True(t, pug.Detect("pug"))
	assert.True(t, pug.Detect(" Jade "))
	assert.False(t, pug.Detect(""))
	assert.False(t, pug.Detect("html"))
}
