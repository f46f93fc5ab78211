package tagger_test

import (
	"strings"
	"testing"

	"bennypowers.dev/code-inspector/internal/location"
	"bennypowers.dev/code-inspector/internal/tagger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTagger(t *testing.T, opts tagger.Options) *tagger.Tagger {
	t.Helper()
	tg, err := tagger.New(opts)
	require.NoError(t, err)
	return tg
}

func TestTagEmbeddedMarkup(t *testing.T) {
	tg := newTagger(t, tagger.Options{})

	t.Run("two elements on one line", func(t *testing.T) {
		src := "const a = <div><span>hi</span></div>;\n"
		got := tg.Tag(src, "/src/App.jsx", tagger.DialectAuto)
		assert.Equal(t,
			`const a = <div __location__="/src/App.jsx:1:11:div"><span __location__="/src/App.jsx:1:16:span">hi</span></div>;`+"\n",
			got)
	})

	t.Run("line and column point at the opening bracket", func(t *testing.T) {
		src := "function A() {\n  return <main/>;\n}\n"
		got := tg.Tag(src, "/src/a.jsx", tagger.DialectAuto)
		assert.Contains(t, got, `<main __location__="/src/a.jsx:2:10:main"/>`)
	})

	t.Run("columns count UTF-16 code units", func(t *testing.T) {
		src := `const s = "😀"; const a = <b/>;`
		got := tg.Tag(src, "/src/a.jsx", tagger.DialectAuto)
		assert.Contains(t, got, `<b __location__="/src/a.jsx:1:27:b"/>`)
	})

	t.Run("fragments and escaped tags are skipped but children are not", func(t *testing.T) {
		src := "const x = <React.Fragment><p /></React.Fragment>;"
		got := tg.Tag(src, "/src/a.jsx", tagger.DialectAuto)
		assert.Equal(t,
			`const x = <React.Fragment><p __location__="/src/a.jsx:1:27:p" /></React.Fragment>;`,
			got)
	})

	t.Run("re-tagging is idempotent", func(t *testing.T) {
		src := "const a = <div><span>hi</span></div>;\n"
		once := tg.Tag(src, "/src/App.jsx", tagger.DialectAuto)
		twice := tg.Tag(once, "/src/App.jsx", tagger.DialectAuto)
		assert.Equal(t, once, twice)
		assert.Equal(t, 2, strings.Count(twice, location.AttributeName))
	})

	t.Run("html tagged templates", func(t *testing.T) {
		src := "const t = html`<div>${x}<span></span></div>`;"
		got := tg.Tag(src, "/src/el.ts", tagger.DialectAuto)
		assert.Equal(t,
			"const t = html`<div __location__=\"/src/el.ts:1:16:div\">${x}<span __location__=\"/src/el.ts:1:25:span\"></span></div>`;",
			got)
	})

	t.Run("syntax errors leave the file unchanged", func(t *testing.T) {
		src := "const a = <div>;"
		assert.Equal(t, src, tg.Tag(src, "/src/a.jsx", tagger.DialectAuto))

		out, added, err := tg.TagWithError(src, "/src/a.jsx", tagger.DialectAuto)
		require.Error(t, err)
		assert.ErrorIs(t, err, tagger.ErrParse)
		assert.Equal(t, src, out)
		assert.Zero(t, added)
	})
}

func TestTagSFCTemplate(t *testing.T) {
	tg := newTagger(t, tagger.Options{})

	t.Run("markup template", func(t *testing.T) {
		src := strings.Join([]string{
			`<template>`,
			`  <div class="app">`,
			`    <span>{{ msg }}</span>`,
			`    <slot />`,
			`  </div>`,
			`</template>`,
			``,
			`<script>`,
			`export default { render() { return <p/> } }`,
			`</script>`,
			``,
		}, "\n")
		want := strings.Join([]string{
			`<template>`,
			`  <div __location__="/src/App.vue:2:3:div" class="app">`,
			`    <span __location__="/src/App.vue:3:5:span">{{ msg }}</span>`,
			`    <slot />`,
			`  </div>`,
			`</template>`,
			``,
			`<script>`,
			`export default { render() { return <p/> } }`,
			`</script>`,
			``,
		}, "\n")
		assert.Equal(t, want, tg.Tag(src, "/src/App.vue", tagger.DialectAuto))
	})

	t.Run("indentation template", func(t *testing.T) {
		src := "<template lang=\"pug\">\ndiv.app\n  p hello\n  .card text\n</template>\n"
		want := "<template lang=\"pug\">\n" +
			"div(__location__=\"/src/A.vue:2:1:div\").app\n" +
			"  p(__location__=\"/src/A.vue:3:3:p\") hello\n" +
			"  .card(__location__=\"/src/A.vue:4:3:div\") text\n" +
			"</template>\n"
		assert.Equal(t, want, tg.Tag(src, "/src/A.vue", tagger.DialectAuto))
	})

	t.Run("interpolations are not markup", func(t *testing.T) {
		src := "<template>\n  <div>{{ a<b ? 1 : 2 }}</div>\n  <ul><li v-for=\"i in 5\">{{ i<3 }}</li></ul>\n</template>\n"
		want := "<template>\n" +
			"  <div __location__=\"/src/Lt.vue:2:3:div\">{{ a<b ? 1 : 2 }}</div>\n" +
			"  <ul __location__=\"/src/Lt.vue:3:3:ul\"><li __location__=\"/src/Lt.vue:3:7:li\" v-for=\"i in 5\">{{ i<3 }}</li></ul>\n" +
			"</template>\n"
		out, added, err := tg.TagWithError(src, "/src/Lt.vue", tagger.DialectAuto)
		require.NoError(t, err)
		assert.Equal(t, 3, added)
		assert.Equal(t, want, out)
	})

	t.Run("indentation template with comparison in attributes", func(t *testing.T) {
		src := "<template lang=\"pug\">\ndiv\n  p(v-if=\"a<b\") hi\n</template>\n"
		want := "<template lang=\"pug\">\n" +
			"div(__location__=\"/src/Cmp.vue:2:1:div\")\n" +
			"  p(__location__=\"/src/Cmp.vue:3:3:p\")(v-if=\"a<b\") hi\n" +
			"</template>\n"
		out, added, err := tg.TagWithError(src, "/src/Cmp.vue", tagger.DialectAuto)
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, want, out)
	})

	t.Run("custom escape patterns", func(t *testing.T) {
		escape, err := location.NewMatcher("/^my-/")
		require.NoError(t, err)
		custom := newTagger(t, tagger.Options{Escape: escape})

		src := "<template><my-el></my-el><p></p></template>"
		assert.Equal(t,
			`<template><my-el></my-el><p __location__="/c.vue:1:26:p"></p></template>`,
			custom.Tag(src, "/c.vue", tagger.DialectAuto))
	})

	t.Run("no template block", func(t *testing.T) {
		src := "<script>\nexport default {}\n</script>\n"
		assert.Equal(t, src, tg.Tag(src, "/src/B.vue", tagger.DialectAuto))
	})

	t.Run("unsupported template lang", func(t *testing.T) {
		src := "<template lang=\"haml\">\n%div\n</template>\n"
		_, _, err := tg.TagWithError(src, "/src/C.vue", tagger.DialectAuto)
		assert.ErrorIs(t, err, tagger.ErrUnsupported)
	})
}

func TestTagIndentation(t *testing.T) {
	tg := newTagger(t, tagger.Options{})

	t.Run("locations follow authored lines", func(t *testing.T) {
		src := strings.Join([]string{
			"doctype html",
			"html",
			"  body",
			"    #main",
			"      h1.title Hello",
			"",
		}, "\n")
		want := strings.Join([]string{
			"doctype html",
			`html(__location__="/views/index.pug:2:1:html")`,
			`  body(__location__="/views/index.pug:3:3:body")`,
			`    #main(__location__="/views/index.pug:4:5:div")`,
			`      h1(__location__="/views/index.pug:5:7:h1").title Hello`,
			"",
		}, "\n")
		assert.Equal(t, want, tg.Tag(src, "/views/index.pug", tagger.DialectAuto))
	})

	t.Run("existing locations are kept", func(t *testing.T) {
		src := "p(__location__=\"x.pug:1:1:p\") hi\n"
		assert.Equal(t, src, tg.Tag(src, "/x.pug", tagger.Indentation))
	})

	t.Run("transpile failures leave the file unchanged", func(t *testing.T) {
		src := "div\n \tp"
		assert.Equal(t, src, tg.Tag(src, "/bad.pug", tagger.Indentation))
	})

	t.Run("transpiled blocks are cached by content", func(t *testing.T) {
		cached := newTagger(t, tagger.Options{CacheSize: 4})
		src := "ul\n  li one\n"
		first := cached.Tag(src, "/list.pug", tagger.DialectAuto)
		second := cached.Tag(src, "/list.pug", tagger.DialectAuto)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, cached.CachedBlocks())

		cached.Tag(src+"  li two\n", "/list.pug", tagger.DialectAuto)
		assert.Equal(t, 2, cached.CachedBlocks())
	})
}

func TestTagOptions(t *testing.T) {
	t.Run("relative paths", func(t *testing.T) {
		tg := newTagger(t, tagger.Options{Root: "/project", RelativePaths: true})
		got := tg.Tag("const a = <i/>;", "/project/src/a.jsx", tagger.DialectAuto)
		assert.Equal(t, `const a = <i __location__="src/a.jsx:1:11:i"/>;`, got)
	})

	t.Run("unknown extension", func(t *testing.T) {
		tg := newTagger(t, tagger.Options{})
		out, _, err := tg.TagWithError("<div></div>", "/notes.txt", tagger.DialectAuto)
		assert.ErrorIs(t, err, tagger.ErrUnsupported)
		assert.ErrorIs(t, err, tagger.ErrParse)
		assert.Equal(t, "<div></div>", out)
	})

	t.Run("package-level entry point", func(t *testing.T) {
		got := tagger.Tag("const a = <template><b/></template>;", "/a.jsx", tagger.EmbeddedMarkup, nil)
		assert.Equal(t, `const a = <template><b __location__="/a.jsx:1:21:b"/></template>;`, got)
	})
}

func TestDialects(t *testing.T) {
	d, ok := tagger.DetectDialect("/a/B.VUE")
	assert.True(t, ok)
	assert.Equal(t, tagger.SFCTemplate, d)

	d, ok = tagger.DetectDialect("x.jade")
	assert.True(t, ok)
	assert.Equal(t, tagger.Indentation, d)

	_, ok = tagger.DetectDialect("x.css")
	assert.False(t, ok)

	d, err := tagger.ParseDialect("pug")
	require.NoError(t, err)
	assert.Equal(t, tagger.Indentation, d)

	d, err = tagger.ParseDialect("tsx")
	require.NoError(t, err)
	assert.Equal(t, tagger.EmbeddedMarkup, d)

	_, err = tagger.ParseDialect("svelte")
	assert.Error(t, err)
}
