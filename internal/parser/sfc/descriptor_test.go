package sfc_test

import (
	"testing"

	"bennypowers.dev/code-inspector/internal/parser/sfc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const component = `<template lang="pug">
div.app
  span hi
</template>

<script setup lang="ts">
const a = 1 < 2
</script>

<style scoped>
.app { color: red }
</style>
`

func TestParse(t *testing.T) {
	desc, err := sfc.Parse(component)
	require.NoError(t, err)
	require.NotNil(t, desc.Template)

	tpl := desc.Template
	assert.Equal(t, "template", tpl.Type)
	assert.Equal(t, "pug", tpl.Lang())
	assert.Equal(t, "\ndiv.app\n  span hi\n", tpl.Content(component))
	assert.Equal(t, 0, tpl.Line)

	require.Len(t, desc.Scripts, 1)
	assert.Equal(t, "ts", desc.Scripts[0].Lang())
	_, hasSetup := desc.Scripts[0].Attrs["setup"]
	assert.True(t, hasSetup)

	require.Len(t, desc.Styles, 1)
	_, scoped := desc.Styles[0].Attrs["scoped"]
	assert.True(t, scoped)
}

func TestParseNestedTemplates(t *testing.T) {
	source := "<template>\n  <div>\n    <template v-if=\"ok\"><p>x</p></template>\n  </div>\n</template>\n"
	desc, err := sfc.Parse(source)
	require.NoError(t, err)
	require.NotNil(t, desc.Template)
	assert.Equal(t, "", desc.Template.Lang())
	assert.Contains(t, desc.Template.Content(source), `<template v-if="ok">`)
	assert.Equal(t, len(source)-len("</template>\n"), desc.Template.End)
}

func TestParseWithoutTemplate(t *testing.T) {
	desc, err := sfc.Parse("<script>export default {}</script>\n")
	require.NoError(t, err)
	assert.Nil(t, desc.Template)
	assert.Len(t, desc.Scripts, 1)
}

func TestParseCustomBlock(t *testing.T) {
	desc, err := sfc.Parse("<i18n lang=\"json\">{}</i18n>\n<template><p/></template>\n")
	require.NoError(t, err)
	require.Len(t, desc.Custom, 1)
	assert.Equal(t, "i18n", desc.Custom[0].Type)
	assert.Equal(t, "json", desc.Custom[0].Lang())
}

func TestParseIndentationTemplateWithMarkupCharacters(t *testing.T) {
	source := "<template lang=\"pug\">\ndiv\n  p(v-if=\"a<b\") hi\n  p(:title=\"x > 1\") </p>\n</template>\n\n<script>\nexport default {}\n</script>\n"
	desc, err := sfc.Parse(source)
	require.NoError(t, err)
	require.NotNil(t, desc.Template)
	assert.Equal(t, "pug", desc.Template.Lang())
	assert.Equal(t, "\ndiv\n  p(v-if=\"a<b\") hi\n  p(:title=\"x > 1\") </p>\n", desc.Template.Content(source))
	assert.Equal(t, 0, desc.Template.Line)
	require.Len(t, desc.Scripts, 1)
	assert.Equal(t, "\nexport default {}\n", desc.Scripts[0].Content(source))
}
