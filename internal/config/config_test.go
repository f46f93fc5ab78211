package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/code-inspector/internal/config"
	"bennypowers.dev/code-inspector/internal/dispatch"
	"bennypowers.dev/code-inspector/internal/inspector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(project(t, nil))
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, config.PathAbsolute, cfg.PathType)

	s := cfg.DispatchSettings("http://127.0.0.1:5678")
	assert.True(t, s.Locate)
	assert.True(t, s.Copy)
	assert.Empty(t, s.CopyTemplate)

	mods, err := cfg.Modifiers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []inspector.Modifier{inspector.Shift, inspector.Alt}, mods)
}

func TestLoadPackageJSON(t *testing.T) {
	root := project(t, map[string]string{
		"package.json": `{
  "name": "app",
  // comments are allowed
  "codeInspector": {
    "editor": "webstorm",
    "copy": "{file}#L{line}",
    "pathType": "relative",
    "coverColor": "rebeccapurple",
    "defaultAction": "copy",
  }
}`,
		".code-inspector.yaml": "editor: zed\n",
	})

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "package.json"), cfg.Source)
	assert.Equal(t, "webstorm", cfg.Editor)
	assert.Equal(t, config.CopySetting{Enabled: true, Template: "{file}#L{line}"}, cfg.Copy)
	assert.True(t, cfg.RelativePaths())
	assert.Equal(t, "#663399", cfg.CoverColor)

	s := cfg.DispatchSettings("")
	assert.Equal(t, dispatch.ActionCopy, s.DefaultAction)
	assert.Equal(t, "{file}#L{line}", s.CopyTemplate)
}

func TestLoadConfigFiles(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		root := project(t, map[string]string{
			"package.json":         `{"name": "app"}`,
			".code-inspector.yaml": "copy: false\nlocate: true\nhotKeys: [ctrlKey]\nescapeTags: ['/^x-/i', Widget]\nport: 6000\n",
		})
		cfg, err := config.Load(root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, ".code-inspector.yaml"), cfg.Source)
		assert.False(t, cfg.Copy.Enabled)
		assert.Equal(t, 6000, cfg.Port)

		m, err := cfg.Matcher()
		require.NoError(t, err)
		assert.True(t, m.Match("X-Foo"))
		assert.True(t, m.Match("widget"))
		assert.True(t, m.Match("template"), "defaults are kept")
		assert.False(t, m.Match("div"))

		opts := cfg.InspectorOptions("")
		assert.True(t, opts.HotKeys.IsTracking(inspector.Modifiers{Ctrl: true}))
		assert.False(t, opts.Settings.Copy)
	})

	t.Run("jsonc", func(t *testing.T) {
		root := project(t, map[string]string{
			".code-inspector.jsonc": "{\n  // open in the browser\n  \"target\": \"https://example.com/{file}#L{line}\",\n}\n",
		})
		cfg, err := config.Load(root)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/{file}#L{line}", cfg.Target)
		assert.True(t, cfg.DispatchSettings("").Enabled(dispatch.ActionTarget))
	})

	t.Run("yaml copy template", func(t *testing.T) {
		root := project(t, map[string]string{".code-inspector.yml": "copy: 'vim +{line} {file}'\n"})
		cfg, err := config.Load(root)
		require.NoError(t, err)
		assert.Equal(t, config.CopySetting{Enabled: true, Template: "vim +{line} {file}"}, cfg.Copy)
	})
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"path type", map[string]string{".code-inspector.json": `{"pathType": "weird"}`}},
		{"cover color", map[string]string{".code-inspector.json": `{"coverColor": "not-a-color"}`}},
		{"hot key", map[string]string{".code-inspector.json": `{"hotKeys": ["hyperKey"]}`}},
		{"escape pattern", map[string]string{".code-inspector.json": `{"escapeTags": ["/(/"]}`}},
		{"default action", map[string]string{".code-inspector.json": `{"defaultAction": "paste"}`}},
		{"field type", map[string]string{"package.json": `{"codeInspector": "code"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(project(t, tt.files))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	t.Run("copy type", func(t *testing.T) {
		_, err := config.Load(project(t, map[string]string{".code-inspector.json": `{"copy": 3}`}))
		assert.Error(t, err)
	})
}

func TestFrameworkAttribute(t *testing.T) {
	root := project(t, map[string]string{
		".code-inspector.yaml": "frameworkAttribute: data-v-inspector\n",
	})
	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "data-v-inspector", cfg.FrameworkAttribute)

	opts := cfg.InspectorOptions("http://127.0.0.1:5678")
	require.NotNil(t, opts.Framework)
	tok, ok := opts.Framework(attrElement{"data-v-inspector": "/src/App.vue:4:3:div"})
	require.True(t, ok)
	assert.Equal(t, 4, tok.Line)

	assert.Nil(t, config.Default().InspectorOptions("").Framework)
}

type attrElement map[string]string

func (e attrElement) Attribute(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}
func (e attrElement) BoundingRect() inspector.Rect { return inspector.Rect{} }
func (e attrElement) TagName() string              { return "div" }
