package config_test

import (
	"testing"

	"bennypowers.dev/code-inspector/internal/config"
	"bennypowers.dev/code-inspector/internal/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoot(t *testing.T) {
	t.Run("empty document uses defaults", func(t *testing.T) {
		boot, err := config.ParseBoot(nil)
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:5678", boot.URL)
		assert.True(t, boot.Config.Copy.Enabled)
		assert.Equal(t, "z", boot.Config.ModeKey)
	})

	t.Run("fields override defaults", func(t *testing.T) {
		boot, err := config.ParseBoot([]byte(`{
			// injected by the build integration
			"url": "http://127.0.0.1:5680/",
			"config": {"defaultAction": "copy", "copy": "{file}#L{line}", "coverColor": "rebeccapurple"},
		}`))
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:5680", boot.URL)
		assert.Equal(t, "#663399", boot.Config.CoverColor)

		s := boot.Config.DispatchSettings(boot.URL)
		assert.Equal(t, dispatch.ActionCopy, s.DefaultAction)
		assert.Equal(t, "{file}#L{line}", s.CopyTemplate)
		assert.True(t, s.Locate)
	})

	t.Run("port without url", func(t *testing.T) {
		boot, err := config.ParseBoot([]byte(`{"config": {"port": 6001}}`))
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:6001", boot.URL)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := config.ParseBoot([]byte(`{"config": {"hotKeys": ["hyperKey"]}}`))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := config.ParseBoot([]byte(`{"url":`))
		assert.Error(t, err)
	})
}
