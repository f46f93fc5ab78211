package dispatch_test

import (
	"errors"
	"testing"

	"bennypowers.dev/code-inspector/internal/dispatch"
	"bennypowers.dev/code-inspector/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBeacon struct {
	urls []string
	fail error
}

func (b *fakeBeacon) Send(url string, onError func(error)) {
	b.urls = append(b.urls, url)
	if b.fail != nil {
		onError(b.fail)
	}
}

type fakeImage struct{ urls []string }

func (i *fakeImage) Send(url string) { i.urls = append(i.urls, url) }

type fakeClipboard struct {
	written  []string
	syncErr  error
	asyncErr error
}

func (c *fakeClipboard) WriteText(text string, done func(error)) error {
	if c.syncErr != nil {
		return c.syncErr
	}
	c.written = append(c.written, text)
	done(c.asyncErr)
	return nil
}

type fakeFallback struct {
	copied []string
	ok     bool
}

func (f *fakeFallback) CopyViaSelection(text string) bool {
	f.copied = append(f.copied, text)
	return f.ok
}

type fakeOpener struct{ urls []string }

func (o *fakeOpener) Open(url string) { o.urls = append(o.urls, url) }

type formatCall struct{ template, file, line, column string }

var token = location.Token{Path: "/src/App.vue", Line: 12, Column: 5, TagName: "div"}

func TestTrackCodeCopy(t *testing.T) {
	t.Run("copy enabled formats with string line and column", func(t *testing.T) {
		clip := &fakeClipboard{}
		beacon := &fakeBeacon{}
		d := dispatch.New(dispatch.Settings{Locate: true, Copy: true}, dispatch.Transports{Beacon: beacon, Clipboard: clip})

		var calls []formatCall
		d.Formatter = func(template, file, line, column string) string {
			calls = append(calls, formatCall{template, file, line, column})
			return dispatch.FormatOpenPath(template, file, line, column)
		}

		var got dispatch.Result
		require.NoError(t, d.TrackCode(token, dispatch.ActionCopy, func(r dispatch.Result) { got = r }))

		require.Len(t, calls, 1)
		assert.Equal(t, formatCall{"{file}:{line}:{column}", "/src/App.vue", "12", "5"}, calls[0])
		assert.Equal(t, []string{"/src/App.vue:12:5"}, clip.written)
		assert.Empty(t, beacon.urls)
		assert.True(t, got.OK)
		assert.Equal(t, dispatch.ActionCopy, got.Action)
	})

	t.Run("copy disabled falls back to locate without formatting", func(t *testing.T) {
		clip := &fakeClipboard{}
		beacon := &fakeBeacon{}
		d := dispatch.New(dispatch.Settings{Locate: true, BaseURL: "http://127.0.0.1:5678"}, dispatch.Transports{Beacon: beacon, Clipboard: clip})

		formatted := false
		d.Formatter = func(template, file, line, column string) string {
			formatted = true
			return ""
		}

		require.NoError(t, d.TrackCode(token, dispatch.ActionCopy, nil))
		assert.False(t, formatted)
		assert.Empty(t, clip.written)
		assert.Equal(t, []string{"http://127.0.0.1:5678/?file=%2Fsrc%2FApp.vue&line=12&column=5"}, beacon.urls)
	})

	t.Run("custom template", func(t *testing.T) {
		clip := &fakeClipboard{}
		d := dispatch.New(dispatch.Settings{Copy: true, CopyTemplate: "code -g {file}:{line}"}, dispatch.Transports{Clipboard: clip})
		require.NoError(t, d.TrackCode(token, "", nil))
		assert.Equal(t, []string{"code -g /src/App.vue:12"}, clip.written)
	})

	t.Run("synchronous clipboard failure uses the selection fallback", func(t *testing.T) {
		clip := &fakeClipboard{syncErr: errors.New("not allowed")}
		fb := &fakeFallback{ok: true}
		d := dispatch.New(dispatch.Settings{Copy: true}, dispatch.Transports{Clipboard: clip, Fallback: fb})

		var got dispatch.Result
		require.NoError(t, d.TrackCode(token, dispatch.ActionCopy, func(r dispatch.Result) { got = r }))
		assert.Equal(t, []string{"/src/App.vue:12:5"}, fb.copied)
		assert.True(t, got.OK)
	})

	t.Run("missing clipboard API uses the selection fallback", func(t *testing.T) {
		fb := &fakeFallback{ok: false}
		d := dispatch.New(dispatch.Settings{Copy: true}, dispatch.Transports{Fallback: fb})

		var got dispatch.Result
		require.NoError(t, d.TrackCode(token, dispatch.ActionCopy, func(r dispatch.Result) { got = r }))
		assert.Len(t, fb.copied, 1)
		assert.False(t, got.OK)
		assert.Error(t, got.Err)
	})

	t.Run("asynchronous rejection is reported", func(t *testing.T) {
		clip := &fakeClipboard{asyncErr: errors.New("denied")}
		fb := &fakeFallback{ok: true}
		d := dispatch.New(dispatch.Settings{Copy: true}, dispatch.Transports{Clipboard: clip, Fallback: fb})

		var got dispatch.Result
		require.NoError(t, d.TrackCode(token, dispatch.ActionCopy, func(r dispatch.Result) { got = r }))
		assert.False(t, got.OK)
		assert.ErrorContains(t, got.Err, "denied")
		assert.Empty(t, fb.copied)
	})
}

func TestTrackCodeLocate(t *testing.T) {
	t.Run("beacon failure switches to image beacons for the session", func(t *testing.T) {
		beacon := &fakeBeacon{fail: errors.New("blocked by CSP")}
		img := &fakeImage{}
		d := dispatch.New(dispatch.Settings{Locate: true, BaseURL: "http://localhost:5678/"}, dispatch.Transports{Beacon: beacon, Image: img})

		require.NoError(t, d.TrackCode(token, dispatch.ActionLocate, nil))
		assert.Len(t, beacon.urls, 1)
		assert.Len(t, img.urls, 1)
		assert.Equal(t, beacon.urls[0], img.urls[0])
		assert.True(t, d.UsingImageBeacon())

		require.NoError(t, d.TrackCode(token, dispatch.ActionLocate, nil))
		assert.Len(t, beacon.urls, 1, "XHR is not retried once the session switched")
		assert.Len(t, img.urls, 2)
	})

	t.Run("windows paths are query-escaped", func(t *testing.T) {
		tok := location.Token{Path: "C:/Users/x/file.ts", Line: 1, Column: 2, TagName: "a"}
		assert.Equal(t, "http://h/?file=C%3A%2FUsers%2Fx%2Ffile.ts&line=1&column=2", dispatch.BeaconURL("http://h", tok))
	})
}

func TestTrackCodeTarget(t *testing.T) {
	opener := &fakeOpener{}
	d := dispatch.New(dispatch.Settings{
		Target:        "https://git.example/blob/main/{file}#L{line}-{line}:{column}",
		DefaultAction: dispatch.ActionTarget,
	}, dispatch.Transports{Opener: opener})

	require.NoError(t, d.TrackCode(token, "", nil))
	assert.Equal(t, []string{"https://git.example/blob/main//src/App.vue#L12-12:5"}, opener.urls)
}

func TestTrackCodeDisabled(t *testing.T) {
	d := dispatch.New(dispatch.Settings{}, dispatch.Transports{})
	var got dispatch.Result
	err := d.TrackCode(token, dispatch.ActionLocate, func(r dispatch.Result) { got = r })
	assert.ErrorIs(t, err, dispatch.ErrActionDisabled)
	assert.ErrorIs(t, got.Err, dispatch.ErrActionDisabled)
}

func TestFormatOpenPath(t *testing.T) {
	got := dispatch.FormatOpenPath("{file} {file}:{line}:{column}/{line}", "a.ts", "3", "4")
	assert.Equal(t, "a.ts a.ts:3:4/3", got)
}

func TestSettings(t *testing.T) {
	tests := []struct {
		name      string
		settings  dispatch.Settings
		requested dispatch.Action
		want      dispatch.Action
	}{
		{"requested wins", dispatch.Settings{Locate: true, Copy: true}, dispatch.ActionCopy, dispatch.ActionCopy},
		{"default when none requested", dispatch.Settings{Locate: true, Copy: true, DefaultAction: dispatch.ActionCopy}, "", dispatch.ActionCopy},
		{"disabled default falls back to locate", dispatch.Settings{Locate: true, DefaultAction: dispatch.ActionTarget}, "", dispatch.ActionLocate},
		{"locate disabled falls back to copy", dispatch.Settings{Copy: true}, dispatch.ActionLocate, dispatch.ActionCopy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.settings.Resolve(tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	s := dispatch.Settings{Locate: true, Target: "x"}
	assert.Equal(t, []dispatch.Action{dispatch.ActionLocate, dispatch.ActionTarget}, s.EnabledActions())

	a, err := dispatch.ParseAction("COPY")
	require.NoError(t, err)
	assert.Equal(t, dispatch.ActionCopy, a)
	_, err = dispatch.ParseAction("paste")
	assert.Error(t, err)
}
