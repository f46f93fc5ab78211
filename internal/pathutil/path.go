// Package pathutil normalizes file paths as they travel between the tagger,
// the page, and the editor launch service.
package pathutil

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ToSlash converts a path to forward slashes regardless of host OS.
// Tokens always carry forward slashes so that a token produced on Windows
// decodes the same way in the browser.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// FromFileURI strips a file:// scheme, percent-decoding the remainder.
// Inputs without the scheme are returned with slashes normalized.
//   - file:///C:/Foo%20Bar -> C:/Foo Bar
//   - file:///home/user/a.vue -> /home/user/a.vue
func FromFileURI(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ToSlash(uri)
	}

	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		p := strings.TrimPrefix(uri, "file://")
		return trimDriveSlash(ToSlash(p))
	}

	p := parsed.Path
	if parsed.Host != "" {
		// UNC: file://server/share/x -> //server/share/x
		p = "//" + parsed.Host + p
	}
	return trimDriveSlash(p)
}

// trimDriveSlash turns /C:/proj into C:/proj
func trimDriveSlash(p string) string {
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		return p[1:]
	}
	return p
}

// IsAbs reports whether p is absolute on any supported platform:
// POSIX roots, Windows drive letters and UNC shares all count.
func IsAbs(p string) bool {
	p = ToSlash(p)
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/'
}

// ForToken renders the path embedded in a location token. When relative is set and
// the file lives under root, the root-relative form is returned.
func ForToken(filePath, root string, relative bool) string {
	p := FromFileURI(filePath)
	if !relative || root == "" {
		return p
	}
	r := strings.TrimSuffix(ToSlash(root), "/")
	if strings.HasPrefix(p, r+"/") {
		return strings.TrimPrefix(p, r+"/")
	}
	return p
}

// Resolve turns a path received from the page into an OS path for the editor.
// Relative paths are joined onto root.
func Resolve(p, root string) string {
	p = FromFileURI(p)
	if !IsAbs(p) && root != "" {
		p = path.Join(ToSlash(root), p)
	}
	return filepath.FromSlash(p)
}
