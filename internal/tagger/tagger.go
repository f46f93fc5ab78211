// Package tagger rewrites template source so that every element opening carries
// a __location__ attribute naming where it was authored.
package tagger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"bennypowers.dev/code-inspector/internal/location"
	"bennypowers.dev/code-inspector/internal/log"
	"bennypowers.dev/code-inspector/internal/parser/pug"
	"bennypowers.dev/code-inspector/internal/pathutil"
	"bennypowers.dev/code-inspector/internal/position"
	"bennypowers.dev/code-inspector/internal/splice"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of transpiled indentation blocks kept in memory
const DefaultCacheSize = 256

// Options configures a Tagger
type Options struct {
	// Escape lists tags that never receive a location. Nil means location.DefaultMatcher().
	Escape *location.Matcher
	// Root is the project root used for relative token paths
	Root string
	// RelativePaths embeds root-relative paths instead of absolute ones
	RelativePaths bool
	// CacheSize bounds the transpiled-block cache; zero means DefaultCacheSize
	CacheSize int
}

// Tagger tags source files. It is safe for concurrent use.
type Tagger struct {
	escape        *location.Matcher
	root          string
	relativePaths bool
	transpiled    *lru.Cache[string, *pug.Result]
}

// New creates a Tagger
func New(opts Options) (*Tagger, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *pug.Result](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create transpile cache: %w", err)
	}
	escape := opts.Escape
	if escape == nil {
		escape = location.DefaultMatcher()
	}
	return &Tagger{
		escape:        escape,
		root:          opts.Root,
		relativePaths: opts.RelativePaths,
		transpiled:    cache,
	}, nil
}

var (
	defaultOnce   sync.Once
	defaultTagger *Tagger
)

func shared() *Tagger {
	defaultOnce.Do(func() {
		t, err := New(Options{})
		if err != nil {
			panic(err)
		}
		defaultTagger = t
	})
	return defaultTagger
}

// Tag returns content with location attributes inserted, using escape as the
// set of skipped tags. On any parse failure the original content is returned.
func Tag(content, filePath string, dialect Dialect, escape *location.Matcher) string {
	if escape == nil {
		escape = location.DefaultMatcher()
	}
	out, _, err := shared().tag(content, filePath, dialect, escape)
	if err != nil {
		log.Debug("%v", err)
		return content
	}
	return out
}

// Tag returns content with location attributes inserted. On any parse failure
// the original content is returned unchanged.
func (t *Tagger) Tag(content, filePath string, dialect Dialect) string {
	out, _, err := t.TagWithError(content, filePath, dialect)
	if err != nil {
		log.Debug("%v", err)
		return content
	}
	return out
}

// TagWithError is Tag but reports the failure and the number of attributes added.
// On error the returned content is the original.
func (t *Tagger) TagWithError(content, filePath string, dialect Dialect) (string, int, error) {
	return t.tag(content, filePath, dialect, t.escape)
}

func (t *Tagger) tag(content, filePath string, dialect Dialect, escape *location.Matcher) (string, int, error) {
	if dialect == DialectAuto {
		d, ok := DetectDialect(filePath)
		if !ok {
			return content, 0, NewParseError(filePath, dialect, fmt.Errorf("%w: extension %q", ErrUnsupported, filepath.Ext(filePath)))
		}
		dialect = d
	}

	job := &job{
		tagger:    t,
		content:   content,
		filePath:  filePath,
		tokenPath: pathutil.ForToken(filePath, t.root, t.relativePaths),
		escape:    escape,
		lines:     position.NewLineIndex(content),
		buf:       splice.New(content),
	}

	var err error
	switch dialect {
	case EmbeddedMarkup:
		err = job.script()
	case SFCTemplate:
		err = job.sfc()
	case Indentation:
		err = job.indentation(content, 0, job.buf)
	default:
		err = fmt.Errorf("%w: dialect %s", ErrUnsupported, dialect)
	}
	if err != nil {
		if !errors.Is(err, ErrParse) {
			err = NewParseError(filePath, dialect, err)
		}
		return content, 0, err
	}
	return job.buf.String(), job.added, nil
}

// job carries the state of tagging a single file
type job struct {
	tagger    *Tagger
	content   string
	filePath  string
	tokenPath string
	escape    *location.Matcher
	lines     *position.LineIndex
	buf       *splice.Buffer
	added     int
}

// site builds a location.Site whose line and column are computed against the
// whole file from the absolute byte offset of the element opening.
func (j *job) site(tagName string, start, insertAt int, tagged bool) location.Site {
	line, col := j.lines.Position(start)
	return location.Site{
		TagName:  tagName,
		InsertAt: insertAt,
		Line:     line + 1,
		Column:   col + 1,
		Tagged:   tagged,
	}
}

func (j *job) attach(ins location.Inserter, site location.Site, syntax location.Syntax) error {
	ok, err := location.Attach(ins, j.tokenPath, site, j.escape, syntax)
	if err != nil {
		return err
	}
	if ok {
		j.added++
	}
	return nil
}

// fingerprint keys the transpile cache by path and block content
func fingerprint(filePath, text string) string {
	sum := sha256.Sum256([]byte(text))
	return filePath + "\x00" + hex.EncodeToString(sum[:])
}

func (t *Tagger) transpile(filePath, text string) (*pug.Result, error) {
	key := fingerprint(filePath, text)
	if res, ok := t.transpiled.Get(key); ok {
		return res, nil
	}
	res, err := pug.Transpile(text)
	if err != nil {
		return nil, err
	}
	t.transpiled.Add(key, res)
	return res, nil
}

// CachedBlocks returns the number of transpiled blocks currently cached
func (t *Tagger) CachedBlocks() int {
	return t.transpiled.Len()
}

func hasName(src string, nameEnd int, name string) bool {
	return nameEnd <= len(src) && nameEnd >= len(name) && strings.EqualFold(src[nameEnd-len(name):nameEnd], name)
}
