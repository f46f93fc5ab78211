package tagger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/code-inspector/internal/log"
	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// DefaultInclude matches every file extension the tagger has a dialect for
var DefaultInclude = []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts,vue,pug,jade}"}

// DiscoverOptions controls which files under Root are tagged in a batch
type DiscoverOptions struct {
	// Root directory to search from
	Root string
	// Include holds doublestar patterns relative to Root. Default: DefaultInclude
	Include []string
	// Exclude holds doublestar patterns relative to Root
	Exclude []string
	// NoGitignore disables honoring Root/.gitignore
	NoGitignore bool
}

// shouldSkipDirectory checks if a directory should be skipped during file discovery.
// Skips hidden directories and common build or dependency directories.
func shouldSkipDirectory(d os.DirEntry) bool {
	if !d.IsDir() {
		return false
	}
	if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
		return true
	}
	skipDirs := []string{"node_modules", "dist", "build"}
	return slices.Contains(skipDirs, d.Name())
}

// matchGlobPattern matches a glob pattern against a path using doublestar
func matchGlobPattern(pattern, path string) (bool, error) {
	return doublestar.Match(pattern, filepath.ToSlash(path))
}

func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := matchGlobPattern(pattern, relPath)
		if err != nil {
			log.Warn("invalid glob pattern %q: %v", pattern, err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Discover walks Root and returns the files to tag, in walk order
func Discover(ctx context.Context, opts DiscoverOptions) ([]string, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	var ignore *gitignore.GitIgnore
	if !opts.NoGitignore {
		gitignorePath := filepath.Join(opts.Root, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			ignore, err = gitignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				log.Warn("ignoring unreadable %s: %v", gitignorePath, err)
			}
		}
	}

	var files []string
	err := filepath.WalkDir(opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != opts.Root && shouldSkipDirectory(d) {
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(opts.Root, path)
		if err != nil {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(relPath) {
			return nil
		}
		if _, ok := DetectDialect(path); !ok {
			return nil
		}
		if matchesAny(relPath, include) && !matchesAny(relPath, opts.Exclude) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}

// FileResult is the outcome of tagging one file in a batch
type FileResult struct {
	Path string
	// Content is the tagged source, or the original when Err is set
	Content string
	// Added counts the attributes inserted
	Added int
	// Err is the parse or read failure; failures never stop the batch
	Err error
}

// Changed reports whether tagging altered the file
func (r FileResult) Changed() bool {
	return r.Err == nil && r.Added > 0
}

// TagFiles tags files concurrently with at most limit workers (NumCPU when <= 0).
// sink is called once per file, serially; a sink error cancels the batch.
func (t *Tagger) TagFiles(ctx context.Context, files []string, limit int, sink func(FileResult) error) error {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	var mu sync.Mutex
	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result := t.tagFile(path)
			if result.Err != nil {
				log.Debug("skipping %s: %v", path, result.Err)
			}
			mu.Lock()
			defer mu.Unlock()
			return sink(result)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	// Propagate cancellation the workers finished before noticing
	return origCtx.Err()
}

func (t *Tagger) tagFile(path string) FileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("failed to read file %s: %w", path, err)}
	}
	src := string(content)
	out, added, err := t.TagWithError(src, path, DialectAuto)
	return FileResult{Path: path, Content: out, Added: added, Err: err}
}
