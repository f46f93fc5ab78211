package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/code-inspector/internal/config"
	"bennypowers.dev/code-inspector/internal/log"
	"bennypowers.dev/code-inspector/internal/tagger"
	"github.com/spf13/cobra"
)

var (
	tagRoot        string
	tagOut         string
	tagDialect     string
	tagInclude     []string
	tagExclude     []string
	tagRelative    bool
	tagNoGitignore bool
	tagWorkers     int
	tagStdin       bool
	tagPath        string
)

var tagCmd = &cobra.Command{
	Use:   "tag [files...]",
	Short: "Add __location__ attributes to template source",
	Long: `Tag every element opening in JSX, html templates, Vue and Pug sources
with a __location__ attribute naming its file, line and column.

With no files, every eligible file under --root is tagged, honoring .gitignore
and the include/exclude globs. Tagged files are written under --out with the
same relative layout, or to stdout when --out is empty.

With --stdin, one source is read from stdin, tagged as --path, and written to
stdout. This is the form build tools call.`,
	RunE: runTag,
}

func init() {
	tagCmd.Flags().StringVar(&tagRoot, "root", ".", "Project root to search and to make paths relative to")
	tagCmd.Flags().StringVarP(&tagOut, "out", "o", "", "Output directory (default: stdout)")
	tagCmd.Flags().StringVar(&tagDialect, "dialect", "", "Dialect for --stdin: jsx, vue, pug (default: from --path)")
	tagCmd.Flags().StringSliceVar(&tagInclude, "include", nil, "Include glob patterns relative to root (default from config)")
	tagCmd.Flags().StringSliceVar(&tagExclude, "exclude", nil, "Exclude glob patterns relative to root")
	tagCmd.Flags().BoolVar(&tagRelative, "relative", false, "Embed root-relative paths")
	tagCmd.Flags().BoolVar(&tagNoGitignore, "no-gitignore", false, "Do not honor .gitignore")
	tagCmd.Flags().IntVar(&tagWorkers, "workers", 0, "Concurrent workers (default: number of CPUs)")
	tagCmd.Flags().BoolVar(&tagStdin, "stdin", false, "Read one source from stdin")
	tagCmd.Flags().StringVar(&tagPath, "path", "", "File path embedded in tokens for --stdin")
}

func newTagger(root string, cfg *config.Config) (*tagger.Tagger, error) {
	escape, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}
	return tagger.New(tagger.Options{
		Escape:        escape,
		Root:          root,
		RelativePaths: tagRelative || cfg.RelativePaths(),
	})
}

func runTag(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(tagRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	t, err := newTagger(root, cfg)
	if err != nil {
		return err
	}

	if tagStdin {
		return tagStream(t, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return err
		}
		files = append(files, abs)
	}
	if len(files) == 0 {
		include := tagInclude
		if len(include) == 0 {
			include = cfg.Include
		}
		files, err = tagger.Discover(ctx, tagger.DiscoverOptions{
			Root:        root,
			Include:     include,
			Exclude:     append(append([]string{}, cfg.Exclude...), tagExclude...),
			NoGitignore: tagNoGitignore,
		})
		if err != nil {
			return err
		}
	}

	var tagged, added, failed int
	out := cmd.OutOrStdout()
	err = t.TagFiles(ctx, files, tagWorkers, func(r tagger.FileResult) error {
		if r.Err != nil {
			failed++
		} else if r.Changed() {
			tagged++
			added += r.Added
		}
		return emit(root, out, r)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "tagged %d of %d files (%d elements, %d skipped)\n", tagged, len(files), added, failed)
	return nil
}

// tagStream tags a single source read from r
func tagStream(t *tagger.Tagger, r io.Reader, w io.Writer) error {
	if tagPath == "" {
		return fmt.Errorf("--path is required with --stdin")
	}
	dialect := tagger.DialectAuto
	if tagDialect != "" {
		d, err := tagger.ParseDialect(tagDialect)
		if err != nil {
			return err
		}
		dialect = d
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	out, _, err := t.TagWithError(string(src), tagPath, dialect)
	if err != nil {
		log.Debug("%v", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// emit writes one result under tagOut, or to w with a header when tagOut is empty.
// Files that failed to tag are written unchanged.
func emit(root string, w io.Writer, r tagger.FileResult) error {
	if tagOut == "" {
		_, err := fmt.Fprintf(w, "==> %s <==\n%s\n", r.Path, r.Content)
		return err
	}
	if r.Content == "" && r.Err != nil {
		// unreadable; nothing to copy
		return nil
	}
	rel, err := filepath.Rel(root, r.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(r.Path)
	}
	dest := filepath.Join(tagOut, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, []byte(r.Content), 0o644); err != nil { //nolint:gosec // G306: generated source, not secrets
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
