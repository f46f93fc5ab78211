// Package editor resolves the user's editor and opens a file at a line and
// column in it.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"bennypowers.dev/code-inspector/internal/log"
	"bennypowers.dev/code-inspector/internal/pathutil"
	"github.com/joho/godotenv"
)

var (
	// ErrEditorNotFound indicates the editor binary is not installed or not on PATH
	ErrEditorNotFound = errors.New("editor not found")
	// ErrUnknownEditor indicates a configured editor missing from the platform table
	ErrUnknownEditor = errors.New("unknown editor")
	// ErrInvalidRequest indicates a request without a file
	ErrInvalidRequest = errors.New("invalid launch request")
)

// EnvVar names the environment variable that selects the editor
const EnvVar = "CODE_EDITOR"

// EnvFile is read for EnvVar when the environment does not set it
const EnvFile = ".env.local"

// Source records where an editor choice came from
type Source string

const (
	SourceOption  Source = "option"
	SourceEnv     Source = "env"
	SourceEnvFile Source = "env-file"
	SourceProcess Source = "process"
	SourceDefault Source = "default"
)

// Request is one location to open
type Request struct {
	File   string
	Line   int
	Column int
	// Editor overrides the launcher's configured editor
	Editor string
	// Workspace overrides the launcher's configured workspace
	Workspace string
}

// Choice is a resolved editor
type Choice struct {
	Record EditorRecord
	Source Source
	// Extra holds arguments given alongside the binary in CODE_EDITOR
	Extra []string
}

// Command is what gets spawned
type Command struct {
	Binary string
	Args   []string
}

// String renders the command for logs
func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}

// Launcher opens locations in an editor. It holds no mutable state, so
// concurrent launches spawn independent processes.
type Launcher struct {
	GOOS string
	// Root resolves relative paths and locates EnvFile
	Root      string
	Editor    string
	Workspace string
	Getenv    func(string) string
	Processes ProcessLister
	Spawner   Spawner
}

// NewLauncher creates a Launcher for the current platform
func NewLauncher(root, editor, workspace string) *Launcher {
	return &Launcher{
		GOOS:      runtime.GOOS,
		Root:      root,
		Editor:    editor,
		Workspace: workspace,
		Getenv:    os.Getenv,
		Processes: SystemProcessLister{GOOS: runtime.GOOS},
		Spawner:   ExecSpawner{},
	}
}

// Resolve picks the editor: explicit name, CODE_EDITOR from the environment,
// then from EnvFile, then a running editor process, then DefaultEditor.
// Probe failures are logged and fall through to the default.
func (l *Launcher) Resolve(ctx context.Context, explicit string) Choice {
	if explicit == "" {
		explicit = l.Editor
	}
	if explicit != "" {
		return l.named(explicit, SourceOption)
	}
	if l.Getenv != nil {
		if v := strings.TrimSpace(l.Getenv(EnvVar)); v != "" {
			return l.named(v, SourceEnv)
		}
	}
	if v := l.envFileEditor(); v != "" {
		return l.named(v, SourceEnvFile)
	}
	if r, ok := l.probe(ctx); ok {
		return Choice{Record: r, Source: SourceProcess}
	}
	r, _ := Lookup(l.GOOS, DefaultEditor)
	return Choice{Record: r, Source: SourceDefault}
}

func (l *Launcher) named(value string, source Source) Choice {
	value = strings.TrimSpace(value)
	if r, ok := Lookup(l.GOOS, value); ok {
		if !strings.EqualFold(value, r.ID) {
			r.Binary = value
		}
		return Choice{Record: r, Source: source}
	}

	fields := strings.Fields(value)
	if len(fields) == 0 {
		r, _ := Lookup(l.GOOS, DefaultEditor)
		return Choice{Record: r, Source: SourceDefault}
	}
	name, extra := fields[0], fields[1:]
	if r, ok := Lookup(l.GOOS, name); ok {
		if !strings.EqualFold(name, r.ID) {
			// a path or binary was configured; keep it but use the record's args
			r.Binary = name
		}
		return Choice{Record: r, Source: source, Extra: extra}
	}
	log.Debug("%v %q: passing file:line:column", ErrUnknownEditor, name)
	return Choice{
		Record: EditorRecord{ID: name, Binary: name, Args: colonArgs},
		Source: source,
		Extra:  extra,
	}
}

func (l *Launcher) envFileEditor() string {
	if l.Root == "" {
		return ""
	}
	env, err := godotenv.Read(filepath.Join(l.Root, EnvFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(env[EnvVar])
}

func (l *Launcher) probe(ctx context.Context) (EditorRecord, bool) {
	if l.Processes == nil {
		return EditorRecord{}, false
	}
	procs, err := l.Processes.ListProcessNames(ctx)
	if err != nil {
		log.Warn("editor detection failed, using %s: %v", DefaultEditor, err)
		return EditorRecord{}, false
	}
	for _, r := range platformEditors[l.GOOS] {
		for _, p := range procs {
			if r.matchProcess(p) {
				return r, true
			}
		}
	}
	return EditorRecord{}, false
}

// Command builds the command line for req with the chosen editor
func (l *Launcher) Command(choice Choice, req Request) Command {
	workspace := req.Workspace
	if workspace == "" {
		workspace = l.Workspace
	}
	template := choice.Record.Args
	if workspace != "" && len(choice.Record.WorkspaceArgs) > 0 {
		template = choice.Record.WorkspaceArgs
	}

	file := pathutil.Resolve(req.File, l.Root)
	r := strings.NewReplacer(
		PlaceholderFile, file,
		PlaceholderLine, strconv.Itoa(max(req.Line, 1)),
		PlaceholderColumn, strconv.Itoa(max(req.Column, 1)),
		PlaceholderWorkspace, workspace,
	)
	args := append([]string{}, choice.Extra...)
	for _, a := range template {
		args = append(args, r.Replace(a))
	}
	return Command{Binary: choice.Record.Binary, Args: args}
}

// Launch resolves the editor and spawns it without waiting. Errors are logged
// and returned; none of them are fatal to the caller.
func (l *Launcher) Launch(ctx context.Context, req Request) (Command, error) {
	if req.File == "" {
		return Command{}, fmt.Errorf("%w: file is required", ErrInvalidRequest)
	}
	choice := l.Resolve(ctx, req.Editor)
	cmd := l.Command(choice, req)

	if l.Spawner == nil {
		return cmd, fmt.Errorf("%w: no spawner", ErrEditorNotFound)
	}
	if err := l.Spawner.SpawnDetached(cmd.Binary, cmd.Args); err != nil {
		log.Error("could not open %s (%s via %s): %v", req.File, choice.Record.ID, choice.Source, err)
		return cmd, err
	}
	log.Info("opened %s:%d:%d in %s", req.File, req.Line, req.Column, choice.Record.ID)
	return cmd, nil
}
