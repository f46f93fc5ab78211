package editor

import (
	"path"
	"slices"
	"strings"
)

// Args placeholders
const (
	PlaceholderFile      = "{file}"
	PlaceholderLine      = "{line}"
	PlaceholderColumn    = "{column}"
	PlaceholderWorkspace = "{workspace}"
)

// EditorRecord describes how to find and start one editor on one platform
type EditorRecord struct {
	// ID is the name users configure, e.g. "code", "webstorm"
	ID string
	// ProcessNames are matched against running process paths to detect the editor
	ProcessNames []string
	// Binary is the command that opens files
	Binary string
	// Args is the argument template
	Args []string
	// WorkspaceArgs is used instead of Args when a workspace is configured
	WorkspaceArgs []string
}

var (
	gotoArgs          = []string{"-g", "{file}:{line}:{column}"}
	gotoWorkspaceArgs = []string{"{workspace}", "-g", "{file}:{line}:{column}"}
	colonArgs         = []string{"{file}:{line}:{column}"}
	jetbrainsArgs     = []string{"--line", "{line}", "--column", "{column}", "{file}"}
	vimArgs           = []string{"+call cursor({line}, {column})", "{file}"}
	emacsArgs         = []string{"+{line}:{column}", "{file}"}
	notepadArgs       = []string{"-n{line}", "-c{column}", "{file}"}
)

// vscodeFamily builds records for editors that share the VS Code command line
func vscodeFamily(id, binary string, processNames ...string) EditorRecord {
	return EditorRecord{
		ID:            id,
		ProcessNames:  processNames,
		Binary:        binary,
		Args:          gotoArgs,
		WorkspaceArgs: gotoWorkspaceArgs,
	}
}

func jetbrains(id, binary string, processNames ...string) EditorRecord {
	return EditorRecord{ID: id, ProcessNames: processNames, Binary: binary, Args: jetbrainsArgs}
}

// terminal editors are never probed; running instances are not the user's GUI editor
var terminalEditors = []EditorRecord{
	{ID: "vim", Binary: "vim", Args: vimArgs},
	{ID: "nvim", Binary: "nvim", Args: vimArgs},
	{ID: "emacs", Binary: "emacs", Args: emacsArgs},
}

var platformEditors = map[string][]EditorRecord{
	"darwin": {
		vscodeFamily("code", "code", "Visual Studio Code.app/Contents/MacOS/Electron", "Visual Studio Code.app/Contents/MacOS/Code"),
		vscodeFamily("code-insiders", "code-insiders", "Visual Studio Code - Insiders.app/Contents/MacOS/Electron"),
		vscodeFamily("cursor", "cursor", "Cursor.app/Contents/MacOS/Cursor"),
		vscodeFamily("windsurf", "windsurf", "Windsurf.app/Contents/MacOS/Electron"),
		vscodeFamily("codium", "codium", "VSCodium.app/Contents/MacOS/Electron"),
		jetbrains("webstorm", "webstorm", "WebStorm.app/Contents/MacOS/webstorm"),
		jetbrains("idea", "idea", "IntelliJ IDEA.app/Contents/MacOS/idea"),
		jetbrains("phpstorm", "phpstorm", "PhpStorm.app/Contents/MacOS/phpstorm"),
		jetbrains("pycharm", "pycharm", "PyCharm.app/Contents/MacOS/pycharm"),
		jetbrains("goland", "goland", "GoLand.app/Contents/MacOS/goland"),
		{ID: "sublime", ProcessNames: []string{"Sublime Text.app/Contents/MacOS/sublime_text"}, Binary: "subl", Args: colonArgs},
		{ID: "zed", ProcessNames: []string{"Zed.app/Contents/MacOS/zed"}, Binary: "zed", Args: colonArgs},
	},
	"linux": {
		vscodeFamily("code", "code", "code", "code-oss"),
		vscodeFamily("code-insiders", "code-insiders", "code-insiders"),
		vscodeFamily("cursor", "cursor", "cursor"),
		vscodeFamily("windsurf", "windsurf", "windsurf"),
		vscodeFamily("codium", "codium", "codium", "vscodium"),
		jetbrains("webstorm", "webstorm", "webstorm.sh"),
		jetbrains("idea", "idea", "idea.sh"),
		jetbrains("phpstorm", "phpstorm", "phpstorm.sh"),
		jetbrains("pycharm", "pycharm", "pycharm.sh"),
		jetbrains("goland", "goland", "goland.sh"),
		{ID: "sublime", ProcessNames: []string{"sublime_text"}, Binary: "subl", Args: colonArgs},
		{ID: "zed", ProcessNames: []string{"zed", "zed-editor"}, Binary: "zed", Args: colonArgs},
	},
	"windows": {
		vscodeFamily("code", "code", "Code.exe"),
		vscodeFamily("code-insiders", "code-insiders", "Code - Insiders.exe"),
		vscodeFamily("cursor", "cursor", "Cursor.exe"),
		vscodeFamily("windsurf", "windsurf", "Windsurf.exe"),
		vscodeFamily("codium", "codium", "VSCodium.exe"),
		jetbrains("webstorm", "webstorm64.exe", "webstorm64.exe"),
		jetbrains("idea", "idea64.exe", "idea64.exe"),
		jetbrains("phpstorm", "phpstorm64.exe", "phpstorm64.exe"),
		jetbrains("pycharm", "pycharm64.exe", "pycharm64.exe"),
		jetbrains("goland", "goland64.exe", "goland64.exe"),
		{ID: "sublime", ProcessNames: []string{"sublime_text.exe"}, Binary: "subl", Args: colonArgs},
		{ID: "notepad++", ProcessNames: []string{"notepad++.exe"}, Binary: "notepad++", Args: notepadArgs},
	},
}

// DefaultEditor is used when nothing is configured or detected
const DefaultEditor = "code"

// Editors returns the probed editor table for a platform followed by the
// terminal editors, which are only used when configured.
func Editors(goos string) []EditorRecord {
	return append(slices.Clone(platformEditors[goos]), terminalEditors...)
}

// Lookup finds a record by ID, or by binary name (with or without a directory
// or .exe suffix).
func Lookup(goos, name string) (EditorRecord, bool) {
	if name == "" {
		return EditorRecord{}, false
	}
	base := strings.TrimSuffix(strings.ToLower(path.Base(strings.ReplaceAll(name, `\`, "/"))), ".exe")
	for _, r := range Editors(goos) {
		if strings.EqualFold(r.ID, name) || strings.EqualFold(r.ID, base) ||
			strings.TrimSuffix(strings.ToLower(r.Binary), ".exe") == base {
			return r, true
		}
	}
	return EditorRecord{}, false
}

// matchProcess reports whether a running process path belongs to the record
func (r EditorRecord) matchProcess(proc string) bool {
	proc = strings.ReplaceAll(strings.TrimSpace(proc), `\`, "/")
	for _, name := range r.ProcessNames {
		if strings.EqualFold(proc, name) || strings.HasSuffix(strings.ToLower(proc), "/"+strings.ToLower(name)) {
			return true
		}
	}
	return false
}
