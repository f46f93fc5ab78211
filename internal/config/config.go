// Package config loads project settings for the tagger, the page runtime and
// the launch service.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/code-inspector/internal/dispatch"
	"bennypowers.dev/code-inspector/internal/inspector"
	"bennypowers.dev/code-inspector/internal/location"
	"github.com/mazznoer/csscolorparser"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// PackageJSONField is the package.json key holding configuration
const PackageJSONField = "codeInspector"

// configFiles are tried in order when package.json has no configuration
var configFiles = []string{
	".code-inspector.json",
	".code-inspector.jsonc",
	".code-inspector.yaml",
	".code-inspector.yml",
}

// Path types for tokens
const (
	PathAbsolute = "absolute"
	PathRelative = "relative"
)

// Config is the project configuration
type Config struct {
	Editor        string      `json:"editor,omitempty" yaml:"editor,omitempty"`
	Workspace     string      `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	HotKeys       []string    `json:"hotKeys,omitempty" yaml:"hotKeys,omitempty"`
	ModeKey       string      `json:"modeKey,omitempty" yaml:"modeKey,omitempty"`
	EscapeTags    []string    `json:"escapeTags,omitempty" yaml:"escapeTags,omitempty"`
	PathType      string      `json:"pathType,omitempty" yaml:"pathType,omitempty"`
	Copy          CopySetting `json:"copy,omitempty" yaml:"copy,omitempty"`
	Locate        *bool       `json:"locate,omitempty" yaml:"locate,omitempty"`
	Target        string      `json:"target,omitempty" yaml:"target,omitempty"`
	DefaultAction string      `json:"defaultAction,omitempty" yaml:"defaultAction,omitempty"`
	ShowSwitch    bool        `json:"showSwitch,omitempty" yaml:"showSwitch,omitempty"`
	HideConsole   bool        `json:"hideConsole,omitempty" yaml:"hideConsole,omitempty"`
	Port          int         `json:"port,omitempty" yaml:"port,omitempty"`
	Include       []string    `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude       []string    `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	CoverColor    string      `json:"coverColor,omitempty" yaml:"coverColor,omitempty"`
	// FrameworkAttribute names a second location attribute written by a
	// framework's own tooling, read when an element has no __location__
	FrameworkAttribute string `json:"frameworkAttribute,omitempty" yaml:"frameworkAttribute,omitempty"`

	// Source is the file the configuration was read from; empty for defaults
	Source string `json:"-" yaml:"-"`
}

// CopySetting is either a boolean or a copy template
type CopySetting struct {
	Enabled  bool
	Template string
}

// UnmarshalJSON accepts true, false, or a template string
func (c *CopySetting) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*c = CopySetting{Enabled: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: copy must be a boolean or a template string", ErrInvalidConfig)
	}
	*c = CopySetting{Enabled: s != "", Template: s}
	return nil
}

// MarshalJSON writes the template when set, else the boolean
func (c CopySetting) MarshalJSON() ([]byte, error) {
	if c.Template != "" {
		return json.Marshal(c.Template)
	}
	return json.Marshal(c.Enabled)
}

// UnmarshalYAML accepts true, false, or a template string
func (c *CopySetting) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: copy must be a boolean or a template string (line %d)", ErrInvalidConfig, node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*c = CopySetting{Enabled: b}
		return nil
	}
	*c = CopySetting{Enabled: node.Value != "", Template: node.Value}
	return nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	locate := true
	return &Config{
		HotKeys:  []string{string(inspector.Shift), string(inspector.Alt)},
		ModeKey:  "z",
		PathType: PathAbsolute,
		Copy:     CopySetting{Enabled: true},
		Locate:   &locate,
	}
}

// Load reads configuration for a project root: the package.json field first,
// then the first .code-inspector.* file. Missing configuration yields Default.
func Load(root string) (*Config, error) {
	cfg := Default()
	if root == "" {
		return cfg, nil
	}

	raw, source, err := readPackageJSON(root)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s field %q: %w", source, PackageJSONField, err)
		}
		cfg.Source = source
		return cfg, cfg.Validate()
	}

	for _, name := range configFiles {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path) //nolint:gosec // G304: project configuration in a local trusted workspace
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := decode(name, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		cfg.Source = path
		return cfg, cfg.Validate()
	}
	return cfg, nil
}

func decode(name string, data []byte, cfg *Config) error {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
}

// readPackageJSON returns the raw JSON of the configuration field, or nil when absent
func readPackageJSON(root string) ([]byte, string, error) {
	path := filepath.Join(root, "package.json")
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading workspace package.json
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return nil, "", fmt.Errorf("failed to parse package.json: %w", err)
	}
	raw, ok := pkg[PackageJSONField]
	if !ok {
		return nil, "", nil
	}
	if trimmed := strings.TrimSpace(string(raw)); !strings.HasPrefix(trimmed, "{") {
		return nil, "", fmt.Errorf("%w: %s must be an object", ErrInvalidConfig, PackageJSONField)
	}
	return raw, path, nil
}

// Validate checks enumerations and normalizes coverColor to hex
func (c *Config) Validate() error {
	var errs []error
	switch c.PathType {
	case "", PathAbsolute, PathRelative:
	default:
		errs = append(errs, fmt.Errorf("%w: pathType %q (want %s or %s)", ErrInvalidConfig, c.PathType, PathAbsolute, PathRelative))
	}
	if _, err := dispatch.ParseAction(c.DefaultAction); err != nil {
		errs = append(errs, fmt.Errorf("%w: defaultAction: %v", ErrInvalidConfig, err))
	}
	if _, err := c.Modifiers(); err != nil {
		errs = append(errs, fmt.Errorf("%w: hotKeys: %v", ErrInvalidConfig, err))
	}
	if _, err := location.NewMatcher(c.EscapeTags...); err != nil {
		errs = append(errs, fmt.Errorf("%w: escapeTags: %v", ErrInvalidConfig, err))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port))
	}
	if c.CoverColor != "" {
		color, err := csscolorparser.Parse(c.CoverColor)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: coverColor %q: %v", ErrInvalidConfig, c.CoverColor, err))
		} else {
			c.CoverColor = color.HexString()
		}
	}
	return errors.Join(errs...)
}

// RelativePaths reports whether tokens carry project-relative paths
func (c *Config) RelativePaths() bool {
	return c.PathType == PathRelative
}

// Modifiers converts HotKeys
func (c *Config) Modifiers() ([]inspector.Modifier, error) {
	mods := make([]inspector.Modifier, 0, len(c.HotKeys))
	for _, k := range c.HotKeys {
		m, err := inspector.ParseModifier(k)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// Matcher returns the default escape tags extended with EscapeTags
func (c *Config) Matcher() (*location.Matcher, error) {
	return location.DefaultMatcher().Extend(c.EscapeTags...)
}

// DispatchSettings builds the page dispatcher's settings for a launch service URL
func (c *Config) DispatchSettings(baseURL string) dispatch.Settings {
	action, _ := dispatch.ParseAction(c.DefaultAction)
	return dispatch.Settings{
		Locate:        c.Locate == nil || *c.Locate,
		Copy:          c.Copy.Enabled,
		CopyTemplate:  c.Copy.Template,
		Target:        c.Target,
		DefaultAction: action,
		BaseURL:       baseURL,
	}
}

// InspectorOptions builds the page runtime options
func (c *Config) InspectorOptions(baseURL string) inspector.Options {
	mods, _ := c.Modifiers()
	opts := inspector.Options{
		HotKeys:    inspector.NewHotKeys(mods...),
		ModeKey:    c.ModeKey,
		Settings:   c.DispatchSettings(baseURL),
		ShowSwitch: c.ShowSwitch,
		CoverColor: c.CoverColor,
	}
	if c.FrameworkAttribute != "" && c.FrameworkAttribute != location.AttributeName {
		opts.Framework = inspector.AttributeLocator(c.FrameworkAttribute)
	}
	return opts
}
