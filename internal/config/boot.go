package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
)

// DefaultPort is the launch service port when none is configured
const DefaultPort = 5678

// Boot is what the page runtime starts with: the launch service URL and the
// project configuration, serialized by the build integration
type Boot struct {
	URL    string
	Config *Config
}

// ParseBoot decodes and validates a boot document of the form
// {"url": "...", "config": {...}}. Absent fields keep their defaults.
func ParseBoot(data []byte) (*Boot, error) {
	var doc struct {
		URL    string          `json:"url"`
		Config json.RawMessage `json:"config"`
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse boot document: %w", err)
		}
	}

	cfg := Default()
	if len(doc.Config) > 0 && string(doc.Config) != "null" {
		if err := json.Unmarshal(doc.Config, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse boot config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	url := strings.TrimRight(doc.URL, "/")
	if url == "" {
		port := cfg.Port
		if port == 0 {
			port = DefaultPort
		}
		url = fmt.Sprintf("http://127.0.0.1:%d", port)
	}
	return &Boot{URL: url, Config: cfg}, nil
}
