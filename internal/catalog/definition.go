package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Definition describes a prompt declared in a catalog file.
type Definition struct {
	Name        string  `json:"name" yaml:"name" toml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	UI          string  `json:"ui,omitempty" yaml:"ui,omitempty" toml:"ui,omitempty"`
	Placeholder string  `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
	Hint        string  `json:"hint,omitempty" yaml:"hint,omitempty" toml:"hint,omitempty"`
	Input       string  `json:"input,omitempty" yaml:"input,omitempty" toml:"input,omitempty"`
	ClassName   string  `json:"className,omitempty" yaml:"className,omitempty" toml:"className,omitempty"`
	IgnoreBlur  bool    `json:"ignoreBlur,omitempty" yaml:"ignoreBlur,omitempty" toml:"ignoreBlur,omitempty"`
	Secret      bool    `json:"secret,omitempty" yaml:"secret,omitempty" toml:"secret,omitempty"`
	Strict      *bool   `json:"strict,omitempty" yaml:"strict,omitempty" toml:"strict,omitempty"`
	Tab         string  `json:"tab,omitempty" yaml:"tab,omitempty" toml:"tab,omitempty"`
	Panel       string  `json:"panel,omitempty" yaml:"panel,omitempty" toml:"panel,omitempty"` // markdown
	Choices     []Item  `json:"choices,omitempty" yaml:"choices,omitempty" toml:"choices,omitempty"`
	Tabs        []Tab   `json:"tabs,omitempty" yaml:"tabs,omitempty" toml:"tabs,omitempty"`
	Docs        string  `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`       // docs.json dir used for previews
	Script      string  `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty"` // path relative to the definition

	path       string
	scriptPath string
	source     string
}

// Item is a static choice. Preview is markdown.
type Item struct {
	Name        string      `json:"name" yaml:"name" toml:"name"`
	Value       interface{} `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	ClassName   string      `json:"className,omitempty" yaml:"className,omitempty" toml:"className,omitempty"`
	Preview     string      `json:"preview,omitempty" yaml:"preview,omitempty" toml:"preview,omitempty"`
}

// Tab is a named alternate choice list.
type Tab struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Panel   string `json:"panel,omitempty" yaml:"panel,omitempty" toml:"panel,omitempty"`
	Choices []Item `json:"choices,omitempty" yaml:"choices,omitempty" toml:"choices,omitempty"`
}

// Path returns the file the definition was loaded from.
func (d *Definition) Path() string { return d.path }

// HasScript reports whether a script supplies part of the prompt.
func (d *Definition) HasScript() bool { return d.source != "" }

// Extensions recognised by ParseFile.
var Extensions = []string{".yaml", ".yml", ".toml", ".json", ".js"}

// ParseFile reads a definition. A .js file is a script-only definition
// named after the file.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	def := &Definition{}
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, def)
	case ".toml":
		err = toml.Unmarshal(data, def)
	case ".json":
		err = sonic.Unmarshal(data, def)
	case ".js":
		def.source = string(data)
	default:
		return nil, fmt.Errorf("unsupported definition format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	def.path = path
	if def.Name == "" {
		def.Name = base
	}
	if def.Script != "" {
		script := def.Script
		if !filepath.IsAbs(script) {
			script = filepath.Join(filepath.Dir(path), script)
		}
		src, err := os.ReadFile(script)
		if err != nil {
			return nil, fmt.Errorf("failed to read script for %s: %w", def.Name, err)
		}
		def.source = string(src)
		def.scriptPath = script
	}
	return def, nil
}
