// Package config loads docfill settings from YAML, JSON or HCL files.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/fill"
	"github.com/tsawler/docfill/form"
	"github.com/tsawler/docfill/output"
	"github.com/tsawler/docfill/placeholder"
	"github.com/tsawler/docfill/registry"
)

// Config is the complete docfill configuration.
type Config struct {
	Templates TemplatesConfig `yaml:"templates" json:"templates"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Font      FontConfig      `yaml:"font" json:"font"`
	Form      FormConfig      `yaml:"form" json:"form"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Log       LogConfig       `yaml:"log" json:"log"`

	location string
}

// TemplatesConfig locates templates.
type TemplatesConfig struct {
	Dir     string `yaml:"dir" json:"dir"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// OutputConfig controls where generated documents go and how they are named.
type OutputConfig struct {
	Dir    string `yaml:"dir" json:"dir"`
	Naming string `yaml:"naming" json:"naming"`
}

// FontConfig controls font normalization of filled runs.
type FontConfig struct {
	Family    string `yaml:"family" json:"family"`
	Normalize string `yaml:"normalize" json:"normalize"`
}

// FormConfig controls value collection.
type FormConfig struct {
	Required         bool   `yaml:"required" json:"required"`
	MaxLength        int    `yaml:"max_length" json:"max_length"`
	StripMarkup      bool   `yaml:"strip_markup" json:"strip_markup"`
	PrivilegedPrefix string `yaml:"privileged_prefix" json:"privileged_prefix"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Templates: TemplatesConfig{Dir: "./templates", Pattern: registry.DefaultPattern},
		Output:    OutputConfig{Dir: "./media", Naming: string(output.PolicyDate)},
		Font:      FontConfig{Family: fill.DefaultFont, Normalize: string(fill.FontTouched)},
		Form: FormConfig{
			MaxLength:        form.DefaultMaxLength,
			StripMarkup:      true,
			PrivilegedPrefix: placeholder.DefaultPrivilegedPrefix,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path. The format follows the extension:
// .yaml/.yml, .json or .hcl. Settings missing from the file keep their
// defaults. An empty path returns Default().
func Load(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		cfg, err = loadJSON(data)
	case ".yaml", ".yml":
		cfg, err = loadYAML(data)
	case ".hcl":
		cfg, err = loadHCL(data, path)
	default:
		return nil, errors.Errorf("unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	cfg.location = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loaded config")
	return cfg, nil
}

// Location returns the file the configuration was loaded from.
func (c *Config) Location() string {
	return c.location
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := output.ParsePolicy(c.Output.Naming); err != nil {
		return errors.Errorf("output.naming: %w", err)
	}
	if _, err := fill.ParseFontMode(c.Font.Normalize); err != nil {
		return errors.Errorf("font.normalize: %w", err)
	}
	if strings.TrimSpace(c.Font.Family) == "" {
		return errors.New("font.family must not be empty")
	}
	if c.Form.MaxLength < 0 {
		return errors.New("form.max_length must not be negative")
	}
	if c.Templates.Dir == "" {
		return errors.New("templates.dir must not be empty")
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errors.Errorf("log.level: %w", err)
	}
	return nil
}

// Engine returns a fill engine configured from the font settings.
func (c *Config) Engine() *fill.Engine {
	mode, _ := fill.ParseFontMode(c.Font.Normalize)
	return fill.New(fill.WithFont(c.Font.Family), fill.WithFontMode(mode))
}

// Orderer returns the tag orderer configured from the form settings.
func (c *Config) Orderer() placeholder.Orderer {
	if c.Form.PrivilegedPrefix == "" {
		return placeholder.Orderer{}
	}
	return placeholder.Orderer{Privileged: []string{c.Form.PrivilegedPrefix}}
}

// FormOptions returns the form options configured from the form settings.
func (c *Config) FormOptions() []form.Option {
	opts := []form.Option{
		form.WithRequired(c.Form.Required),
		form.WithMaxLength(c.Form.MaxLength),
	}
	if !c.Form.StripMarkup {
		opts = append(opts, form.WithSanitizer(nil))
	}
	return opts
}

// Writer returns an output writer configured from the output settings.
func (c *Config) Writer() *output.Writer {
	policy, _ := output.ParsePolicy(c.Output.Naming)
	return output.NewWriter(c.Output.Dir, policy)
}
