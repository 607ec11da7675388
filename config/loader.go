package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// loadJSON loads a configuration from JSON data
func loadJSON(data []byte) (*Config, error) {
	cfg := Default()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return cfg, nil
}

// loadYAML loads a configuration from YAML data
func loadYAML(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty document decodes to io.EOF and keeps the defaults.
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

// hclConfig is the HCL schema. Every block and attribute is optional.
type hclConfig struct {
	Templates *struct {
		Dir     *string `hcl:"dir,optional"`
		Pattern *string `hcl:"pattern,optional"`
	} `hcl:"templates,block"`
	Output *struct {
		Dir    *string `hcl:"dir,optional"`
		Naming *string `hcl:"naming,optional"`
	} `hcl:"output,block"`
	Font *struct {
		Family    *string `hcl:"family,optional"`
		Normalize *string `hcl:"normalize,optional"`
	} `hcl:"font,block"`
	Form *struct {
		Required         *bool   `hcl:"required,optional"`
		MaxLength        *int    `hcl:"max_length,optional"`
		StripMarkup      *bool   `hcl:"strip_markup,optional"`
		PrivilegedPrefix *string `hcl:"privileged_prefix,optional"`
	} `hcl:"form,block"`
	Server *struct {
		Addr *string `hcl:"addr,optional"`
	} `hcl:"server,block"`
	Log *struct {
		Level *string `hcl:"level,optional"`
	} `hcl:"log,block"`
}

// loadHCL loads a configuration from HCL data. Environment variables are
// available to expressions as env.NAME.
func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	var hc hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := Default()
	if b := hc.Templates; b != nil {
		set(&cfg.Templates.Dir, b.Dir)
		set(&cfg.Templates.Pattern, b.Pattern)
	}
	if b := hc.Output; b != nil {
		set(&cfg.Output.Dir, b.Dir)
		set(&cfg.Output.Naming, b.Naming)
	}
	if b := hc.Font; b != nil {
		set(&cfg.Font.Family, b.Family)
		set(&cfg.Font.Normalize, b.Normalize)
	}
	if b := hc.Form; b != nil {
		set(&cfg.Form.Required, b.Required)
		set(&cfg.Form.MaxLength, b.MaxLength)
		set(&cfg.Form.StripMarkup, b.StripMarkup)
		set(&cfg.Form.PrivilegedPrefix, b.PrivilegedPrefix)
	}
	if b := hc.Server; b != nil {
		set(&cfg.Server.Addr, b.Addr)
	}
	if b := hc.Log; b != nil {
		set(&cfg.Log.Level, b.Level)
	}
	return cfg, nil
}

// set overwrites dst when v is present.
func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// environment exposes the process environment as a cty object.
func environment() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !utf8.ValidString(value) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
