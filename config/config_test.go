package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docfill/output"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "date", cfg.Output.Naming)
	assert.Equal(t, "Times New Roman", cfg.Font.Family)
	assert.Equal(t, "touched", cfg.Font.Normalize)
	assert.Equal(t, "ФИО", cfg.Form.PrivilegedPrefix)
	assert.True(t, cfg.Form.StripMarkup)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "docfill.yaml", `
templates:
  dir: ./tpl
output:
  naming: id
font:
  family: Arial
  normalize: all
form:
  required: true
`)

	cfg, err := Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "./tpl", cfg.Templates.Dir)
	assert.Equal(t, "**/*.docx", cfg.Templates.Pattern)
	assert.Equal(t, "id", cfg.Output.Naming)
	assert.Equal(t, "./media", cfg.Output.Dir)
	assert.Equal(t, "Arial", cfg.Font.Family)
	assert.True(t, cfg.Form.Required)
	assert.Equal(t, 4000, cfg.Form.MaxLength)
	assert.Equal(t, path, cfg.Location())
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeConfig(t, "docfill.yml", "font:\n  size: 12\n")

	_, err := Load(context.Background(), path)

	assert.ErrorContains(t, err, "parsing YAML")
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeConfig(t, "docfill.yaml", "")

	cfg, err := Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, Default().Font, cfg.Font)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "docfill.json", `{"server": {"addr": ":9090"}, "log": {"level": "debug"}}`)

	cfg, err := Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "./templates", cfg.Templates.Dir)
}

func TestLoad_JSONUnknownField(t *testing.T) {
	path := writeConfig(t, "docfill.json", `{"bogus": true}`)

	_, err := Load(context.Background(), path)

	assert.ErrorContains(t, err, "parsing JSON")
}

func TestLoad_HCL(t *testing.T) {
	t.Setenv("DOCFILL_TEST_OUT", "/tmp/docfill-out")
	path := writeConfig(t, "docfill.hcl", `
output {
  dir    = env.DOCFILL_TEST_OUT
  naming = "id"
}

form {
  max_length = 10
  strip_markup = false
}
`)

	cfg, err := Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/docfill-out", cfg.Output.Dir)
	assert.Equal(t, "id", cfg.Output.Naming)
	assert.Equal(t, 10, cfg.Form.MaxLength)
	assert.False(t, cfg.Form.StripMarkup)
	assert.Equal(t, "ФИО", cfg.Form.PrivilegedPrefix)
	assert.Equal(t, "Times New Roman", cfg.Font.Family)
}

func TestLoad_HCLInvalid(t *testing.T) {
	path := writeConfig(t, "docfill.hcl", `output { dir = `)

	_, err := Load(context.Background(), path)

	assert.ErrorContains(t, err, "parsing HCL")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "docfill.toml", "")

	_, err := Load(context.Background(), path)

	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"naming", func(c *Config) { c.Output.Naming = "uuid" }},
		{"normalize", func(c *Config) { c.Font.Normalize = "some" }},
		{"family", func(c *Config) { c.Font.Family = " " }},
		{"max length", func(c *Config) { c.Form.MaxLength = -1 }},
		{"templates dir", func(c *Config) { c.Templates.Dir = "" }},
		{"output dir", func(c *Config) { c.Output.Dir = "" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	path := writeConfig(t, "docfill.yaml", "output:\n  naming: weekly\n")

	_, err := Load(context.Background(), path)

	assert.ErrorContains(t, err, "validating config")
}

func TestDerived(t *testing.T) {
	cfg := Default()
	cfg.Output.Naming = "id"
	cfg.Form.PrivilegedPrefix = ""

	w := cfg.Writer()
	assert.Equal(t, output.PolicyID, w.Namer.Policy)
	assert.Equal(t, "./media", w.Dir)

	assert.Empty(t, cfg.Orderer().Privileged)
	assert.Len(t, cfg.FormOptions(), 2)

	cfg.Form.StripMarkup = false
	assert.Len(t, cfg.FormOptions(), 3)

	assert.NotNil(t, cfg.Engine())
}
