package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// FileName is the project config file written by init.
const FileName = "monkeysync.yaml"

// Config represents the top-level monkeysync.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Stripe       StripeConfig       `yaml:"stripe"`
	Directory    DirectoryConfig    `yaml:"directory"`
	Import       ImportConfig       `yaml:"import"`
	Sale         SaleConfig         `yaml:"sale"`
	Sheets       SheetsConfig       `yaml:"sheets,omitempty"`
	Log          LogConfig          `yaml:"log"`
	Git          GitConfig          `yaml:"git"`
}

// OrganizationConfig identifies the organization whose books are imported.
type OrganizationConfig struct {
	Name string `yaml:"name"`
}

// StripeConfig selects where transactions are read from.
type StripeConfig struct {
	APIURL string `yaml:"api_url"`
	Window string `yaml:"window"` // date-math "start:end", e.g. "now-1M/M:now-1M/M"
}

// DirectoryConfig points at the MonkeyPod entity directory.
type DirectoryConfig struct {
	APIURL string `yaml:"api_url,omitempty"` // overridden by MONKEYPOD_API
	Source string `yaml:"source"`            // recorded on created entities
}

// ImportConfig controls batch output.
type ImportConfig struct {
	OutputDir       string `yaml:"output_dir"`
	FilePrefix      string `yaml:"file_prefix"`
	FieldSpecs      string `yaml:"field_specs"`
	CreateEntities  bool   `yaml:"create_entities"`
	ContinueOnError bool   `yaml:"continue_on_error"`
}

// SaleConfig labels sale rows.
type SaleConfig struct {
	Item  string `yaml:"item"`
	Class string `yaml:"class"`
}

// SheetsConfig enables publishing batches to a Google spreadsheet.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a monkeysync.yaml file from disk. Keys missing from the
// file take their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := mergo.Merge(&cfg, Default(cfg.Organization.Name)); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(orgName string) *Config {
	return &Config{
		Organization: OrganizationConfig{
			Name: orgName,
		},
		Stripe: StripeConfig{
			APIURL: "https://api.stripe.com",
			Window: "now-1M/M:now-1M/M",
		},
		Directory: DirectoryConfig{
			Source: "Stripe",
		},
		Import: ImportConfig{
			OutputDir:  "imports/out",
			FilePrefix: "stripe",
			FieldSpecs: "fieldspecs.yaml",
		},
		Sale: SaleConfig{
			Item:  "Merchandise",
			Class: "Programs",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AuthorName:  "MonkeySync",
			AuthorEmail: "monkeysync@localhost",
		},
	}
}
