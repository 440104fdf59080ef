package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/config"
	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/fieldspec"
	"github.com/yaknet/monkeysync/internal/logger"
	"github.com/yaknet/monkeysync/internal/stripe"
)

// ejsonKeyFileEnv names a file holding the ejson private key.
const ejsonKeyFileEnv = "MONKEYSYNC_EJSON_KEY_FILE"

// app is the state shared by subcommands: flags, config and logger.
type app struct {
	configPath  string
	envFile     string
	secretsFile string
	logLevel    string
	logFormat   string

	cfg *config.Config
	log zerolog.Logger
}

// setup loads the config and installs the logger into the command context.
// A missing config file falls back to defaults.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default("")
	case err != nil:
		return err
	}
	a.cfg = cfg

	level, format := cfg.Log.Level, cfg.Log.Format
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.logFormat != "" {
		format = a.logFormat
	}
	log, err := logger.New(logger.Options{Level: level, Format: format, Out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	a.log = log.With().Str("cmd", cmd.Name()).Logger()
	cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
	return nil
}

// root is the project directory: the directory holding the config file.
func (a *app) root() string {
	return filepath.Dir(a.configPath)
}

// path resolves p against the project directory.
func (a *app) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.root(), p)
}

func (a *app) secrets() (*config.Secrets, error) {
	opts := config.SecretsOptions{
		EnvFile:   a.path(a.envFile),
		EjsonFile: a.path(a.secretsFile),
	}
	if keyFile := os.Getenv(ejsonKeyFileEnv); keyFile != "" {
		key, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("reading ejson key: %w", err)
		}
		opts.PrivateKey = strings.TrimSpace(string(key))
	}
	return config.LoadSecrets(opts)
}

func (a *app) directoryClient(s *config.Secrets) (*directory.Client, error) {
	apiURL := s.MonkeyPodAPI
	if apiURL == "" {
		apiURL = a.cfg.Directory.APIURL
	}
	if apiURL == "" {
		return nil, errors.New("MONKEYPOD_API is not set and directory.api_url is empty")
	}
	return directory.NewClient(directory.ClientConfig{APIURL: apiURL, Token: s.MonkeyPodToken}), nil
}

func (a *app) stripeClient(s *config.Secrets) (*stripe.Client, error) {
	if s.StripeAPIKey == "" {
		return nil, errors.New("STRIPE_API_KEY is not set")
	}
	return stripe.NewClient(stripe.ClientConfig{APIURL: a.cfg.Stripe.APIURL, APIKey: s.StripeAPIKey, Log: a.log}), nil
}

// fieldSpecs loads the project's field specs, or the built-in set when
// the project has none.
func (a *app) fieldSpecs() (fieldspec.Set, error) {
	path := a.path(a.cfg.Import.FieldSpecs)
	if path == "" {
		return fieldspec.Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		a.log.Debug().Str("path", path).Msg("no field specs file, using built-in specs")
		return fieldspec.Default(), nil
	}
	return fieldspec.Load(path)
}
