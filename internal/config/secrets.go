package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/Shopify/ejson"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultKeyDir is where ejson looks for private keys.
const DefaultKeyDir = "/opt/ejson/keys"

// Secrets holds API credentials. They never live in monkeysync.yaml.
type Secrets struct {
	StripeAPIKey   string `json:"stripe_api_key" env:"STRIPE_API_KEY"`
	MonkeyPodToken string `json:"monkeypod_token" env:"MONKEYPOD_TOKEN"`
	MonkeyPodAPI   string `json:"monkeypod_api" env:"MONKEYPOD_API"`
}

// SecretsOptions locates the secret sources.
type SecretsOptions struct {
	EnvFile    string // .env file; a missing file is skipped
	EjsonFile  string // encrypted secrets.ejson; a missing file is skipped
	KeyDir     string // Default: DefaultKeyDir
	PrivateKey string // overrides the key looked up in KeyDir
}

// LoadSecrets reads secrets from the process environment, the .env file
// and the ejson file, in that order of precedence.
func LoadSecrets(opts SecretsOptions) (*Secrets, error) {
	environ, err := environment(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	var secrets Secrets
	if err := env.Parse(&secrets, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing env secrets: %w", err)
	}

	if opts.EjsonFile == "" {
		return &secrets, nil
	}
	ejsonSecrets, err := readEjson(opts)
	if errors.Is(err, os.ErrNotExist) {
		return &secrets, nil
	}
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&secrets, *ejsonSecrets); err != nil {
		return nil, fmt.Errorf("merging secrets: %w", err)
	}
	return &secrets, nil
}

// environment overlays the process environment on the .env values.
func environment(envFile string) (map[string]string, error) {
	environ := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
		for k, v := range values {
			environ[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return environ, nil
}

func readEjson(opts SecretsOptions) (*Secrets, error) {
	if _, err := os.Stat(opts.EjsonFile); err != nil {
		return nil, err
	}
	keyDir := opts.KeyDir
	if keyDir == "" {
		keyDir = DefaultKeyDir
	}
	raw, err := ejson.DecryptFile(opts.EjsonFile, keyDir, opts.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", opts.EjsonFile, err)
	}
	var secrets Secrets
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opts.EjsonFile, err)
	}
	return &secrets, nil
}
