// Package config provides configuration management for commitcast.
//
// Settings are layered: built-in defaults, then the TOML config file at
// ~/.config/commitcast/config.toml, then environment variables (a .env
// file in the working directory is honored). API keys read from the
// environment never overwrite keys already present in the config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/commitcast/commitcast/model"
)

// DefaultSpeedMS is the typing speed in milliseconds per character used
// when neither the config file nor the environment sets one.
const DefaultSpeedMS = 30

// Config holds all configuration for the commitcast CLI.
type Config struct {
	// SpeedMS is the typing speed in milliseconds per character.
	SpeedMS int

	// DataDir is the directory for persistent data (narration cache, run
	// history).
	DataDir string

	// DatabasePath is the full path to the SQLite cache database.
	DatabasePath string

	// Voiceover is the narration configuration.
	Voiceover model.VoiceoverConfig
}

// fileConfig is the on-disk TOML schema. DatabasePath is derived, never
// stored.
type fileConfig struct {
	SpeedMS   int                   `toml:"speed_ms,omitempty"`
	DataDir   string                `toml:"data_dir,omitempty"`
	Voiceover model.VoiceoverConfig `toml:"voiceover"`
}

// Path returns the config file location, ~/.config/commitcast/config.toml
// on Linux.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, "commitcast", "config.toml"), nil
}

// Load creates a Config from the config file and environment variables
// with sensible defaults. A missing config file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	fc, err := readFile(path)
	if err != nil {
		return nil, err
	}

	dataDir := envOr("COMMITCAST_DATA_DIR", fc.DataDir)
	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	cfg := &Config{
		SpeedMS:      envOrInt("COMMITCAST_SPEED_MS", fc.SpeedMS),
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "commitcast.db"),
		Voiceover:    fc.Voiceover,
	}
	if cfg.SpeedMS <= 0 {
		cfg.SpeedMS = DefaultSpeedMS
	}
	cfg.Voiceover.Provider = ParseProvider(string(cfg.Voiceover.Provider), model.ProviderInworld)

	return cfg, nil
}

// ParseProvider maps a user-supplied provider name to a known Provider.
// Unknown names keep the current provider and log a warning; empty means
// the current provider.
func ParseProvider(name string, current model.Provider) model.Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "elevenlabs":
		return model.ProviderElevenLabs
	case "inworld":
		return model.ProviderInworld
	case "":
		if current == "" {
			return model.ProviderInworld
		}
		return current
	default:
		log.Printf("Warning: unknown voiceover provider %q, using %s", name, current)
		if current == "" {
			return model.ProviderInworld
		}
		return current
	}
}

// FinalizeVoiceover fills missing API keys from the environment and forces
// LLM explanations on when voiceover is enabled. Call it after any
// command-line overrides have been applied, once the provider is final.
func FinalizeVoiceover(vc *model.VoiceoverConfig) {
	if vc.APIKey == "" {
		switch vc.Provider {
		case model.ProviderElevenLabs:
			vc.APIKey = os.Getenv("ELEVENLABS_API_KEY")
		default:
			vc.APIKey = os.Getenv("INWORLD_API_KEY")
		}
	}
	if vc.OpenAIAPIKey == "" {
		vc.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if vc.Enabled {
		vc.UseLLMExplanations = true
	}
}

// SaveVoiceoverKey persists a single voiceover field to the config file
// without disturbing other settings. Field is one of "api_key",
// "openai_api_key" or "use_llm_explanations".
func SaveVoiceoverKey(field, value string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	fc, err := readFile(path)
	if err != nil {
		return err
	}

	switch field {
	case "api_key":
		fc.Voiceover.APIKey = value
	case "openai_api_key":
		fc.Voiceover.OpenAIAPIKey = value
	case "use_llm_explanations":
		fc.Voiceover.UseLLMExplanations = value == "true"
	default:
		return fmt.Errorf("unknown voiceover field %q", field)
	}

	return writeFile(path, fc)
}

// EnableVoiceover marks voiceover as enabled in the config file.
func EnableVoiceover() error {
	path, err := Path()
	if err != nil {
		return err
	}
	fc, err := readFile(path)
	if err != nil {
		return err
	}
	fc.Voiceover.Enabled = true
	return writeFile(path, fc)
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("reading %s: %w", path, err)
	}
	return fc, nil
}

// writeFile writes the config with owner-only permissions; the file holds
// API keys.
func writeFile(path string, fc fileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(fc); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".commitcast"
	}
	return filepath.Join(home, ".commitcast")
}
