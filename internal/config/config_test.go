package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/commitcast/commitcast/model"
)

// isolate points the config file and data dir at temp locations so tests
// never touch the real home directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("COMMITCAST_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("COMMITCAST_SPEED_MS", "")
	return filepath.Join(dir, "commitcast", "config.toml")
}

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpeedMS != DefaultSpeedMS {
		t.Errorf("SpeedMS = %d, want %d", cfg.SpeedMS, DefaultSpeedMS)
	}
	if cfg.Voiceover.Enabled {
		t.Error("voiceover enabled by default")
	}
	if cfg.Voiceover.Provider != model.ProviderInworld {
		t.Errorf("Provider = %q, want inworld", cfg.Voiceover.Provider)
	}
	if cfg.DatabasePath != filepath.Join(cfg.DataDir, "commitcast.db") {
		t.Errorf("DatabasePath = %q not under DataDir %q", cfg.DatabasePath, cfg.DataDir)
	}
	if _, err := os.Stat(cfg.DataDir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := isolate(t)
	writeConfigFile(t, path, `
speed_ms = 55

[voiceover]
enabled = true
provider = "elevenlabs"
api_key = "el-key"
openai_api_key = "oa-key"
voice_id = "custom-voice"
buffer_factor = 1.5
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpeedMS != 55 {
		t.Errorf("SpeedMS = %d, want 55", cfg.SpeedMS)
	}
	vc := cfg.Voiceover
	if !vc.Enabled || vc.Provider != model.ProviderElevenLabs {
		t.Errorf("voiceover = %+v, want enabled elevenlabs", vc)
	}
	if vc.APIKey != "el-key" || vc.OpenAIAPIKey != "oa-key" {
		t.Errorf("keys = %q/%q, want el-key/oa-key", vc.APIKey, vc.OpenAIAPIKey)
	}
	if vc.VoiceID != "custom-voice" {
		t.Errorf("VoiceID = %q", vc.VoiceID)
	}
	if vc.BufferFactor != 1.5 {
		t.Errorf("BufferFactor = %v, want 1.5", vc.BufferFactor)
	}
}

func TestLoadEnvOverridesSpeed(t *testing.T) {
	path := isolate(t)
	writeConfigFile(t, path, "speed_ms = 55\n")
	t.Setenv("COMMITCAST_SPEED_MS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpeedMS != 12 {
		t.Errorf("SpeedMS = %d, want env override 12", cfg.SpeedMS)
	}
}

func TestLoadNormalizesUnknownProvider(t *testing.T) {
	path := isolate(t)
	writeConfigFile(t, path, "[voiceover]\nprovider = \"polly\"\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Voiceover.Provider != model.ProviderInworld {
		t.Errorf("Provider = %q, want inworld fallback", cfg.Voiceover.Provider)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := isolate(t)
	writeConfigFile(t, path, "speed_ms = = 55\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name    string
		current model.Provider
		want    model.Provider
	}{
		{"elevenlabs", model.ProviderInworld, model.ProviderElevenLabs},
		{"ElevenLabs", model.ProviderInworld, model.ProviderElevenLabs},
		{"inworld", model.ProviderElevenLabs, model.ProviderInworld},
		{"", model.ProviderElevenLabs, model.ProviderElevenLabs},
		{"", "", model.ProviderInworld},
		{"polly", model.ProviderElevenLabs, model.ProviderElevenLabs},
		{"polly", "", model.ProviderInworld},
	}
	for _, tt := range tests {
		if got := ParseProvider(tt.name, tt.current); got != tt.want {
			t.Errorf("ParseProvider(%q, %q) = %q, want %q", tt.name, tt.current, got, tt.want)
		}
	}
}

func TestFinalizeVoiceoverFillsKeysFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ELEVENLABS_API_KEY", "env-el")
	t.Setenv("INWORLD_API_KEY", "env-in")
	t.Setenv("OPENAI_API_KEY", "env-oa")

	vc := model.VoiceoverConfig{Enabled: true, Provider: model.ProviderElevenLabs}
	FinalizeVoiceover(&vc)
	if vc.APIKey != "env-el" {
		t.Errorf("APIKey = %q, want env-el", vc.APIKey)
	}
	if vc.OpenAIAPIKey != "env-oa" {
		t.Errorf("OpenAIAPIKey = %q, want env-oa", vc.OpenAIAPIKey)
	}
	if !vc.UseLLMExplanations {
		t.Error("UseLLMExplanations not forced on")
	}

	vc = model.VoiceoverConfig{Enabled: true, Provider: model.ProviderInworld}
	FinalizeVoiceover(&vc)
	if vc.APIKey != "env-in" {
		t.Errorf("inworld APIKey = %q, want env-in", vc.APIKey)
	}
}

func TestFinalizeVoiceoverKeepsConfiguredKeys(t *testing.T) {
	isolate(t)
	t.Setenv("INWORLD_API_KEY", "env-in")
	t.Setenv("OPENAI_API_KEY", "env-oa")

	vc := model.VoiceoverConfig{
		Provider:     model.ProviderInworld,
		APIKey:       "file-key",
		OpenAIAPIKey: "file-oa",
	}
	FinalizeVoiceover(&vc)
	if vc.APIKey != "file-key" || vc.OpenAIAPIKey != "file-oa" {
		t.Errorf("env overwrote configured keys: %q/%q", vc.APIKey, vc.OpenAIAPIKey)
	}
	if vc.UseLLMExplanations {
		t.Error("UseLLMExplanations forced on while voiceover disabled")
	}
}

func TestSaveVoiceoverKeyPreservesOtherSettings(t *testing.T) {
	path := isolate(t)
	writeConfigFile(t, path, "speed_ms = 80\n\n[voiceover]\nprovider = \"elevenlabs\"\n")

	if err := SaveVoiceoverKey("api_key", "secret"); err != nil {
		t.Fatalf("SaveVoiceoverKey: %v", err)
	}
	if err := SaveVoiceoverKey("use_llm_explanations", "true"); err != nil {
		t.Fatalf("SaveVoiceoverKey: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpeedMS != 80 {
		t.Errorf("SpeedMS = %d, want 80 preserved", cfg.SpeedMS)
	}
	if cfg.Voiceover.Provider != model.ProviderElevenLabs {
		t.Errorf("Provider = %q, want elevenlabs preserved", cfg.Voiceover.Provider)
	}
	if cfg.Voiceover.APIKey != "secret" {
		t.Errorf("APIKey = %q, want secret", cfg.Voiceover.APIKey)
	}
	if !cfg.Voiceover.UseLLMExplanations {
		t.Error("use_llm_explanations not persisted")
	}
}

func TestSaveVoiceoverKeyCreatesFile(t *testing.T) {
	path := isolate(t)

	if err := SaveVoiceoverKey("openai_api_key", "fresh"); err != nil {
		t.Fatalf("SaveVoiceoverKey: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !strings.Contains(string(data), "fresh") {
		t.Errorf("config file missing key, got:\n%s", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
}

func TestSaveVoiceoverKeyUnknownField(t *testing.T) {
	isolate(t)
	if err := SaveVoiceoverKey("favorite_color", "blue"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestEnableVoiceover(t *testing.T) {
	path := isolate(t)
	writeConfigFile(t, path, "[voiceover]\napi_key = \"keep-me\"\n")

	if err := EnableVoiceover(); err != nil {
		t.Fatalf("EnableVoiceover: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Voiceover.Enabled {
		t.Error("voiceover not enabled")
	}
	if cfg.Voiceover.APIKey != "keep-me" {
		t.Errorf("APIKey = %q, want keep-me preserved", cfg.Voiceover.APIKey)
	}
}
