package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commitcast/commitcast/model"
)

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-x" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		var body struct {
			Text          string `json:"text"`
			ModelID       string `json:"model_id"`
			VoiceSettings struct {
				Stability       float64 `json:"stability"`
				SimilarityBoost float64 `json:"similarity_boost"`
			} `json:"voice_settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body.Text != "hello world" || body.ModelID != "model-y" {
			t.Errorf("unexpected body: %+v", body)
		}
		if body.VoiceSettings.Stability != 0.5 || body.VoiceSettings.SimilarityBoost != 0.75 {
			t.Errorf("unexpected voice settings: %+v", body.VoiceSettings)
		}
		w.Write([]byte("RAW-AUDIO-BYTES"))
	}))
	defer srv.Close()

	e := NewElevenLabs("secret", "voice-x", "model-y")
	e.baseURL = srv.URL

	audio, err := e.Synthesize(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "RAW-AUDIO-BYTES" {
		t.Fatalf("unexpected audio: %q", audio)
	}
}

func TestElevenLabsDefaults(t *testing.T) {
	e := NewElevenLabs("k", "", "")
	if e.voiceID != DefaultElevenLabsVoice || e.modelID != DefaultElevenLabsModel {
		t.Fatalf("defaults not applied: %q %q", e.voiceID, e.modelID)
	}
}

func TestElevenLabsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := NewElevenLabs("bad", "v", "m")
	e.baseURL = srv.URL

	_, err := e.Synthesize(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry the status: %v", err)
	}
}

func TestInworldSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts/v1/voice" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Basic creds" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body["text"] != "hi there" || body["voiceId"] != "Ashley" || body["modelId"] != DefaultInworldModel {
			t.Errorf("unexpected body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("decoded-audio")),
		})
	}))
	defer srv.Close()

	iw := NewInworld("creds", "", "")
	iw.baseURL = srv.URL

	audio, err := iw.Synthesize(context.Background(), "hi there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "decoded-audio" {
		t.Fatalf("unexpected audio: %q", audio)
	}
}

func TestInworldMissingAudioContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	iw := NewInworld("creds", "", "")
	iw.baseURL = srv.URL

	if _, err := iw.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for missing audioContent")
	}
}

func TestInworldAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	iw := NewInworld("creds", "", "")
	iw.baseURL = srv.URL

	_, err := iw.Synthesize(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry the status: %v", err)
	}
}

func TestNewDispatch(t *testing.T) {
	s, err := New(model.VoiceoverConfig{Provider: model.ProviderElevenLabs, APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*ElevenLabs); !ok {
		t.Fatalf("expected *ElevenLabs, got %T", s)
	}

	s, err = New(model.VoiceoverConfig{Provider: model.ProviderInworld, APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*Inworld); !ok {
		t.Fatalf("expected *Inworld, got %T", s)
	}

	if _, err := New(model.VoiceoverConfig{Provider: "bogus"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
