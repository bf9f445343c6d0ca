package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// Default voice is Rachel.
const (
	DefaultElevenLabsVoice = "21m00Tcm4TlvDq8ikWAM"
	DefaultElevenLabsModel = "eleven_flash_v2_5"
)

// ElevenLabs synthesizes speech with the ElevenLabs non-streaming
// endpoint, which returns raw encoded audio in the response body.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	modelID string
	baseURL string
	client  *http.Client
}

// NewElevenLabs creates an ElevenLabs synthesizer. Empty voice and model
// IDs fall back to the defaults.
func NewElevenLabs(apiKey, voiceID, modelID string) *ElevenLabs {
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoice
	}
	if modelID == "" {
		modelID = DefaultElevenLabsModel
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
		baseURL: elevenLabsBaseURL,
		client:  http.DefaultClient,
	}
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body := map[string]any{
		"text":     text,
		"model_id": e.modelID,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs API error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
