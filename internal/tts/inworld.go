package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const inworldBaseURL = "https://api.inworld.ai"

const (
	DefaultInworldVoice = "Ashley"
	DefaultInworldModel = "inworld-tts-1.5-max"
)

// Inworld synthesizes speech with the Inworld non-streaming endpoint.
// The API key is the pre-encoded Basic auth credential; audio comes back
// base64-encoded inside a JSON envelope.
type Inworld struct {
	apiKey  string
	voiceID string
	modelID string
	baseURL string
	client  *http.Client
}

// NewInworld creates an Inworld synthesizer. Empty voice and model IDs
// fall back to the defaults.
func NewInworld(apiKey, voiceID, modelID string) *Inworld {
	if voiceID == "" {
		voiceID = DefaultInworldVoice
	}
	if modelID == "" {
		modelID = DefaultInworldModel
	}
	return &Inworld{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
		baseURL: inworldBaseURL,
		client:  http.DefaultClient,
	}
}

func (iw *Inworld) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body := map[string]string{
		"text":    text,
		"voiceId": iw.voiceID,
		"modelId": iw.modelID,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", iw.baseURL+"/tts/v1/voice", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+iw.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := iw.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inworld API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if result.AudioContent == "" {
		return nil, fmt.Errorf("no audioContent in response")
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}
	return audio, nil
}
