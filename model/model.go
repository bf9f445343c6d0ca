// Package model defines the core domain types shared across all commitcast packages.
// It has zero dependencies on other commitcast packages.
package model

// Provider identifies a text-to-speech backend.
type Provider string

const (
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderInworld    Provider = "inworld"
)

// FileStatus describes how a commit changed a file.
type FileStatus string

const (
	StatusAdded      FileStatus = "added"
	StatusDeleted    FileStatus = "deleted"
	StatusModified   FileStatus = "modified"
	StatusRenamed    FileStatus = "renamed"
	StatusCopied     FileStatus = "copied"
	StatusUnmodified FileStatus = "unmodified"
)

// Word returns the status phrasing used in file lists shown to the
// language model.
func (s FileStatus) Word() string {
	switch s {
	case StatusAdded:
		return "new file"
	case StatusDeleted:
		return "deleted"
	case StatusModified:
		return "modified"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	default:
		return "unchanged"
	}
}

// FileChange is one changed file of a commit as the narration pipeline
// consumes it: path, unified-diff text, and change status.
type FileChange struct {
	Path   string     `json:"path"`
	Diff   string     `json:"diff"`
	Status FileStatus `json:"status"`
}

// ProjectContext is the per-session repository summary included in every
// narration prompt. Description starts empty and is filled by a single
// language-model call; it is never mutated after that.
type ProjectContext struct {
	RepoName    string `json:"repo_name"`
	Description string `json:"description"`
}

// DiffChunk is the unit of narration: one or more hunks of a single file's
// diff, the generated explanation, and the synthesized audio. Chunk IDs
// are session-scoped and monotonically increasing in generation order.
type DiffChunk struct {
	ChunkID     int    `json:"chunk_id"`
	FilePath    string `json:"file_path"`
	HunkIndices []int  `json:"hunk_indices"`
	Explanation string `json:"explanation"`
	AudioData   []byte `json:"-"`
	HasAudio    bool   `json:"has_audio"`

	// EstimatedDurationSecs is the predicted typing-animation duration the
	// narration was sized against.
	EstimatedDurationSecs float64 `json:"estimated_duration_secs"`
	// AudioDurationSecs is the measured length of the decoded audio, or the
	// word-count estimate when the audio could not be decoded.
	AudioDurationSecs float64 `json:"audio_duration_secs"`
}

// VoiceoverConfig is the narration configuration for one generation run.
// It is loaded once and copied into background goroutines, never shared
// mutably.
type VoiceoverConfig struct {
	Enabled  bool     `json:"enabled" toml:"enabled"`
	Provider Provider `json:"provider" toml:"provider"`

	// APIKey authenticates against the selected TTS provider.
	APIKey  string `json:"-" toml:"api_key,omitempty"`
	VoiceID string `json:"voice_id,omitempty" toml:"voice_id,omitempty"`
	ModelID string `json:"model_id,omitempty" toml:"model_id,omitempty"`

	// OpenAIAPIKey authenticates the narration language-model calls.
	OpenAIAPIKey   string `json:"-" toml:"openai_api_key,omitempty"`
	NarrationModel string `json:"narration_model,omitempty" toml:"narration_model,omitempty"`

	// UseLLMExplanations gates all narration generation. Forced on whenever
	// voiceover is enabled; without it generation returns no chunks.
	UseLLMExplanations bool `json:"use_llm_explanations" toml:"use_llm_explanations"`

	// BufferFactor sizes narration length relative to the animation duration
	// so speech never finishes first. Zero means the default (2.0).
	BufferFactor float64 `json:"buffer_factor,omitempty" toml:"buffer_factor,omitempty"`
}

// VoiceoverTrigger keys a queued segment to a playback event. The only
// event kind is a file opening in the editor pane. Superseded by direct
// chunk-id triggering but still served by the player.
type VoiceoverTrigger struct {
	FileOpen string `json:"file_open"`
}

// VoiceoverSegment is a pre-generated narration segment played when its
// trigger fires.
type VoiceoverSegment struct {
	Text                  string           `json:"text"`
	AudioData             []byte           `json:"-"`
	FilePath              string           `json:"file_path,omitempty"`
	Trigger               VoiceoverTrigger `json:"trigger"`
	EstimatedDurationSecs float64          `json:"estimated_duration_secs"`
}

// Truncate shortens a string to maxLen runes, adding "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		r := []rune(s)
		if len(r) <= maxLen {
			return s
		}
		return string(r[:maxLen])
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// Clip cuts a string to at most maxLen runes with no ellipsis marker.
// Prompt builders use it to cap file and description previews.
func Clip(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
