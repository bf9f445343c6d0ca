package audio

import (
	"bytes"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// Decode sniffs the container format and returns a playable streamer.
// ElevenLabs responds with MP3; Inworld's envelope usually carries WAV.
func Decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if isWAV(data) {
		return wav.Decode(io.NopCloser(bytes.NewReader(data)))
	}
	return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
}

func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// Duration measures the real playback length of encoded audio in
// seconds. This measurement is authoritative for sync timing; the
// word-count estimate is only a fallback.
func Duration(data []byte) (float64, error) {
	streamer, format, err := Decode(data)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()).Seconds(), nil
}
