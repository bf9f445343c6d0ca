package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Sink queues encoded audio for playback.
type Sink interface {
	Append(data []byte) error
	Pause()
	Resume()
}

const speakerSampleRate = beep.SampleRate(44100)

// Speaker plays queued audio through the system output device. Streams
// play back to back in arrival order, and Pause stops mid-stream with
// Resume continuing from the same position. The device is opened lazily
// on the first Append so a disabled voiceover never touches audio
// hardware.
type Speaker struct {
	mu      sync.Mutex
	queue   *playQueue
	ctrl    *beep.Ctrl
	started bool
}

func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) Append(data []byte) error {
	streamer, format, err := Decode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return err
		}
		s.queue = &playQueue{}
		s.ctrl = &beep.Ctrl{Streamer: s.queue}
		speaker.Play(s.ctrl)
		s.started = true
	}

	var stream beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		stream = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}

	speaker.Lock()
	s.queue.add(stream)
	speaker.Unlock()
	return nil
}

func (s *Speaker) Pause() {
	s.setPaused(true)
}

func (s *Speaker) Resume() {
	s.setPaused(false)
}

func (s *Speaker) setPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// playQueue streams its entries sequentially and keeps silence when
// empty, so it can stay attached to the speaker forever.
type playQueue struct {
	streamers []beep.Streamer
}

func (q *playQueue) add(streamers ...beep.Streamer) {
	q.streamers = append(q.streamers, streamers...)
}

func (q *playQueue) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		if len(q.streamers) == 0 {
			for i := range samples[filled:] {
				samples[filled+i] = [2]float64{}
			}
			break
		}
		n, _ := q.streamers[0].Stream(samples[filled:])
		if n == 0 {
			q.streamers = q.streamers[1:]
		}
		filled += n
	}
	return len(samples), true
}

func (q *playQueue) Err() error {
	return nil
}
