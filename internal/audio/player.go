package audio

import (
	"sync"
	"time"

	"github.com/commitcast/commitcast/model"
)

// Player coordinates chunk playback against the render loop. Triggering
// never blocks the caller; completion is reported through a queue the
// render loop drains between frames.
type Player struct {
	store *ChunkStore
	out   Sink
	done  chan int
	sleep func(time.Duration)

	mu       sync.Mutex
	segments []model.VoiceoverSegment
}

// NewPlayer wires a player to a chunk store and output sink. A nil sink
// turns every trigger into a no-op, which is how a disabled voiceover
// keeps the render loop oblivious.
func NewPlayer(store *ChunkStore, out Sink) *Player {
	return &Player{
		store: store,
		out:   out,
		done:  make(chan int, 64),
		sleep: time.Sleep,
	}
}

// Trigger starts playback of one chunk and returns immediately. When the
// chunk's measured duration has elapsed, its ID appears on the
// completion queue. Unknown IDs, chunks without audio, and undecodable
// audio are silent no-ops: narration is an enhancement, never a
// dependency of the animation.
func (p *Player) Trigger(chunkID int) {
	if p.out == nil {
		return
	}
	go func() {
		chunk, ok := p.store.Get(chunkID)
		if !ok || !chunk.HasAudio || len(chunk.AudioData) == 0 {
			return
		}
		if err := p.out.Append(chunk.AudioData); err != nil {
			return
		}
		p.sleep(time.Duration(chunk.AudioDurationSecs * float64(time.Second)))
		select {
		case p.done <- chunkID:
		default:
		}
	}()
}

// PollFinished drains the completion queue without blocking, returning
// the IDs of every chunk that finished since the last poll.
func (p *Player) PollFinished() []int {
	var finished []int
	for {
		select {
		case id := <-p.done:
			finished = append(finished, id)
		default:
			return finished
		}
	}
}

// Pause halts playback mid-stream. The queue is kept.
func (p *Player) Pause() {
	if p.out != nil {
		p.out.Pause()
	}
}

// Resume continues playback from where Pause left it.
func (p *Player) Resume() {
	if p.out != nil {
		p.out.Resume()
	}
}

// QueueSegments replaces the pending event-triggered segment list.
func (p *Player) QueueSegments(segments []model.VoiceoverSegment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.segments = append([]model.VoiceoverSegment(nil), segments...)
}

// TriggerEvent plays the first queued segment whose trigger matches,
// removing it from the queue. No match is a no-op.
func (p *Player) TriggerEvent(trigger model.VoiceoverTrigger) {
	if p.out == nil {
		return
	}

	p.mu.Lock()
	var segment *model.VoiceoverSegment
	for i := range p.segments {
		if p.segments[i].Trigger == trigger {
			seg := p.segments[i]
			p.segments = append(p.segments[:i], p.segments[i+1:]...)
			segment = &seg
			break
		}
	}
	p.mu.Unlock()

	if segment == nil || len(segment.AudioData) == 0 {
		return
	}
	go func() {
		_ = p.out.Append(segment.AudioData)
	}()
}
