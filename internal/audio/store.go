// Package audio stores generated narration chunks and plays them back in
// sync with the typing animation.
package audio

import (
	"sort"
	"sync"

	"github.com/commitcast/commitcast/model"
)

// ChunkStore holds a commit's generated chunks keyed by global chunk ID.
// It is safe for concurrent use: generation writes while the render loop
// reads.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[int]model.DiffChunk
}

func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[int]model.DiffChunk)}
}

// InsertAll stores or replaces chunks under their IDs. Generation calls
// it per chunk as audio completes; bulk callers pass a whole commit.
func (s *ChunkStore) InsertAll(chunks ...model.DiffChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ChunkID] = chunk
	}
}

// Get returns the chunk with the given ID.
func (s *ChunkStore) Get(id int) (model.DiffChunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	return chunk, ok
}

// ForFile returns the chunks belonging to one file in ascending chunk-ID
// order, which is their playback order.
func (s *ChunkStore) ForFile(path string) []model.DiffChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.DiffChunk
	for _, chunk := range s.chunks {
		if chunk.FilePath == path {
			out = append(out, chunk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkID < out[j].ChunkID })
	return out
}

// Clear removes all chunks. Called when generation starts for a new
// commit so stale audio can never play over the wrong diff.
func (s *ChunkStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[int]model.DiffChunk)
}

// Len reports the number of stored chunks.
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
