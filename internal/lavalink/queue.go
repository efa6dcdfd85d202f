package lavalink

import "sync"

// Queue is an ordered, concurrency-safe list of tracks. Reads return
// copies so callers never alias the internal slice.
type Queue struct {
	mu     sync.Mutex
	tracks []Track
	// limit caps the queue length when positive; the oldest entries are
	// dropped first.
	limit int
}

func NewQueue(limit int) *Queue {
	return &Queue{limit: limit}
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

func (q *Queue) Tracks() []Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Track(nil), q.tracks...)
}

// Slice returns tracks[start:end] clamped to the queue bounds.
func (q *Queue) Slice(start, end int) []Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	start = max(start, 0)
	end = min(end, len(q.tracks))
	if start >= end {
		return nil
	}
	return append([]Track(nil), q.tracks[start:end]...)
}

// Index returns the position of the track with id, or -1.
func (q *Queue) Index(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) Push(tracks ...Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = append(q.tracks, tracks...)
	if q.limit > 0 && len(q.tracks) > q.limit {
		q.tracks = append([]Track(nil), q.tracks[len(q.tracks)-q.limit:]...)
	}
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	t := q.tracks[0]
	q.tracks = q.tracks[1:]
	return t, true
}

// Remove drops every track with id and returns how many were removed.
func (q *Queue) Remove(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.tracks[:0]
	removed := 0
	for _, t := range q.tracks {
		if t.ID == id {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	q.tracks = kept
	return removed
}

func (q *Queue) RemoveAt(i int) (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.tracks) {
		return Track{}, false
	}
	t := q.tracks[i]
	q.tracks = append(q.tracks[:i], q.tracks[i+1:]...)
	return t, true
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = nil
}
