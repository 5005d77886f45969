package player

import "mini-music/internal/state"

// Queue holds the ephemeral play queue: a snapshot of tracks taken when
// playback started plus a cursor. It is never persisted; later edits to the
// source playlist do not alter an in-flight queue.
type Queue struct {
	Tracks       []state.Track `json:"tracks"`
	CurrentIndex int           `json:"currentIndex"`
}

// Current returns the track under the cursor, or nil when idle.
func (q *Queue) Current() *state.Track {
	if q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Tracks) {
		return nil
	}
	return &q.Tracks[q.CurrentIndex]
}

// HasNext reports whether advancing the cursor stays in bounds.
func (q *Queue) HasNext() bool {
	return q.CurrentIndex+1 < len(q.Tracks)
}

// HasPrev reports whether the cursor can move back.
func (q *Queue) HasPrev() bool {
	return q.CurrentIndex > 0
}

func (q *Queue) Len() int {
	return len(q.Tracks)
}
