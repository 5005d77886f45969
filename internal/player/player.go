package player

import (
	"errors"
	"sync"

	"mini-music/internal/state"
)

// Media is the playback capability the transport drives. In production it is
// a bridge that forwards commands to the client's audio element over the
// event hub; tests plug in a fake. Play may be rejected (autoplay policy,
// decode failure); the transport downgrades that to not-playing instead of
// propagating it.
type Media interface {
	SetSource(url string)
	Unload()
	Load()
	Play() error
	Pause()
	SetCurrentTime(seconds float64)
}

var ErrIndexOutOfRange = errors.New("queue index out of range")

// Status is the externally visible transport state. IsPlaying, CurTime and
// Duration mirror media notifications; they are never assumed from the
// command that was issued.
type Status struct {
	Track        *state.Track  `json:"track"`
	Queue        []state.Track `json:"queue"`
	CurrentIndex int           `json:"currentIndex"`
	IsPlaying    bool          `json:"isPlaying"`
	CurTime      float64       `json:"curTime"`
	Duration     float64       `json:"duration"`
}

// Player owns the play queue and the mirrored playback state for one user
// session. Methods are safe for concurrent use; within a session there is one
// logical actor, but HTTP handlers may race.
type Player struct {
	mu    sync.Mutex
	media Media

	queue     Queue
	isPlaying bool
	curTime   float64
	duration  float64
}

func New(media Media) *Player {
	return &Player{
		media: media,
		queue: Queue{CurrentIndex: -1},
	}
}

// StartQueue replaces the queue with a snapshot of tracks and starts playback
// at index.
func (p *Player) StartQueue(tracks []state.Track, index int) error {
	if index < 0 || index >= len(tracks) {
		return ErrIndexOutOfRange
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]state.Track, len(tracks))
	copy(snapshot, tracks)
	p.queue = Queue{Tracks: snapshot, CurrentIndex: index}
	p.loadCurrent()
	return nil
}

// TogglePlay requests pause when playing and play when paused. It does not
// flip the mirror itself; that follows from the media notification. No-op
// without a current track.
func (p *Player) TogglePlay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.Current() == nil {
		return
	}
	if p.isPlaying {
		p.media.Pause()
		return
	}
	if err := p.media.Play(); err != nil {
		p.isPlaying = false
	}
}

// Next advances the cursor. No-op (no wraparound) at the last track.
func (p *Player) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
}

// Prev moves the cursor back. No-op at the first track.
func (p *Player) Prev() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.queue.HasPrev() {
		return
	}
	p.queue.CurrentIndex--
	p.loadCurrent()
}

// Seek converts a [0,1] ratio to absolute time (clamping out-of-range input),
// issues the media seek and optimistically updates the tracked time. No-op
// until the track duration is known.
func (p *Player) Seek(ratio float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.Current() == nil || p.duration == 0 {
		return
	}
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	t := ratio * p.duration
	p.media.SetCurrentTime(t)
	p.curTime = t
}

// Clear drops the queue, unloads the media source and returns to idle.
func (p *Player) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue = Queue{CurrentIndex: -1}
	p.media.Pause()
	p.media.Unload()
	p.isPlaying = false
	p.curTime = 0
	p.duration = 0
}

// OnTimeUpdate records playback progress reported by the media capability.
func (p *Player) OnTimeUpdate(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.curTime = seconds
}

// OnMetadataLoaded records the duration reported once the source is loaded.
func (p *Player) OnMetadataLoaded(durationSec float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = durationSec
}

// OnEnded auto-advances to the next track. After the last track the queue is
// kept and the cursor stays put: loaded but stopped, not idle.
func (p *Player) OnEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.HasNext() {
		p.advance()
		return
	}
	p.isPlaying = false
}

// OnPlay and OnPause keep the mirror in sync with the actual element state.
func (p *Player) OnPlay() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isPlaying = true
}

func (p *Player) OnPause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isPlaying = false
}

// Status returns a copy of the transport state.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Status{
		CurrentIndex: p.queue.CurrentIndex,
		IsPlaying:    p.isPlaying,
		CurTime:      p.curTime,
		Duration:     p.duration,
	}
	if len(p.queue.Tracks) > 0 {
		st.Queue = make([]state.Track, len(p.queue.Tracks))
		copy(st.Queue, p.queue.Tracks)
	}
	if cur := p.queue.Current(); cur != nil {
		tr := *cur
		st.Track = &tr
	}
	return st
}

func (p *Player) advance() {
	if !p.queue.HasNext() {
		return
	}
	p.queue.CurrentIndex++
	p.loadCurrent()
}

// loadCurrent swaps the media source to the track under the cursor and
// requests playback. Tracked time and duration reset to zero until the
// capability reports fresh metadata.
func (p *Player) loadCurrent() {
	cur := p.queue.Current()
	if cur == nil {
		p.media.Pause()
		p.media.Unload()
		p.isPlaying = false
		p.curTime = 0
		p.duration = 0
		return
	}

	p.curTime = 0
	p.duration = 0
	p.media.SetSource(cur.URL)
	p.media.Load()
	if err := p.media.Play(); err != nil {
		p.isPlaying = false
	}
}
