package playback

import (
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"streamix/models"
)

var (
	ErrNoSession       = errors.New("no playback session open")
	ErrContentRequired = errors.New("content id is required")
)

// MediaPlayer is the controller's port to the actual playback surface. Seek
// and volume calls are fire-and-forget; Play and SetFullscreen report
// whether the surface accepted the request.
type MediaPlayer interface {
	Play() error
	Pause()
	Seek(position float64)
	SetVolume(level float64)
	SetMuted(muted bool)
	SetFullscreen(on bool) error
}

// ProgressSink is where durable watch positions go.
type ProgressSink interface {
	Upsert(rec models.WatchProgressRecord) error
	FindByContentID(profileID int, contentID string) (models.WatchProgressRecord, bool)
}

// Controller owns the single active playback session: lifecycle state,
// transient position and volume, and the write-through of durable progress.
// At most one session is open at a time.
type Controller struct {
	mu          sync.Mutex
	player      MediaPlayer
	sink        ProgressSink
	minProgress float64 // absolute position a session must pass before commits

	session *sessionState
}

type sessionState struct {
	id           string
	profileID    int
	content      models.PlayableContent
	state        models.SessionState
	resumeOffset float64
	position     float64
	duration     float64
	volume       float64
	muted        bool
	fullscreen   bool
	pendingSeek  float64 // applied once duration is known; <0 means none
	startedAt    time.Time
}

// NewController wires the controller to a player surface and a progress
// sink. minProgress <= 0 disables the durability threshold.
func NewController(player MediaPlayer, sink ProgressSink, minProgress float64) *Controller {
	return &Controller{
		player:      player,
		sink:        sink,
		minProgress: minProgress,
	}
}

// Open starts a session for one content item, re-entering loading when one
// is already running: the prior session's transient state is discarded, its
// committed progress survives. The resume offset is taken from resumeHint
// when positive, otherwise from the profile's stored progress, otherwise
// zero. The actual seek happens once the player reports its duration.
func (c *Controller) Open(profileID int, content models.PlayableContent, resumeHint float64) (models.SessionSnapshot, error) {
	if strings.TrimSpace(content.ID) == "" {
		return models.SessionSnapshot{}, ErrContentRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := c.session; prev != nil {
		if prev.state == models.SessionPlaying {
			c.player.Pause()
		}
		if prev.position > c.minProgress && prev.duration > 0 && prev.state != models.SessionEnded {
			c.commitLocked()
		}
		c.session = nil
	}

	offset := 0.0
	switch {
	case resumeHint > 0:
		offset = resumeHint
	default:
		if rec, ok := c.sink.FindByContentID(profileID, content.ID); ok {
			offset = rec.PositionSeconds
		}
	}

	c.session = &sessionState{
		id:           uuid.NewString(),
		profileID:    profileID,
		content:      content,
		state:        models.SessionLoading,
		resumeOffset: offset,
		volume:       1,
		pendingSeek:  -1,
		startedAt:    time.Now().UTC(),
	}
	if offset > 0 {
		c.session.pendingSeek = offset
	}

	return c.snapshotLocked(), nil
}

// HandleLoaded is called when the player has media metadata. A deferred
// seek, if any, is applied now and playback is attempted.
func (c *Controller) HandleLoaded(duration float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}

	if duration > 0 && !math.IsNaN(duration) {
		s.duration = duration
	}
	if s.pendingSeek >= 0 && s.duration > 0 {
		c.player.Seek(s.pendingSeek)
		s.position = s.pendingSeek
		s.pendingSeek = -1
	}

	c.playLocked()
	return nil
}

// Play asks the surface to start. A rejected play request is swallowed and
// leaves the session paused; the viewer can retry.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoSession
	}
	c.playLocked()
	return nil
}

func (c *Controller) playLocked() {
	if err := c.player.Play(); err != nil {
		log.Printf("[playback] play rejected: %v", err)
		c.session.state = models.SessionPaused
		return
	}
	c.session.state = models.SessionPlaying
}

// Pause stops playback without closing the session.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoSession
	}
	c.player.Pause()
	c.session.state = models.SessionPaused
	return nil
}

// TogglePlay flips between playing and paused.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if s.state == models.SessionPlaying {
		c.player.Pause()
		s.state = models.SessionPaused
		return nil
	}
	c.playLocked()
	return nil
}

// HandleTimeUpdate ingests a position report from the surface. Once the
// position passes the durability threshold the progress record is written
// through to the sink. Nothing durable is written while the duration is
// still unknown. A failed write is logged and retried on the next report.
func (c *Controller) HandleTimeUpdate(position, duration float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}

	if math.IsNaN(position) || position < 0 {
		return nil
	}
	s.position = position
	if duration > 0 && !math.IsNaN(duration) {
		s.duration = duration
	}

	if position <= c.minProgress || s.duration <= 0 {
		return nil
	}
	c.commitLocked()
	return nil
}

// Seek moves the playhead to a percentage of the running time. While the
// duration is unknown there is no absolute time to compute, so the request
// is dropped.
func (c *Controller) Seek(percent float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if s.duration <= 0 {
		return nil
	}

	position := percent / 100 * s.duration
	c.player.Seek(position)
	s.position = position
	return nil
}

// SetVolume sets the output level in [0, 1]. Level zero also mutes; any
// positive level unmutes.
func (c *Controller) SetVolume(level float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if math.IsNaN(level) {
		return nil
	}
	level = math.Max(0, math.Min(1, level))

	s.volume = level
	s.muted = level == 0
	c.player.SetVolume(level)
	c.player.SetMuted(s.muted)
	return nil
}

// ToggleMute flips the mute flag without touching the stored level.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}
	s.muted = !s.muted
	c.player.SetMuted(s.muted)
	return nil
}

// ToggleFullscreen asks the surface to change mode and records the new mode
// only when the surface confirms. A refusal leaves the tracked state as is.
func (c *Controller) ToggleFullscreen() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}

	want := !s.fullscreen
	if err := c.player.SetFullscreen(want); err != nil {
		log.Printf("[playback] fullscreen change rejected: %v", err)
		return nil
	}
	s.fullscreen = want
	return nil
}

// HandleEnded marks natural completion. The final position is committed so
// the record reflects a finished title.
func (c *Controller) HandleEnded() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if s.duration > 0 {
		s.position = s.duration
	}
	s.state = models.SessionEnded
	if s.position > c.minProgress && s.duration > 0 {
		c.commitLocked()
	}
	return nil
}

// Close tears the session down. Progress committed during the session
// survives; a final commit captures the last known position when it passed
// the threshold.
func (c *Controller) Close() (models.SessionSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return models.SessionSnapshot{}, ErrNoSession
	}

	if s.state == models.SessionPlaying {
		c.player.Pause()
	}
	if s.position > c.minProgress && s.duration > 0 && s.state != models.SessionEnded {
		c.commitLocked()
	}

	final := c.snapshotLocked()
	c.session = nil
	return final, nil
}

// Snapshot returns the current session view, or ErrNoSession.
func (c *Controller) Snapshot() (models.SessionSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return models.SessionSnapshot{}, ErrNoSession
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) commitLocked() {
	s := c.session
	rec := models.WatchProgressRecord{
		ContentID:       s.content.ID,
		ProfileID:       s.profileID,
		ContentType:     s.content.Type,
		PositionSeconds: s.position,
		TotalSeconds:    s.duration,
		PercentComplete: percent(s.position, s.duration),
		LastWatchedAt:   time.Now().UTC(),
		Meta:            s.content.Meta,
	}
	if err := c.sink.Upsert(rec); err != nil {
		log.Printf("[playback] commit progress for %s: %v", s.content.ID, err)
	}
}

func (c *Controller) snapshotLocked() models.SessionSnapshot {
	s := c.session
	return models.SessionSnapshot{
		ID:           s.id,
		ProfileID:    s.profileID,
		Content:      s.content,
		State:        s.state,
		ResumeOffset: s.resumeOffset,
		Position:     s.position,
		Duration:     s.duration,
		Percent:      percent(s.position, s.duration),
		Volume:       s.volume,
		Muted:        s.muted,
		Fullscreen:   s.fullscreen,
		StartedAt:    s.startedAt,
	}
}

// percent guards against an unknown or zero duration; the ratio is clamped
// to [0, 100].
func percent(position, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsNaN(position) {
		return 0
	}
	p := position / duration * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
