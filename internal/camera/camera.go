// Package camera keeps two concurrently mounted map renderer instances
// visually locked during side-by-side fiscal-year comparison.
package camera

import (
	"errors"
	"sync"
	"time"
)

// Camera is a renderer viewport: center, zoom, bearing, pitch.
type Camera struct {
	Lng     float64 `json:"lng"`
	Lat     float64 `json:"lat"`
	Zoom    float64 `json:"zoom"`
	Bearing float64 `json:"bearing"`
	Pitch   float64 `json:"pitch"`
}

// Instance is one mounted renderer. OnMove registers a move handler and
// returns its remove function; JumpTo applies a camera immediately, without
// animation. A JumpTo may emit the instance's own move event, possibly
// asynchronously.
type Instance interface {
	Camera() Camera
	JumpTo(Camera)
	OnMove(func()) (remove func())
}

// FrameScheduler defers a function to the next render-frame tick. The echo
// guard is cleared on a frame tick rather than synchronously because a
// JumpTo's move event may fire after the call returns.
type FrameScheduler interface {
	Schedule(func())
}

// TickScheduler schedules on a short timer, approximating a frame tick.
type TickScheduler struct {
	Interval time.Duration
}

func (t TickScheduler) Schedule(fn func()) {
	d := t.Interval
	if d <= 0 {
		d = 16 * time.Millisecond
	}
	time.AfterFunc(d, fn)
}

// ErrNotMounted is returned when one of the two instances never mounted
// within the attach timeout. Synchronization is simply not established.
var ErrNotMounted = errors.New("camera: instance not mounted before timeout")

// Coordinator synchronizes the primary and secondary map cameras. Both
// instances mount asynchronously; Attach waits for both readiness signals
// with a bounded timeout before wiring the move handlers.
type Coordinator struct {
	frames FrameScheduler

	mu        sync.Mutex
	primary   Instance
	secondary Instance
	syncing   bool
	removes   []func()
	attached  bool

	primaryReady   chan struct{}
	secondaryReady chan struct{}
}

// NewCoordinator creates a coordinator using the given frame scheduler.
func NewCoordinator(frames FrameScheduler) *Coordinator {
	return &Coordinator{
		frames:         frames,
		primaryReady:   make(chan struct{}),
		secondaryReady: make(chan struct{}),
	}
}

// MountPrimary registers the primary renderer instance.
func (c *Coordinator) MountPrimary(inst Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.primary != nil {
		return
	}
	c.primary = inst
	close(c.primaryReady)
}

// MountSecondary registers the secondary renderer instance.
func (c *Coordinator) MountSecondary(inst Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.secondary != nil {
		return
	}
	c.secondary = inst
	close(c.secondaryReady)
}

// Attach blocks until both instances have mounted or the timeout elapses,
// then wires the guarded move handlers and performs one primary→secondary
// sync to establish a consistent starting view. Attaching twice is a no-op.
func (c *Coordinator) Attach(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for _, ready := range []<-chan struct{}{c.primaryReady, c.secondaryReady} {
		select {
		case <-ready:
		case <-deadline.C:
			return ErrNotMounted
		}
	}

	c.mu.Lock()
	if c.attached {
		c.mu.Unlock()
		return nil
	}
	c.attached = true
	p, s := c.primary, c.secondary
	c.removes = append(c.removes,
		p.OnMove(func() { c.copyCamera(p, s) }),
		s.OnMove(func() { c.copyCamera(s, p) }),
	)
	c.mu.Unlock()

	// Initial one-directional sync, guarded like any other move.
	c.copyCamera(p, s)
	return nil
}

// Detach removes both move handlers. Safe to call without a prior Attach.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	removes := c.removes
	c.removes = nil
	c.attached = false
	c.mu.Unlock()
	for _, remove := range removes {
		remove()
	}
}

// copyCamera pushes from's camera onto to, suppressing the echoed move event
// that the assignment produces. The guard clears on the next frame tick, not
// synchronously, because the echo may arrive after JumpTo returns.
func (c *Coordinator) copyCamera(from, to Instance) {
	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return
	}
	c.syncing = true
	c.mu.Unlock()

	to.JumpTo(from.Camera())

	c.frames.Schedule(func() {
		c.mu.Lock()
		c.syncing = false
		c.mu.Unlock()
	})
}
