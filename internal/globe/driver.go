package globe

import (
	"math"
	"sync"
	"time"
)

// Driver states. Exactly one driver may mutate the rotation vector at a
// time; the state machine replaces the ad hoc timer-cancellation flags the
// interaction model otherwise needs.
type DriverState int

const (
	StateAutoRotating DriverState = iota
	StateDragging
	StateTweening
	StateCooldown // drag released, waiting to resume auto-rotation
	StatePaused   // selection holds the globe still until cleared
)

func (s DriverState) String() string {
	switch s {
	case StateAutoRotating:
		return "auto-rotating"
	case StateDragging:
		return "dragging"
	case StateTweening:
		return "tweening"
	case StateCooldown:
		return "cooldown"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

const (
	// AutoRotateStep is degrees of longitude added per tick.
	AutoRotateStep = 0.2
	// AutoRotateTick is the nominal tick period.
	AutoRotateTick = 50 * time.Millisecond
	// DragDegreesPerPixel converts pointer movement to rotation.
	DragDegreesPerPixel = 0.5
	// ResumeCooldown is how long after a drag ends before auto-rotation
	// resumes.
	ResumeCooldown = 3 * time.Second
	// TweenDuration is the eased recenter animation length.
	TweenDuration = time.Second
	// PulseDuration is the decay of the ring marking a newly centered
	// point.
	PulseDuration = 2 * time.Second

	minZoom = 1.0
	maxZoom = 8.0
)

// Driver owns the projection's rotation vector. All mutation goes through
// its methods; the state machine guarantees the auto-rotation timer, user
// drags, and recenter tweens never fight over the same state.
type Driver struct {
	mu sync.Mutex

	state DriverState
	proj  Projection

	baseScale float64
	zoom      float64

	cooldownUntil time.Time
	selectionHold bool

	tweenStart   time.Time
	tweenFrom    [2]float64
	tweenTo      [2]float64
	pulseStarted time.Time
	pulseEventID string

	lastAdvance time.Time
}

// NewDriver returns a driver in the auto-rotating state.
func NewDriver(size float64, now time.Time) *Driver {
	p := NewProjection(size)
	return &Driver{
		state:       StateAutoRotating,
		proj:        p,
		baseScale:   p.Scale,
		zoom:        1,
		lastAdvance: now,
	}
}

// State returns the current driver state.
func (d *Driver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Projection returns a snapshot of the current projection.
func (d *Driver) Projection() Projection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.proj
}

// Advance steps time-driven motion: auto-rotation accumulates at
// AutoRotateStep per AutoRotateTick while auto-rotating, tweens
// interpolate toward their target, and an elapsed cooldown resumes
// auto-rotation. Other states ignore the tick, which is what enforces the
// single-driver ownership rule.
func (d *Driver) Advance(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := now.Sub(d.lastAdvance)
	d.lastAdvance = now
	if elapsed < 0 {
		return
	}

	switch d.state {
	case StateAutoRotating:
		ticks := float64(elapsed) / float64(AutoRotateTick)
		d.proj.Rotation[0] = wrapDegrees(d.proj.Rotation[0] + AutoRotateStep*ticks)
	case StateCooldown:
		if !now.Before(d.cooldownUntil) {
			d.state = StateAutoRotating
		}
	case StateTweening:
		t := float64(now.Sub(d.tweenStart)) / float64(TweenDuration)
		if t >= 1 {
			d.proj.Rotation = d.tweenTo
			// selection keeps the centered point still; Resume (on
			// clear-selection) restarts auto-rotation
			d.state = StatePaused
			return
		}
		e := easeCubicInOut(t)
		d.proj.Rotation[0] = d.tweenFrom[0] + (d.tweenTo[0]-d.tweenFrom[0])*e
		d.proj.Rotation[1] = d.tweenFrom[1] + (d.tweenTo[1]-d.tweenFrom[1])*e
	}
}

// BeginDrag transitions to the dragging state, cancelling auto-rotation
// or an in-flight tween.
func (d *Driver) BeginDrag(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateDragging
	d.lastAdvance = now
}

// Drag applies pointer movement while dragging. Calls outside the
// dragging state are ignored.
func (d *Driver) Drag(dx, dy float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateDragging {
		return
	}
	d.proj.Rotation[0] = wrapDegrees(d.proj.Rotation[0] + dx*DragDegreesPerPixel)
	d.proj.Rotation[1] = clamp(d.proj.Rotation[1]-dy*DragDegreesPerPixel, -90, 90)
}

// EndDrag starts the resume cooldown. While a selection holds the globe
// the release re-enters the paused state instead, so inspecting the
// surroundings of a centered point never restarts auto-rotation.
func (d *Driver) EndDrag(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateDragging {
		return
	}
	if d.selectionHold {
		d.state = StatePaused
		return
	}
	d.state = StateCooldown
	d.cooldownUntil = now.Add(ResumeCooldown)
}

// TweenTo starts the eased recenter onto (lat, lon), suppressing
// auto-rotation for the duration. eventID tags the pulse-ring marker.
func (d *Driver) TweenTo(lat, lon float64, eventID string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateTweening
	d.selectionHold = true
	d.tweenStart = now
	d.tweenFrom = d.proj.Rotation
	d.tweenTo = [2]float64{-lon, -lat}
	d.pulseStarted = now
	d.pulseEventID = eventID
	d.lastAdvance = now
}

// Resume returns to auto-rotation immediately, e.g. when a selection is
// cleared.
func (d *Driver) Resume(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectionHold = false
	if d.state == StateDragging {
		// The drag in flight keeps ownership; its EndDrag now runs the
		// normal cooldown.
		return
	}
	d.state = StateAutoRotating
	d.lastAdvance = now
}

// Zoom applies one discrete wheel/pinch step, clamped to [1, 8]× the base
// scale.
func (d *Driver) Zoom(in bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	factor := 0.9
	if in {
		factor = 1.1
	}
	d.zoom = clamp(d.zoom*factor, minZoom, maxZoom)
	d.proj.Scale = d.baseScale * d.zoom
}

// Pulse reports the active pulse-ring marker, if its decay window is
// still open: the tagged event and remaining intensity in (0, 1].
func (d *Driver) Pulse(now time.Time) (eventID string, intensity float64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pulseEventID == "" {
		return "", 0, false
	}
	t := float64(now.Sub(d.pulseStarted)) / float64(PulseDuration)
	if t >= 1 {
		return "", 0, false
	}
	return d.pulseEventID, 1 - t, true
}

func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func easeCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 1 + u*u*u/2
}
