package pipeline

import (
	"sync"
	"time"

	"github.com/your-org/gatekeeper/internal/capture"
)

// State of the motion gate for one camera.
type State int

const (
	// StateIdle means no previous frame has been observed yet.
	StateIdle State = iota
	// StateArmed means the gate is comparing frames and may trigger.
	StateArmed
	// StateInFlight means a decision cycle is running; motion evaluation
	// is suspended until Release.
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateInFlight:
		return "in_flight"
	}
	return "unknown"
}

// MotionGate decides when a frame is worth an expensive recognition call.
// It owns the previous frame, the last-trigger timestamp and the in-flight
// flag; nothing else reads or writes them. One gate per camera source.
type MotionGate struct {
	threshold float64
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	prev        *capture.Frame
	lastTrigger time.Time
	inFlight    bool
}

func NewMotionGate(threshold float64, cooldown time.Duration) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Observe evaluates one frame and reports whether a decision cycle should
// start. It triggers only when the motion score exceeds the threshold, the
// cooldown has elapsed since the last trigger, and no cycle is in flight.
// The first frame ever observed never triggers. While a cycle is in flight
// evaluation is suspended entirely; the retained previous frame is not
// replaced until evaluation resumes.
func (g *MotionGate) Observe(f *capture.Frame) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return false
	}

	if g.prev == nil {
		g.prev = f
		return false
	}

	score := MotionScore(g.prev, f)
	g.prev = f

	if score <= g.threshold {
		return false
	}

	now := g.now()
	if !g.lastTrigger.IsZero() && now.Sub(g.lastTrigger) < g.cooldown {
		return false
	}

	g.lastTrigger = now
	g.inFlight = true
	return true
}

// Release clears the in-flight guard after a decision cycle resolves,
// whether it succeeded or failed. Sampling resumes on the next period.
func (g *MotionGate) Release() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

// State reports the gate's current lifecycle state.
func (g *MotionGate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.inFlight:
		return StateInFlight
	case g.prev != nil:
		return StateArmed
	}
	return StateIdle
}

// MotionScore is the mean absolute per-channel difference between two
// frames on a 0-255 scale. Alpha is ignored. Frames of different
// dimensions score zero; the comparison restarts at the new geometry.
func MotionScore(a, b *capture.Frame) float64 {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pix) != len(b.Pix) {
		return 0
	}

	var total uint64
	for i := 0; i+3 < len(a.Pix); i += 4 {
		total += absDiff(a.Pix[i], b.Pix[i])
		total += absDiff(a.Pix[i+1], b.Pix[i+1])
		total += absDiff(a.Pix[i+2], b.Pix[i+2])
	}

	pixels := a.Width * a.Height
	if pixels == 0 {
		return 0
	}
	return float64(total) / float64(pixels*3)
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
