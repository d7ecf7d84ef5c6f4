package pipeline

import (
	"testing"
	"time"

	"github.com/your-org/gatekeeper/internal/capture"
)

// uniformFrame builds a w*h frame with every pixel set to the given RGB value.
func uniformFrame(w, h int, r, g, b uint8) *capture.Frame {
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 255
	}
	return &capture.Frame{Width: w, Height: h, Pix: pix, Time: time.Now()}
}

// fakeClock lets tests advance the gate's wall clock manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1700000000, 0)} }

func newTestGate(clk *fakeClock) *MotionGate {
	g := NewMotionGate(35, 5*time.Second)
	g.now = clk.now
	return g
}

func TestMotionScoreIdenticalFrames(t *testing.T) {
	a := uniformFrame(8, 8, 120, 80, 40)
	b := uniformFrame(8, 8, 120, 80, 40)
	if score := MotionScore(a, b); score != 0 {
		t.Errorf("score = %v, want 0 for identical frames", score)
	}
}

func TestMotionScoreUniformDifference(t *testing.T) {
	a := uniformFrame(4, 4, 0, 0, 0)
	b := uniformFrame(4, 4, 60, 60, 60)
	if score := MotionScore(a, b); score != 60 {
		t.Errorf("score = %v, want 60", score)
	}
}

func TestMotionScoreMismatchedDimensions(t *testing.T) {
	a := uniformFrame(4, 4, 0, 0, 0)
	b := uniformFrame(8, 8, 255, 255, 255)
	if score := MotionScore(a, b); score != 0 {
		t.Errorf("score = %v, want 0 for mismatched dimensions", score)
	}
}

func TestGateFirstFrameNeverTriggers(t *testing.T) {
	g := newTestGate(newFakeClock())
	if g.Observe(uniformFrame(4, 4, 255, 255, 255)) {
		t.Error("first frame must not trigger")
	}
	if g.State() != StateArmed {
		t.Errorf("state = %v, want armed after first frame", g.State())
	}
}

func TestGateIdenticalFramesNeverTrigger(t *testing.T) {
	g := newTestGate(newFakeClock())
	f := uniformFrame(4, 4, 100, 100, 100)
	g.Observe(f)
	for i := 0; i < 5; i++ {
		if g.Observe(uniformFrame(4, 4, 100, 100, 100)) {
			t.Fatalf("identical frame %d triggered", i)
		}
	}
}

func TestGateTriggersAboveThreshold(t *testing.T) {
	g := newTestGate(newFakeClock())
	g.Observe(uniformFrame(4, 4, 0, 0, 0))
	if !g.Observe(uniformFrame(4, 4, 200, 200, 200)) {
		t.Fatal("expected trigger for high motion")
	}
	if g.State() != StateInFlight {
		t.Errorf("state = %v, want in_flight after trigger", g.State())
	}
}

func TestGateBelowThresholdDoesNotTrigger(t *testing.T) {
	g := newTestGate(newFakeClock())
	g.Observe(uniformFrame(4, 4, 0, 0, 0))
	if g.Observe(uniformFrame(4, 4, 30, 30, 30)) {
		t.Error("score 30 must not exceed threshold 35")
	}
}

func TestGateCooldownSuppressesSecondTrigger(t *testing.T) {
	clk := newFakeClock()
	g := newTestGate(clk)

	g.Observe(uniformFrame(4, 4, 0, 0, 0))
	if !g.Observe(uniformFrame(4, 4, 255, 255, 255)) {
		t.Fatal("expected first trigger")
	}
	g.Release()

	// 2s later: high motion again, still inside the 5s cooldown.
	clk.advance(2 * time.Second)
	if g.Observe(uniformFrame(4, 4, 0, 0, 0)) {
		t.Error("trigger inside cooldown window")
	}

	// Past the cooldown the gate arms again.
	clk.advance(4 * time.Second)
	if !g.Observe(uniformFrame(4, 4, 255, 255, 255)) {
		t.Error("expected trigger after cooldown elapsed")
	}
}

func TestGateInFlightSuppressesEvaluation(t *testing.T) {
	clk := newFakeClock()
	g := newTestGate(clk)

	g.Observe(uniformFrame(4, 4, 0, 0, 0))
	if !g.Observe(uniformFrame(4, 4, 255, 255, 255)) {
		t.Fatal("expected trigger")
	}

	// A slow recognition call: even far past the cooldown, no second
	// trigger may fire while the first cycle is unresolved.
	clk.advance(time.Minute)
	if g.Observe(uniformFrame(4, 4, 0, 0, 0)) {
		t.Error("trigger while a cycle is in flight")
	}

	g.Release()
	if g.State() != StateArmed {
		t.Errorf("state = %v, want armed after release", g.State())
	}
}
