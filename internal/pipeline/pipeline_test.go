package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/gatekeeper/internal/capture"
	"github.com/your-org/gatekeeper/internal/config"
	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/recognition"
)

type fakeRecognizer struct {
	mu    sync.Mutex
	res   recognition.Result
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, jpegFrame []byte) (*recognition.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := f.res
	return &res, nil
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDirectory struct {
	mu       sync.Mutex
	vehicles map[string]*models.Vehicle
	err      error
}

func (f *fakeDirectory) FindVehicleByPlate(ctx context.Context, canonicalKey string) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vehicles[canonicalKey], nil
}

type fakeSink struct {
	mu       sync.Mutex
	logs     []*models.AccessLog
	alerts   []*models.Alert
	logErr   error
	alertErr error
}

func (f *fakeSink) AppendAccessLog(ctx context.Context, entry *models.AccessLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeSink) AppendAlert(ctx context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alertErr != nil {
		return f.alertErr
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeSink) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs), len(f.alerts)
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		SamplePeriod:    time.Second,
		MotionThreshold: 35,
		Cooldown:        5 * time.Second,
		MinPlateLength:  6,
	}
}

func newTestPipeline(rec *fakeRecognizer, dir *fakeDirectory, sink *fakeSink, clk *fakeClock) *Pipeline {
	cam := models.Camera{ID: uuid.New(), Name: "gate-1"}
	p := New(cam, testConfig(), Deps{Recognizer: rec, Directory: dir, Sink: sink})
	p.gate.now = clk.now
	return p
}

// trigger arms the gate with a dark frame then feeds a bright one.
func trigger(p *Pipeline) {
	ctx := context.Background()
	p.HandleFrame(ctx, uniformFrame(4, 4, 0, 0, 0))
	p.HandleFrame(ctx, uniformFrame(4, 4, 255, 255, 255))
}

// waitIdle blocks until the in-flight cycle (if any) resolves.
func waitIdle(t *testing.T, p *Pipeline) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.State() != StateInFlight {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("decision cycle did not resolve")
}

func TestCycleApprovedVehicle(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"ABC 123"}}}
	dir := &fakeDirectory{vehicles: map[string]*models.Vehicle{
		"ABC123": vehicle("ABC-123", "Ali Raza", models.VehicleStatusApproved),
	}}
	sink := &fakeSink{}
	p := newTestPipeline(rec, dir, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	logs, alerts := sink.counts()
	if logs != 1 || alerts != 0 {
		t.Fatalf("logs/alerts = %d/%d, want 1/0", logs, alerts)
	}
	entry := sink.logs[0]
	if entry.User != "Ali Raza" || entry.Plate != "ABC-123" || entry.Outcome != models.OutcomeEntry {
		t.Errorf("log = {%s %s %s}, want {Ali Raza ABC-123 Entry}", entry.User, entry.Plate, entry.Outcome)
	}
}

func TestCycleUnregisteredVehicle(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"xyz999"}}}
	sink := &fakeSink{}
	p := newTestPipeline(rec, &fakeDirectory{}, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	logs, alerts := sink.counts()
	if logs != 1 || alerts != 1 {
		t.Fatalf("logs/alerts = %d/%d, want 1/1", logs, alerts)
	}
	entry := sink.logs[0]
	if entry.User != "Unknown" || entry.Plate != "XYZ999" || entry.Outcome != models.OutcomeDenied {
		t.Errorf("log = {%s %s %s}, want {Unknown XYZ999 Denied}", entry.User, entry.Plate, entry.Outcome)
	}
	if sink.alerts[0].Severity != models.SeverityCritical {
		t.Errorf("alert severity = %s, want Critical", sink.alerts[0].Severity)
	}
}

func TestCyclePendingVehicleWarns(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"LEA-4821"}}}
	dir := &fakeDirectory{vehicles: map[string]*models.Vehicle{
		"LEA4821": vehicle("LEA-4821", "Sana Tariq", models.VehicleStatusPending),
	}}
	sink := &fakeSink{}
	p := newTestPipeline(rec, dir, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	logs, alerts := sink.counts()
	if logs != 1 || alerts != 1 {
		t.Fatalf("logs/alerts = %d/%d, want 1/1", logs, alerts)
	}
	if sink.logs[0].Outcome != models.OutcomeDenied {
		t.Errorf("outcome = %s, want Denied", sink.logs[0].Outcome)
	}
	if sink.alerts[0].Severity != models.SeverityWarning {
		t.Errorf("alert severity = %s, want Warning", sink.alerts[0].Severity)
	}
}

func TestCycleEmptyRecognitionWritesNothing(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{}}
	sink := &fakeSink{}
	p := newTestPipeline(rec, &fakeDirectory{}, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	if logs, alerts := sink.counts(); logs != 0 || alerts != 0 {
		t.Errorf("logs/alerts = %d/%d, want 0/0 for empty result", logs, alerts)
	}
}

func TestCycleMalformedCandidateWritesNothing(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"a1"}}}
	sink := &fakeSink{}
	p := newTestPipeline(rec, &fakeDirectory{}, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	if logs, alerts := sink.counts(); logs != 0 || alerts != 0 {
		t.Errorf("logs/alerts = %d/%d, want 0/0 for malformed candidate", logs, alerts)
	}
}

func TestCycleRecognitionFailureReleasesGate(t *testing.T) {
	rec := &fakeRecognizer{err: recognition.ErrUnavailable}
	sink := &fakeSink{}
	clk := newFakeClock()
	p := newTestPipeline(rec, &fakeDirectory{}, sink, clk)

	trigger(p)
	waitIdle(t, p)

	if logs, alerts := sink.counts(); logs != 0 || alerts != 0 {
		t.Errorf("logs/alerts = %d/%d, want 0/0 after service failure", logs, alerts)
	}

	// The guard must be released: past the cooldown a new cycle starts.
	rec.mu.Lock()
	rec.err = nil
	rec.res = recognition.Result{Texts: []string{"ABC 123"}}
	rec.mu.Unlock()

	clk.advance(6 * time.Second)
	p.HandleFrame(context.Background(), uniformFrame(4, 4, 0, 0, 0))
	p.HandleFrame(context.Background(), uniformFrame(4, 4, 255, 255, 255))
	waitIdle(t, p)

	if logs, _ := sink.counts(); logs != 1 {
		t.Errorf("logs = %d, want 1 after recovery", logs)
	}
}

func TestCycleLookupFailureMakesNoDecision(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"ABC 123"}}}
	dir := &fakeDirectory{err: errors.New("connection refused")}
	sink := &fakeSink{}
	p := newTestPipeline(rec, dir, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	// A lookup failure is not "unregistered": no log, no critical alert.
	if logs, alerts := sink.counts(); logs != 0 || alerts != 0 {
		t.Errorf("logs/alerts = %d/%d, want 0/0 on lookup failure", logs, alerts)
	}
}

func TestCycleAlertFailureKeepsLog(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"xyz999"}}}
	sink := &fakeSink{alertErr: errors.New("sink down")}
	p := newTestPipeline(rec, &fakeDirectory{}, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	// The log is authoritative; the failed alert is reported, not rolled back.
	if logs, alerts := sink.counts(); logs != 1 || alerts != 0 {
		t.Errorf("logs/alerts = %d/%d, want 1/0 when alert write fails", logs, alerts)
	}
	if p.State() != StateArmed {
		t.Errorf("state = %v, want armed after cycle", p.State())
	}
}

func TestCycleLogFailureSkipsAlert(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"xyz999"}}}
	sink := &fakeSink{logErr: errors.New("sink down")}
	p := newTestPipeline(rec, &fakeDirectory{}, sink, newFakeClock())

	trigger(p)
	waitIdle(t, p)

	// Every alert must correspond to a recorded log entry.
	if logs, alerts := sink.counts(); logs != 0 || alerts != 0 {
		t.Errorf("logs/alerts = %d/%d, want 0/0 when log write fails", logs, alerts)
	}
}

func TestSecondTriggerInsideCooldownSuppressed(t *testing.T) {
	rec := &fakeRecognizer{res: recognition.Result{Texts: []string{"ABC 123"}}}
	dir := &fakeDirectory{vehicles: map[string]*models.Vehicle{
		"ABC123": vehicle("ABC-123", "Ali Raza", models.VehicleStatusApproved),
	}}
	sink := &fakeSink{}
	clk := newFakeClock()
	p := newTestPipeline(rec, dir, sink, clk)

	trigger(p)
	waitIdle(t, p)

	// 2000ms later the same vehicle is still in front of the camera.
	clk.advance(2 * time.Second)
	p.HandleFrame(context.Background(), uniformFrame(4, 4, 0, 0, 0))
	p.HandleFrame(context.Background(), uniformFrame(4, 4, 255, 255, 255))
	waitIdle(t, p)

	if calls := rec.callCount(); calls != 1 {
		t.Errorf("recognition calls = %d, want exactly 1", calls)
	}
	if logs, _ := sink.counts(); logs != 1 {
		t.Errorf("logs = %d, want exactly 1 decision cycle", logs)
	}
}
