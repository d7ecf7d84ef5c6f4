// Package pipeline implements the real-time access decision pipeline for a
// single camera: motion gating, recognition, plate matching, decision and
// the event sink writes.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/your-org/gatekeeper/internal/capture"
	"github.com/your-org/gatekeeper/internal/config"
	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/observability"
	"github.com/your-org/gatekeeper/internal/plate"
	"github.com/your-org/gatekeeper/internal/recognition"
)

// Recognizer submits one frame to the external recognition service.
type Recognizer interface {
	Recognize(ctx context.Context, jpegFrame []byte) (*recognition.Result, error)
}

// Directory is the read-only account directory lookup.
type Directory interface {
	FindVehicleByPlate(ctx context.Context, canonicalKey string) (*models.Vehicle, error)
}

// Sink is the append-only event sink for decisions.
type Sink interface {
	AppendAccessLog(ctx context.Context, entry *models.AccessLog) error
	AppendAlert(ctx context.Context, alert *models.Alert) error
}

// SnapshotStore stores trigger frames and plate crops in the document store.
type SnapshotStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Publisher broadcasts completed decisions for live display.
type Publisher interface {
	PublishDecision(ctx context.Context, cameraID string, event any) error
}

// Deps carries the pipeline's collaborators. Snapshots and Publisher are
// optional; the decision cycle works without them.
type Deps struct {
	Recognizer Recognizer
	Directory  Directory
	Sink       Sink
	Snapshots  SnapshotStore
	Publisher  Publisher
}

// Pipeline runs the decision cycle for one camera. At most one cycle is in
// flight at any time, which serializes the sink writes of this instance.
type Pipeline struct {
	camera models.Camera
	cfg    config.PipelineConfig
	gate   *MotionGate
	deps   Deps
}

func New(camera models.Camera, cfg config.PipelineConfig, deps Deps) *Pipeline {
	return &Pipeline{
		camera: camera,
		cfg:    cfg,
		gate:   NewMotionGate(cfg.MotionThreshold, cfg.Cooldown),
		deps:   deps,
	}
}

// State reports the gate's lifecycle state for status endpoints.
func (p *Pipeline) State() State {
	return p.gate.State()
}

// HandleFrame feeds one sampled frame through the motion gate and, on a
// trigger, starts an asynchronous decision cycle. The sampling loop never
// blocks on the cycle. The cycle context is detached from the sampler's so
// that stopping the camera lets an outstanding recognition call finish
// naturally instead of stranding the in-flight guard.
func (p *Pipeline) HandleFrame(ctx context.Context, f *capture.Frame) {
	observability.FramesSampled.WithLabelValues(p.camera.Name).Inc()

	if !p.gate.Observe(f) {
		return
	}

	observability.MotionTriggers.WithLabelValues(p.camera.Name).Inc()
	slog.Debug("motion trigger", "camera", p.camera.Name, "time", f.Time)

	go p.runCycle(context.WithoutCancel(ctx), f)
}

// runCycle executes one decision cycle: recognize, match, decide, append.
// Every exit path releases the gate; every failure is terminal for this
// cycle only.
func (p *Pipeline) runCycle(ctx context.Context, f *capture.Frame) {
	defer p.gate.Release()

	res, err := p.deps.Recognizer.Recognize(ctx, f.JPEG)
	if err != nil {
		slog.Error("recognition call failed", "camera", p.camera.Name, "error", err)
		return
	}

	if len(res.Texts) == 0 {
		slog.Debug("no plate found in frame", "camera", p.camera.Name)
		return
	}

	normalized, err := plate.Candidate(res.Texts[0], p.cfg.MinPlateLength)
	if err != nil {
		if errors.Is(err, plate.ErrMalformed) {
			// Benign: treated as "no plate detected", nothing is written.
			slog.Debug("candidate unusable", "camera", p.camera.Name, "raw", res.Texts[0])
			return
		}
		slog.Error("normalize candidate", "camera", p.camera.Name, "error", err)
		return
	}

	vehicle, err := p.deps.Directory.FindVehicleByPlate(ctx, plate.CanonicalKey(normalized))
	if err != nil {
		// A lookup failure must never be conflated with "unregistered";
		// no decision is made this cycle.
		observability.LookupFailures.Inc()
		slog.Error("directory lookup failed", "camera", p.camera.Name, "plate", normalized, "error", err)
		return
	}

	d := Decide(vehicle, normalized)
	logID := uuid.New()
	snapshotKey := p.storeSnapshots(ctx, logID, f, res)

	entry := &models.AccessLog{
		ID:          logID,
		CameraID:    &p.camera.ID,
		User:        d.User,
		Plate:       d.Plate,
		Outcome:     d.Outcome,
		SnapshotKey: snapshotKey,
		Time:        f.Time,
	}
	if err := p.deps.Sink.AppendAccessLog(ctx, entry); err != nil {
		// The log is authoritative: without it no alert may be written,
		// or the alert would reference a decision that was never recorded.
		observability.SinkWriteFailures.WithLabelValues("log").Inc()
		slog.Error("append access log failed", "camera", p.camera.Name, "plate", d.Plate, "error", err)
		return
	}

	observability.Decisions.WithLabelValues(p.camera.Name, string(d.Outcome)).Inc()
	slog.Info("decision",
		"camera", p.camera.Name,
		"plate", d.Plate,
		"user", d.User,
		"outcome", d.Outcome,
		"label", d.Label,
	)

	if d.Alert {
		alert := &models.Alert{
			ID:          uuid.New(),
			CameraID:    &p.camera.ID,
			Plate:       d.Plate,
			Message:     d.Message,
			Severity:    d.Severity,
			SnapshotKey: snapshotKey,
			Time:        f.Time,
		}
		if err := p.deps.Sink.AppendAlert(ctx, alert); err != nil {
			// The log already succeeded; the cycle stays complete.
			observability.SinkWriteFailures.WithLabelValues("alert").Inc()
			slog.Error("append alert failed", "camera", p.camera.Name, "plate", d.Plate, "error", err)
		}
	}

	p.publish(ctx, entry, d)
}

// storeSnapshots uploads the trigger frame and, when the service returned
// one, the primary plate crop. Best-effort: a failed upload only costs the
// snapshot reference.
func (p *Pipeline) storeSnapshots(ctx context.Context, logID uuid.UUID, f *capture.Frame, res *recognition.Result) string {
	if p.deps.Snapshots == nil {
		return ""
	}

	key := fmt.Sprintf("captures/%s/%s.jpg", p.camera.ID, logID)
	if err := p.deps.Snapshots.PutObject(ctx, key, f.JPEG, "image/jpeg"); err != nil {
		slog.Warn("store trigger frame", "camera", p.camera.Name, "error", err)
		return ""
	}

	if len(res.PlateImages) > 0 {
		if crop, err := decodeDataURL(res.PlateImages[0]); err == nil {
			cropKey := fmt.Sprintf("plates/%s/%s.jpg", p.camera.ID, logID)
			if err := p.deps.Snapshots.PutObject(ctx, cropKey, crop, "image/jpeg"); err != nil {
				slog.Warn("store plate crop", "camera", p.camera.Name, "error", err)
			}
		}
	}

	return key
}

func (p *Pipeline) publish(ctx context.Context, entry *models.AccessLog, d Decision) {
	if p.deps.Publisher == nil {
		return
	}

	event := models.DecisionEvent{
		CameraID:    p.camera.ID,
		LogID:       entry.ID,
		User:        entry.User,
		Plate:       entry.Plate,
		Outcome:     entry.Outcome,
		Alerted:     d.Alert,
		Severity:    d.Severity,
		Message:     d.Message,
		SnapshotKey: entry.SnapshotKey,
		Time:        entry.Time,
	}
	if err := p.deps.Publisher.PublishDecision(ctx, p.camera.ID.String(), event); err != nil {
		slog.Warn("publish decision event", "camera", p.camera.Name, "error", err)
	}
}

func decodeDataURL(s string) ([]byte, error) {
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		s = s[idx+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}
