// Package monitor supervises one access decision pipeline per camera.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/gatekeeper/internal/capture"
	"github.com/your-org/gatekeeper/internal/config"
	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/observability"
	"github.com/your-org/gatekeeper/internal/pipeline"
	"github.com/your-org/gatekeeper/internal/storage"
)

// Command is a camera start/stop command from the API.
type Command struct {
	Action         string `json:"action"` // start, stop
	CameraID       string `json:"camera_id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	SourceType     string `json:"source_type"`
	SamplePeriodMS int    `json:"sample_period_ms"`
}

// ParseCommand parses a NATS control message.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, fmt.Errorf("parse command: %w", err)
	}
	return cmd, nil
}

type activeCamera struct {
	cancel context.CancelFunc
	source *capture.FFmpegSource
}

// Manager owns the camera sampling lifecycle. Each started camera gets its
// own FFmpeg source, motion gate and pipeline instance; nothing is shared
// between cameras, so the event sink sees independent interleaved writers.
type Manager struct {
	db    *storage.PostgresStore
	deps  pipeline.Deps
	cfg   config.PipelineConfig
	width int

	mu      sync.RWMutex
	cameras map[string]*activeCamera
}

func NewManager(db *storage.PostgresStore, deps pipeline.Deps, cfg config.PipelineConfig) *Manager {
	return &Manager{
		db:      db,
		deps:    deps,
		cfg:     cfg,
		width:   cfg.FrameWidth,
		cameras: make(map[string]*activeCamera),
	}
}

// HandleCommand processes a camera control command.
func (m *Manager) HandleCommand(ctx context.Context, cmd Command) error {
	switch cmd.Action {
	case "start":
		return m.startCamera(ctx, cmd)
	case "stop":
		return m.stopCamera(cmd.CameraID)
	default:
		return fmt.Errorf("unknown action: %s", cmd.Action)
	}
}

func (m *Manager) startCamera(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	if _, exists := m.cameras[cmd.CameraID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("camera %s already running", cmd.CameraID)
	}
	m.mu.Unlock()

	camID, err := uuid.Parse(cmd.CameraID)
	if err != nil {
		return fmt.Errorf("invalid camera id %q: %w", cmd.CameraID, err)
	}

	cam := models.Camera{
		ID:         camID,
		Name:       cmd.Name,
		URL:        cmd.URL,
		SourceType: models.CameraSourceType(cmd.SourceType),
	}

	period := m.cfg.SamplePeriod
	if cmd.SamplePeriodMS > 0 {
		period = time.Duration(cmd.SamplePeriodMS) * time.Millisecond
	}

	camCtx, cancel := context.WithCancel(ctx)
	source := &capture.FFmpegSource{}
	pipe := pipeline.New(cam, m.cfg, m.deps)

	m.mu.Lock()
	m.cameras[cmd.CameraID] = &activeCamera{cancel: cancel, source: source}
	m.mu.Unlock()

	observability.ActiveCameras.Inc()
	m.updateStatus(cmd.CameraID, models.CameraStatusRunning, "")

	slog.Info("starting camera sampling",
		"camera_id", cmd.CameraID,
		"name", cmd.Name,
		"url", cmd.URL,
		"period", period,
	)

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.cameras, cmd.CameraID)
			m.mu.Unlock()
			observability.ActiveCameras.Dec()
			slog.Info("camera sampling stopped", "camera_id", cmd.CameraID)
		}()

		const maxRetries = 3

		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				delay := time.Duration(1<<uint(attempt)) * time.Second // 2s, 4s, 8s
				slog.Warn("retrying camera sampling",
					"camera_id", cmd.CameraID,
					"attempt", attempt,
					"delay", delay,
				)
				select {
				case <-camCtx.Done():
					m.updateStatus(cmd.CameraID, models.CameraStatusStopped, "")
					return
				case <-time.After(delay):
				}

				// Need a fresh source for retry
				source = &capture.FFmpegSource{}
			}

			err := source.Start(camCtx, cmd.URL, period, m.width, func(frame *capture.Frame) error {
				pipe.HandleFrame(camCtx, frame)
				return nil
			})

			if err == nil || camCtx.Err() != nil {
				// Clean exit or operator stopped the camera. An in-flight
				// decision cycle keeps running on its detached context.
				m.updateStatus(cmd.CameraID, models.CameraStatusStopped, "")
				return
			}

			slog.Error("camera sampling failed",
				"camera_id", cmd.CameraID,
				"attempt", attempt,
				"error", err,
			)
		}

		m.updateStatus(cmd.CameraID, models.CameraStatusError, "camera failed after retries")
	}()

	return nil
}

func (m *Manager) stopCamera(cameraID string) error {
	m.mu.RLock()
	ac, exists := m.cameras[cameraID]
	m.mu.RUnlock()

	if !exists {
		return nil // Already stopped
	}

	ac.source.Stop()
	ac.cancel()

	slog.Info("stop command sent", "camera_id", cameraID)
	return nil
}

func (m *Manager) updateStatus(cameraID string, status models.CameraStatus, errMsg string) {
	id, err := uuid.Parse(cameraID)
	if err != nil {
		return
	}
	if err := m.db.UpdateCameraStatus(context.Background(), id, status, errMsg); err != nil {
		slog.Error("update camera status", "camera_id", cameraID, "error", err)
	}
}

// ActiveCount returns the number of cameras currently being sampled.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cameras)
}

// StopAll stops every running camera.
func (m *Manager) StopAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.cameras))
	for id := range m.cameras {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.stopCamera(id)
	}
}
