package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/gatekeeper/internal/config"
	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/monitor"
	"github.com/your-org/gatekeeper/internal/observability"
	"github.com/your-org/gatekeeper/internal/pipeline"
	"github.com/your-org/gatekeeper/internal/queue"
	"github.com/your-org/gatekeeper/internal/recognition"
	"github.com/your-org/gatekeeper/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting gatekeeper monitor service")

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	// Connect to MinIO
	docs, err := storage.NewDocumentStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := docs.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// Recognition client and camera manager
	recClient := recognition.NewClient(cfg.Recognition)
	manager := monitor.NewManager(db, pipeline.Deps{
		Recognizer: recClient,
		Directory:  db,
		Sink:       db,
		Snapshots:  docs,
		Publisher:  producer,
	}, cfg.Pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe to camera control commands via NATS (raw subject, not JetStream)
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		slog.Error("connect to nats for control", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	_, err = nc.Subscribe(queue.ControlSubject, func(msg *nats.Msg) {
		cmd, err := monitor.ParseCommand(msg.Data)
		if err != nil {
			slog.Error("parse command", "error", err)
			return
		}

		slog.Info("received command", "action", cmd.Action, "camera_id", cmd.CameraID)
		if err := manager.HandleCommand(ctx, cmd); err != nil {
			slog.Error("handle command", "error", err, "action", cmd.Action, "camera_id", cmd.CameraID)
		}
	})
	if err != nil {
		slog.Error("subscribe to control", "error", err)
		os.Exit(1)
	}

	// Resume cameras that were running before the last shutdown
	cameras, err := db.ListCameras(ctx)
	if err != nil {
		slog.Warn("list cameras for resume", "error", err)
	} else {
		for _, cam := range cameras {
			if cam.Status != models.CameraStatusRunning && cam.Status != models.CameraStatusStarting {
				continue
			}
			cmd := monitor.Command{
				Action:         "start",
				CameraID:       cam.ID.String(),
				Name:           cam.Name,
				URL:            cam.URL,
				SourceType:     string(cam.SourceType),
				SamplePeriodMS: cam.SamplePeriodMS,
			}
			if err := manager.HandleCommand(ctx, cmd); err != nil {
				slog.Error("resume camera", "camera_id", cam.ID, "error", err)
			}
		}
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("monitor metrics listening", "addr", ":8081")
		if err := http.ListenAndServe(":8081", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down monitor...")
	cancel()
	manager.StopAll()

	// Give cameras time to stop
	time.Sleep(2 * time.Second)
	slog.Info("monitor stopped")
}
