package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/gatekeeper/internal/api/handlers"
	"github.com/your-org/gatekeeper/internal/api/ws"
	"github.com/your-org/gatekeeper/internal/auth"
	"github.com/your-org/gatekeeper/internal/queue"
	"github.com/your-org/gatekeeper/internal/recognition"
	"github.com/your-org/gatekeeper/internal/storage"
)

type RouterConfig struct {
	APIKey      string
	DB          *storage.PostgresStore
	Docs        *storage.DocumentStore
	Producer    *queue.Producer
	Recognition *recognition.Client
	Hub         *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Docs, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Access logs
	logH := handlers.NewLogHandler(cfg.DB, cfg.Docs)
	v1.GET("/logs", logH.List)
	v1.GET("/logs/export", logH.Export)
	v1.GET("/snapshots", logH.Snapshot)

	// Alerts
	alertH := handlers.NewAlertHandler(cfg.DB)
	v1.GET("/alerts", alertH.List)
	v1.DELETE("/alerts/:id", alertH.Delete)

	// Cameras
	cameraH := handlers.NewCameraHandler(cfg.DB, cfg.Producer)
	v1.POST("/cameras", cameraH.Create)
	v1.GET("/cameras", cameraH.List)
	v1.GET("/cameras/:id", cameraH.Get)
	v1.POST("/cameras/:id/start", cameraH.Start)
	v1.POST("/cameras/:id/stop", cameraH.Stop)
	v1.DELETE("/cameras/:id", cameraH.Delete)

	// Vehicle directory (read-only)
	vehicleH := handlers.NewVehicleHandler(cfg.DB)
	v1.GET("/vehicles", vehicleH.List)

	// Ad-hoc recognition
	recognizeH := handlers.NewRecognizeHandler(cfg.DB, cfg.Recognition)
	v1.POST("/recognize", recognizeH.Recognize)

	return r
}
