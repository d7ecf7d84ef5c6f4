package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/gatekeeper/internal/config"
	"github.com/your-org/gatekeeper/internal/models"
)

// PostgresStore backs both external collaborators of the pipeline: the
// read-only account directory (vehicles) and the append-only event sink
// (access_logs, alerts), plus the camera registry.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate applies the schema statements. Safe to run on every start.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.pool)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Account directory (read-only from the pipeline's perspective) ---

// FindVehicleByPlate looks up a vehicle by its canonical plate key.
// No match returns (nil, nil). Plates are unique by schema; should the
// index ever be dropped and duplicates appear, the first row wins and the
// inconsistency is logged.
func (s *PostgresStore) FindVehicleByPlate(ctx context.Context, canonicalKey string) (*models.Vehicle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, plate_number, canonical_plate, owner_name, vehicle_type, status, created_at
		 FROM vehicles WHERE canonical_plate = $1 ORDER BY created_at LIMIT 2`, canonicalKey)
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	defer rows.Close()

	var matches []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.CanonicalPlate, &v.OwnerName,
			&v.VehicleType, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		matches = append(matches, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		slog.Warn("duplicate plate in directory, using first match", "plate", canonicalKey)
		return &matches[0], nil
	}
}

// ListVehicles returns registered vehicles, optionally filtered by status.
func (s *PostgresStore) ListVehicles(ctx context.Context, status *models.VehicleStatus, limit, offset int) ([]models.Vehicle, error) {
	query := `SELECT id, plate_number, canonical_plate, owner_name, vehicle_type, status, created_at
		 FROM vehicles`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.CanonicalPlate, &v.OwnerName,
			&v.VehicleType, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// --- Event sink (append-only) ---

func (s *PostgresStore) AppendAccessLog(ctx context.Context, entry *models.AccessLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO access_logs (id, camera_id, user_label, plate, outcome, snapshot_key, time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		entry.ID, entry.CameraID, entry.User, entry.Plate, entry.Outcome, entry.SnapshotKey, entry.Time,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO alerts (id, camera_id, plate, message, severity, snapshot_key, time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		alert.ID, alert.CameraID, alert.Plate, alert.Message, alert.Severity, alert.SnapshotKey, alert.Time,
	).Scan(&alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}

// QueryAccessLogs returns log entries newest first within the optional
// time range, filtered by plate when given.
func (s *PostgresStore) QueryAccessLogs(ctx context.Context, plateKey string, from, to *time.Time, limit, offset int) ([]models.AccessLog, error) {
	query := `SELECT id, camera_id, user_label, plate, outcome, snapshot_key, time, created_at
		 FROM access_logs WHERE 1=1`
	args := []any{}
	n := 0
	if plateKey != "" {
		n++
		query += fmt.Sprintf(` AND plate = $%d`, n)
		args = append(args, plateKey)
	}
	if from != nil {
		n++
		query += fmt.Sprintf(` AND time >= $%d`, n)
		args = append(args, *from)
	}
	if to != nil {
		n++
		query += fmt.Sprintf(` AND time <= $%d`, n)
		args = append(args, *to)
	}
	query += fmt.Sprintf(` ORDER BY time DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query access logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AccessLog
	for rows.Next() {
		var l models.AccessLog
		if err := rows.Scan(&l.ID, &l.CameraID, &l.User, &l.Plate, &l.Outcome,
			&l.SnapshotKey, &l.Time, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// QueryAlerts returns alerts newest first, optionally filtered by severity.
func (s *PostgresStore) QueryAlerts(ctx context.Context, severity *models.AlertSeverity, limit, offset int) ([]models.Alert, error) {
	query := `SELECT id, camera_id, plate, message, severity, snapshot_key, time, created_at
		 FROM alerts`
	args := []any{}
	if severity != nil {
		query += ` WHERE severity = $1`
		args = append(args, *severity)
	}
	query += fmt.Sprintf(` ORDER BY time DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.CameraID, &a.Plate, &a.Message, &a.Severity,
			&a.SnapshotKey, &a.Time, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// DeleteAlert removes one alert. Administrative action; logs are never
// deleted through this service.
func (s *PostgresStore) DeleteAlert(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	return nil
}

// --- Camera registry ---

func (s *PostgresStore) CreateCamera(ctx context.Context, cam *models.Camera) error {
	if cam.ID == uuid.Nil {
		cam.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO cameras (id, name, url, source_type, sample_period_ms, status)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`,
		cam.ID, cam.Name, cam.URL, cam.SourceType, cam.SamplePeriodMS, models.CameraStatusStopped,
	).Scan(&cam.CreatedAt, &cam.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create camera: %w", err)
	}
	cam.Status = models.CameraStatusStopped
	return nil
}

func (s *PostgresStore) GetCamera(ctx context.Context, id uuid.UUID) (*models.Camera, error) {
	cam := &models.Camera{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, url, source_type, sample_period_ms, status, error_message, created_at, updated_at
		 FROM cameras WHERE id = $1`, id,
	).Scan(&cam.ID, &cam.Name, &cam.URL, &cam.SourceType, &cam.SamplePeriodMS,
		&cam.Status, &cam.ErrorMessage, &cam.CreatedAt, &cam.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get camera: %w", err)
	}
	return cam, nil
}

func (s *PostgresStore) ListCameras(ctx context.Context) ([]models.Camera, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, url, source_type, sample_period_ms, status, error_message, created_at, updated_at
		 FROM cameras ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var cam models.Camera
		if err := rows.Scan(&cam.ID, &cam.Name, &cam.URL, &cam.SourceType, &cam.SamplePeriodMS,
			&cam.Status, &cam.ErrorMessage, &cam.CreatedAt, &cam.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, cam)
	}
	return cameras, rows.Err()
}

func (s *PostgresStore) UpdateCameraStatus(ctx context.Context, id uuid.UUID, status models.CameraStatus, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE cameras SET status = $2, error_message = $3, updated_at = now() WHERE id = $1`,
		id, status, errMsg)
	if err != nil {
		return fmt.Errorf("update camera status: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCamera(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cameras WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete camera: %w", err)
	}
	return nil
}
