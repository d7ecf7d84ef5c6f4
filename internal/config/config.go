package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	NATS        NATSConfig        `yaml:"nats"`
	MinIO       MinIOConfig       `yaml:"minio"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RecognitionConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	SamplePeriod    time.Duration `yaml:"sample_period"`
	MotionThreshold float64       `yaml:"motion_threshold"`
	Cooldown        time.Duration `yaml:"cooldown"`
	FrameWidth      int           `yaml:"frame_width"`
	MinPlateLength  int           `yaml:"min_plate_length"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Recognition.Timeout == 0 {
		cfg.Recognition.Timeout = 10 * time.Second
	}
	if cfg.Pipeline.SamplePeriod == 0 {
		cfg.Pipeline.SamplePeriod = time.Second
	}
	if cfg.Pipeline.MotionThreshold == 0 {
		cfg.Pipeline.MotionThreshold = 35
	}
	if cfg.Pipeline.Cooldown == 0 {
		cfg.Pipeline.Cooldown = 5 * time.Second
	}
	if cfg.Pipeline.FrameWidth == 0 {
		cfg.Pipeline.FrameWidth = 640
	}
	if cfg.Pipeline.MinPlateLength == 0 {
		cfg.Pipeline.MinPlateLength = 6
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GK_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("GK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("GK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("GK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("GK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("GK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("GK_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("GK_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("GK_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("GK_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("GK_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("GK_RECOGNITION_ENDPOINT"); v != "" {
		cfg.Recognition.Endpoint = v
	}
	if v := os.Getenv("GK_MOTION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.MotionThreshold = f
		}
	}
	if v := os.Getenv("GK_COOLDOWN_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Cooldown = time.Duration(ms) * time.Millisecond
		}
	}
}
