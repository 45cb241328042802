package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port             int    `envconfig:"PORT" default:"8008"`
	Environment      string `envconfig:"ENV" default:"development"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	MaxImageSize     int    `envconfig:"MAX_IMAGE_SIZE" default:"10485760"`

	// Output
	OutputDir   string `envconfig:"OUTPUT_DIR" default:"./output"`
	JPEGQuality int    `envconfig:"JPEG_QUALITY" default:"95"`

	// Provider
	ProviderType       string        `envconfig:"PROVIDER_TYPE" default:"deepface"`
	DeepFaceURL        string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceTimeout    time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"60s"`
	DeepFaceRetryCount int           `envconfig:"DEEPFACE_RETRY_COUNT" default:"0"`
	DetectorBackend    string        `envconfig:"DETECTOR_BACKEND" default:"retinaface"`
	VerifyModel        string        `envconfig:"VERIFY_MODEL" default:"VGG-Face"`
	DistanceMetric     string        `envconfig:"DISTANCE_METRIC" default:"cosine"`

	AWSRegion                      string  `envconfig:"AWS_REGION" default:"us-east-1"`
	RekognitionSimilarityThreshold float64 `envconfig:"REKOGNITION_SIMILARITY_THRESHOLD" default:"80"`

	// Pipeline
	EnrichWorkers     int           `envconfig:"ENRICH_WORKERS" default:"4"`
	MaxConcurrentJobs int           `envconfig:"MAX_CONCURRENT_JOBS" default:"4"`
	JobQueueTimeout   time.Duration `envconfig:"JOB_QUEUE_TIMEOUT" default:"30s"`

	// Rate limiting
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"60"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.ProviderType) {
	case "deepface", "rekognition", "mock":
	default:
		return fmt.Errorf("unknown PROVIDER_TYPE %q", c.ProviderType)
	}

	if c.EnrichWorkers < 1 {
		return fmt.Errorf("ENRICH_WORKERS must be positive, got %d", c.EnrichWorkers)
	}
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be positive, got %d", c.MaxConcurrentJobs)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.MaxImageSize < 1 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive, got %d", c.MaxImageSize)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
