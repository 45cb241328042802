package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads explicit values",
			envVars: map[string]string{
				"PORT":              "8080",
				"ENV":               "production",
				"OUTPUT_DIR":        "/tmp/renders",
				"PROVIDER_TYPE":     "rekognition",
				"DEEPFACE_TIMEOUT":  "5s",
				"ENRICH_WORKERS":    "8",
				"RATE_LIMIT_WINDOW": "30s",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.OutputDir == "/tmp/renders" &&
					c.ProviderType == "rekognition" &&
					c.DeepFaceTimeout == 5*time.Second &&
					c.EnrichWorkers == 8 &&
					c.RateLimitWindow == 30*time.Second
			},
		},
		{
			name:    "uses defaults when vars missing",
			envVars: map[string]string{},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8008 &&
					c.Environment == "development" &&
					c.OutputDir == "./output" &&
					c.ProviderType == "deepface" &&
					c.DetectorBackend == "retinaface" &&
					c.VerifyModel == "VGG-Face" &&
					c.DistanceMetric == "cosine" &&
					c.DeepFaceRetryCount == 0 &&
					c.JPEGQuality == 95 &&
					c.CORSAllowOrigins == "*" &&
					c.JobQueueTimeout == 30*time.Second
			},
		},
		{
			name: "fails on unknown provider",
			envVars: map[string]string{
				"PROVIDER_TYPE": "opencv",
			},
			wantErr: true,
		},
		{
			name: "fails on zero workers",
			envVars: map[string]string{
				"ENRICH_WORKERS": "0",
			},
			wantErr: true,
		},
		{
			name: "fails on out of range jpeg quality",
			envVars: map[string]string{
				"JPEG_QUALITY": "101",
			},
			wantErr: true,
		},
		{
			name: "fails on malformed duration",
			envVars: map[string]string{
				"DEEPFACE_TIMEOUT": "soon",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
