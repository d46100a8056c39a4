package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func validTestConfig() Config {
	var cfg Config
	cfg.Storage.Backend = "file"
	cfg.Clustering.DistanceThreshold = 0.5
	cfg.Topics.TimeDecayFactor = 0.95
	cfg.Topics.TopKeywordsPerCluster = 10
	cfg.Trends.NewClusterWindowHours = 24
	return cfg
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := validTestConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
}

func TestValidateConfig_UnknownBackend(t *testing.T) {
	cfg := validTestConfig()
	cfg.Storage.Backend = "postgres"
	err := validateConfig(&cfg)
	if err == nil || !strings.Contains(err.Error(), "storage backend") {
		t.Errorf("Expected backend error, got %v", err)
	}
}

func TestValidateConfig_BadThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero distance threshold", func(c *Config) { c.Clustering.DistanceThreshold = 0 }},
		{"distance threshold above 2", func(c *Config) { c.Clustering.DistanceThreshold = 2.5 }},
		{"decay factor above 1", func(c *Config) { c.Topics.TimeDecayFactor = 1.5 }},
		{"zero top keywords", func(c *Config) { c.Topics.TopKeywordsPerCluster = 0 }},
		{"zero new window", func(c *Config) { c.Trends.NewClusterWindowHours = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)
			if err := validateConfig(&cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidateConfig_BadDuration(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.ReadTimeout = "fifteen seconds"
	err := validateConfig(&cfg)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("Expected duration error, got %v", err)
	}
}

func TestStorageDirs(t *testing.T) {
	s := Storage{BaseDir: "/data"}
	if got := s.ClustersDir(); got != filepath.Join("/data", "clusters") {
		t.Errorf("ClustersDir = %q", got)
	}
	if got := s.TrendsDir(); got != filepath.Join("/data", "trends") {
		t.Errorf("TrendsDir = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("NEWSINTEL_TEST_DIR", "/var/data")
	if got := expandPath("$NEWSINTEL_TEST_DIR/news"); got != "/var/data/news" {
		t.Errorf("expandPath = %q", got)
	}
	if got := expandPath("/absolute/path"); got != "/absolute/path" {
		t.Errorf("expandPath should leave plain paths alone: %q", got)
	}
}
