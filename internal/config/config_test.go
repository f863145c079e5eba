package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mem://eventposts", cfg.QueueURL)
				assert.Equal(t, "mem://eventposts", cfg.QueueTopicURL)
				assert.Equal(t, "mem://", cfg.BlobBucketURL)
				assert.Equal(t, 2, cfg.WorkerCount)
				assert.Equal(t, 1000000, cfg.MaxUncompressedPostBytes)
				assert.Equal(t, 10, cfg.CompressedSizeMultiplier)
				assert.Equal(t, 1000, cfg.RetryCompressionThresholdBytes)
				assert.Equal(t, "", cfg.InternalProjectID)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5, cfg.DBMaxIdleConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, true, cfg.MetricsEnabled)
				assert.Equal(t, "eventpost", cfg.MetricsNamespace)
				assert.Equal(t, 8081, cfg.MetricsPort)
			},
		},
		{
			name: "load custom queue and blob configuration",
			envVars: map[string]string{
				"QUEUE_URL":       "awssqs://sqs.us-east-1.amazonaws.com/123/event-posts",
				"QUEUE_TOPIC_URL": "awssnssqs://sqs.us-east-1.amazonaws.com/123/event-posts",
				"BLOB_BUCKET_URL": "s3://event-posts",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "awssqs://sqs.us-east-1.amazonaws.com/123/event-posts", cfg.QueueURL)
				assert.Equal(t, "awssnssqs://sqs.us-east-1.amazonaws.com/123/event-posts", cfg.QueueTopicURL)
				assert.Equal(t, "s3://event-posts", cfg.BlobBucketURL)
			},
		},
		{
			name: "load custom post processing limits",
			envVars: map[string]string{
				"MAX_UNCOMPRESSED_POST_BYTES":       "2000000",
				"COMPRESSED_SIZE_MULTIPLIER":        "5",
				"RETRY_COMPRESSION_THRESHOLD_BYTES": "500",
				"INTERNAL_PROJECT_ID":               "internal-project",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2000000, cfg.MaxUncompressedPostBytes)
				assert.Equal(t, 5, cfg.CompressedSizeMultiplier)
				assert.Equal(t, 500, cfg.RetryCompressionThresholdBytes)
				assert.Equal(t, "internal-project", cfg.InternalProjectID)
			},
		},
		{
			name: "load custom worker configuration",
			envVars: map[string]string{
				"WORKER_COUNT":             "8",
				"WORKER_POLL_RATE_PER_SEC": "25.5",
				"WORKER_POLL_BURST":        "3",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.WorkerCount)
				assert.Equal(t, 25.5, cfg.WorkerPollRatePerSec)
				assert.Equal(t, 3, cfg.WorkerPollBurst)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom metrics configuration",
			envVars: map[string]string{
				"METRICS_ENABLED":   "false",
				"METRICS_NAMESPACE": "ingest",
				"METRICS_PORT":      "9099",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, false, cfg.MetricsEnabled)
				assert.Equal(t, "ingest", cfg.MetricsNamespace)
				assert.Equal(t, 9099, cfg.MetricsPort)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.envVars {
					os.Unsetenv(key)
				}
			}()

			cfg := Load()
			tt.validate(t, cfg)
		})
	}
}
