package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Contains(t, cfg.Upload.AllowedTypes, ".pdf")
	assert.Equal(t, 5, cfg.Workflow.AllocatorAttempts)
	assert.Equal(t, "applications", cfg.Workflow.AllocatorCounterID)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("UPLOAD_ALLOWED_TYPES", ".PDF, .docx,,")
	t.Setenv("ALLOCATOR_BACKOFF", "100ms")
	t.Setenv("WORKFLOW_REQUIRE_PATENT_TYPE", "true")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.IsMemory())
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, 100*time.Millisecond, cfg.Workflow.AllocatorBackoff)
	assert.True(t, cfg.Workflow.RequirePatentType)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: defaultJWTSecret},
		Database:    DatabaseConfig{Driver: "postgres", Password: "x"},
		Upload:      UploadConfig{MaxFiles: 1, MaxFileSize: 1},
		Workflow:    WorkflowConfig{AllocatorAttempts: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mongo"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "ipr", Password: "pw", Database: "ipr_cell", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=ipr password=pw dbname=ipr_cell sslmode=disable TimeZone=UTC", d.DSN())

	d.URL = "postgres://ipr:pw@db/ipr_cell"
	assert.Equal(t, d.URL, d.DSN())
	assert.False(t, d.IsMemory())

	d.MaxLifetime = 300
	assert.Equal(t, 5*time.Minute, d.ConnMaxLifetime())
}
