package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "go-library-api", c.AppName)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, StorageGCS, c.StorageProvider)
	assert.Equal(t, "library", c.AssetFolder)
	assert.Equal(t, int64(5<<20), c.MaxUploadBytes)
	assert.Equal(t, time.Hour, c.AccessTTL)
	assert.Equal(t, 168*time.Hour, c.RefreshTTL)
	assert.Equal(t, int32(10), c.DBMaxConns)
	assert.True(t, c.MailSendEnabled)
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_PROVIDER", "s3")
	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("ELASTICSEARCH_ADDRS", "http://es1:9200,http://es2:9200")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageS3, c.StorageProvider)
	assert.Equal(t, 15*time.Minute, c.AccessTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins())
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, c.ESAddrs())
	assert.Equal(t, "http://minio:9000", c.S3EndpointURL())

	c.S3UseSSL = true
	assert.Equal(t, "https://minio:9000", c.S3EndpointURL())
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_PROVIDER", "ftp")

	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "library", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/library?sslmode=disable", c.PostgresDSN())
}
