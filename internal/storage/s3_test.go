package storage

import (
	"testing"

	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	endpoint, secure := normalizeEndpoint("https://s3.example.com/", false)
	assert.Equal(t, "s3.example.com", endpoint)
	assert.True(t, secure)

	endpoint, secure = normalizeEndpoint("http://minio:9000", true)
	assert.Equal(t, "minio:9000", endpoint)
	assert.False(t, secure)

	endpoint, secure = normalizeEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", endpoint)
	assert.True(t, secure)
}

func TestNewS3ClientRequiresSettings(t *testing.T) {
	_, err := NewS3Client(config.StorageConfig{})
	require.Error(t, err)

	_, err = NewS3Client(config.StorageConfig{Endpoint: "minio:9000", Bucket: "b"})
	require.Error(t, err)

	c, err := NewS3Client(config.StorageConfig{
		Endpoint:  "http://minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "purchase-orders",
	})
	require.NoError(t, err)
	assert.Equal(t, "purchase-orders", c.bucket)
}
