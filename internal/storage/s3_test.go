package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignedURL_CustomEndpoint(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3Storage(ctx, S3Config{
		Region:        "us-east-1",
		Bucket:        "exports",
		AccessKey:     "minio",
		SecretKey:     "minio-secret",
		Endpoint:      "http://localhost:9000",
		PresignExpiry: 15 * time.Minute,
	})
	require.NoError(t, err)

	raw, err := s.PresignedURL(ctx, "users/1/training-data-2024-03-01.json")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/exports/users/1/training-data-2024-03-01.json", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewS3Storage_DefaultExpiry(t *testing.T) {
	s, err := NewS3Storage(context.Background(), S3Config{
		Region:    "eu-central-1",
		Bucket:    "exports",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiry)
}
