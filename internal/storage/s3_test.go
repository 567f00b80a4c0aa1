package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"cfq/wod-board/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Storage_PresignUsesCustomEndpoint(t *testing.T) {
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "exports",
	})
	require.NoError(t, err)

	raw, err := fs.GeneratePresignedDownloadURL(context.Background(), "leaderboards/2025-05-19.json", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/exports/leaderboards/2025-05-19.json"), u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}
