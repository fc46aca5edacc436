// internal/services/storage_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armanrma7/agronetixbeck-sub000/internal/config"
)

func TestResolvePrefersCloudFront(t *testing.T) {
	svc, err := NewStorageService(&config.Config{AWS: config.AWSConfig{
		CloudFrontURL: "https://cdn.example.com/",
	}})
	assert.NoError(t, err)

	urls := svc.Resolve([]string{"announcements/2026/01/abc.jpg"})
	assert.Equal(t, []string{"https://cdn.example.com/announcements/2026/01/abc.jpg"}, urls)
}

func TestResolveFallsBackToS3(t *testing.T) {
	svc, err := NewStorageService(&config.Config{AWS: config.AWSConfig{
		Region:   "eu-central-1",
		S3Bucket: "agro-images",
	}})
	assert.NoError(t, err)

	urls := svc.Resolve([]string{"k.png"})
	assert.Equal(t, "https://agro-images.s3.eu-central-1.amazonaws.com/k.png", urls[0])

	assert.Empty(t, svc.Resolve(nil))
}
