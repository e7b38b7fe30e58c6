package degrade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medibridge/carepipe/internal/config"
)

func TestFromConfig(t *testing.T) {
	var cfg config.Config
	cfg.Minio.Endpoint = "minio:9000"
	cfg.Minio.AccessKey = "minioadmin"
	cfg.Minio.SecretKey = "minio-secret-123"
	cfg.OpenAI.APIKey = "sk-placeholder"

	p := FromConfig(&cfg)
	assert.False(t, p.ShouldUseMock(Storage))
	assert.True(t, p.ShouldUseMock(OCR), "no OCR url configured")
	assert.True(t, p.ShouldUseMock(Model), "placeholder key")
	assert.Equal(t, map[string]string{"storage": "live", "ocr": "mock", "model": "mock"}, p.Snapshot())
}

func TestStorageNeedsEndpoint(t *testing.T) {
	var cfg config.Config
	cfg.Minio.AccessKey = "minioadmin"
	cfg.Minio.SecretKey = "minio-secret-123"
	assert.True(t, FromConfig(&cfg).ShouldUseMock(Storage))
}

func TestUnknownServiceIsMocked(t *testing.T) {
	p := New(Options{StorageCredentialsValid: true, OCRConfigured: true, ModelCredentialsValid: true})
	assert.False(t, p.ShouldUseMock(Model))
	assert.True(t, p.ShouldUseMock(Service("fax")))

	var zero Policy
	assert.True(t, zero.ShouldUseMock(Storage))
}

func TestWithoutLeavesOriginalIntact(t *testing.T) {
	p := New(Options{StorageCredentialsValid: true, OCRConfigured: true, ModelCredentialsValid: true})
	q := p.Without(Storage)
	assert.True(t, q.ShouldUseMock(Storage))
	assert.False(t, q.ShouldUseMock(OCR))
	assert.False(t, p.ShouldUseMock(Storage))
}
