// Package degrade decides, once per process, which external services are
// called for real and which are replaced by canned substitutes.
package degrade

import (
	"strings"

	"github.com/medibridge/carepipe/internal/config"
)

// Service names an external dependency covered by the policy.
type Service string

const (
	Storage Service = "storage"
	OCR     Service = "ocr"
	Model   Service = "model"
)

// Options are the configuration facts the policy is derived from.
type Options struct {
	StorageCredentialsValid bool
	OCRConfigured           bool
	ModelCredentialsValid   bool
}

// Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	live map[Service]bool
}

func New(o Options) Policy {
	return Policy{live: map[Service]bool{
		Storage: o.StorageCredentialsValid,
		OCR:     o.OCRConfigured,
		Model:   o.ModelCredentialsValid,
	}}
}

// FromConfig evaluates credential completeness for every service.
func FromConfig(c *config.Config) Policy {
	return New(Options{
		StorageCredentialsValid: strings.TrimSpace(c.Minio.Endpoint) != "" &&
			config.CredentialValid(c.Minio.AccessKey) &&
			config.CredentialValid(c.Minio.SecretKey),
		OCRConfigured:         config.CredentialValid(c.OCR.BaseURL),
		ModelCredentialsValid: config.CredentialValid(c.OpenAI.APIKey),
	})
}

// ShouldUseMock is true when the service must not be called. Unknown services are mocked.
func (p Policy) ShouldUseMock(s Service) bool {
	return !p.live[s]
}

// Without returns a copy of p with s mocked. Used when a client for s cannot
// be constructed at startup.
func (p Policy) Without(s Service) Policy {
	live := make(map[Service]bool, len(p.live))
	for k, v := range p.live {
		live[k] = v
	}
	live[s] = false
	return Policy{live: live}
}

// Snapshot reports "live" or "mock" per service.
func (p Policy) Snapshot() map[string]string {
	out := make(map[string]string, 3)
	for _, s := range []Service{Storage, OCR, Model} {
		mode := "live"
		if p.ShouldUseMock(s) {
			mode = "mock"
		}
		out[string(s)] = mode
	}
	return out
}
