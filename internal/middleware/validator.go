package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/medibridge/carepipe/internal/domain/records"
)

// Input validation and sanitization utilities

var (
	ownerIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	imageTypePattern = regexp.MustCompile(`^[\p{L}\p{N} ._/-]{0,64}$`)
)

const (
	maxSymptomsLen = 4000
)

// ValidateOwnerID validates user id format
func ValidateOwnerID(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner ID cannot be empty")
	}
	// Allow alphanumeric, dash, underscore (max 64 chars)
	if !ownerIDPattern.MatchString(owner) {
		return fmt.Errorf("invalid owner ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateImageURL accepts absolute http(s) URLs. Storage sentinels pass
// through untouched so the analysis can report them as unavailable.
func ValidateImageURL(rawURL string) error {
	if rawURL == "" {
		return nil // optional when record_id is given
	}
	if !strings.Contains(rawURL, "://") {
		if strings.HasPrefix(rawURL, "mock_url_") {
			return nil
		}
		return fmt.Errorf("invalid image URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("image URL has no host")
	}
	return nil
}

// ValidateImageType checks the optional modality hint (e.g. "X-Ray", "MRI").
func ValidateImageType(t string) error {
	if !imageTypePattern.MatchString(t) {
		return fmt.Errorf("invalid image type")
	}
	return nil
}

// ValidateSymptoms checks the free-text symptom description.
func ValidateSymptoms(s string, age int) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("symptoms are required")
	}
	if utf8.RuneCountInString(s) > maxSymptomsLen {
		return fmt.Errorf("symptoms too long (max %d characters)", maxSymptomsLen)
	}
	if age < 0 || age > 150 {
		return fmt.Errorf("age must be between 0 and 150")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// SanitizeTitle flattens a record title to one line of at most 255 runes.
func SanitizeTitle(title string) string {
	return records.NormalizeTitle(title)
}
