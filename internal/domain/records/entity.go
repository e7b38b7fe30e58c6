package records

import (
	"time"
)

// RecordID identifier type
type RecordID string

// Sentinel values stored in place of a failed or skipped stage output.
const (
	UnavailableURL        = "mock_url_storage_unavailable"
	MockStorageURL        = "mock_url_storage_disabled"
	ExtractionFailedText  = "OCR Extraction Failed"
	ExtractionSkippedText = "OCR Extraction Skipped (service not configured)"
)

// StatusPendingAnalysis is the summary every freshly ingested record starts with.
const StatusPendingAnalysis = "Pending Analysis"

// DefaultTitle is used when neither a title nor a file name was supplied.
const DefaultTitle = "Untitled record"

// Record is the durable result of an ingestion.
type Record struct {
	ID            RecordID  `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	FileURL       string    `json:"file_url"`
	ContentType   string    `json:"content_type,omitempty"`
	ExtractedText string    `json:"extracted_text"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasStoredFile reports whether FileURL points at a real stored object.
func (r *Record) HasStoredFile() bool {
	return IsStoredURL(r.FileURL)
}

// IsStoredURL is false for empty URLs and storage sentinels.
func IsStoredURL(url string) bool {
	switch url {
	case "", UnavailableURL, MockStorageURL:
		return false
	}
	return true
}

// UploadRequest carries one uploaded file through ingestion.
type UploadRequest struct {
	OwnerID  string
	Title    string
	FileName string
	Payload  Payload
}
