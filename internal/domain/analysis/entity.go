package analysis

import "strings"

// Urgency classification shared with callers. Values are case-sensitive.
type Urgency string

const (
	UrgencyLow     Urgency = "Low"
	UrgencyMedium  Urgency = "Medium"
	UrgencyHigh    Urgency = "High"
	UrgencyUnknown Urgency = "Unknown"
)

// ParseUrgency maps model output onto the canonical values, Unknown otherwise.
func ParseUrgency(s string) Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return UrgencyLow
	case "medium", "moderate":
		return UrgencyMedium
	case "high", "urgent", "critical":
		return UrgencyHigh
	}
	return UrgencyUnknown
}

// Source tells callers where a result came from.
type Source string

const (
	SourceLive      Source = "live"      // parsed model JSON
	SourceRecovered Source = "recovered" // model replied with unparseable text
	SourceMock      Source = "mock"      // degradation policy skipped the model
	SourceFallback  Source = "fallback"  // model call failed or input unusable
	SourceNone      Source = "none"      // nothing to analyze, no model call
)

// Degraded is true when the result is a substitute for a genuine model assessment.
func (s Source) Degraded() bool {
	switch s {
	case SourceRecovered, SourceMock, SourceFallback:
		return true
	}
	return false
}

// SymptomQuery is the structured input for symptom triage.
type SymptomQuery struct {
	Symptoms string `json:"symptoms"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	History  string `json:"history"`
}

// ImageQuery references a previously stored file.
type ImageQuery struct {
	OwnerID   string `json:"-"`
	ImageURL  string `json:"image_url"`
	RecordID  string `json:"record_id"`
	ImageType string `json:"image_type"`
}

// SummaryQuery selects whose records are summarized.
type SummaryQuery struct {
	PatientID string `json:"patient_id"`
}

// SymptomAnalysis is the normalized symptom triage result.
type SymptomAnalysis struct {
	Assessment string   `json:"assessment"`
	Causes     []string `json:"causes"`
	NextSteps  []string `json:"next_steps"`
	Urgency    Urgency  `json:"urgency"`
	Disclaimer string   `json:"disclaimer"`
	Source     Source   `json:"source"`
	Degraded   bool     `json:"degraded"`
}

// ImageAnalysis is the normalized screening result for one image.
type ImageAnalysis struct {
	Analysis       string   `json:"analysis"`
	Findings       []string `json:"findings"`
	Recommendation string   `json:"recommendation"`
	Urgency        Urgency  `json:"urgency"`
	Disclaimer     string   `json:"disclaimer"`
	Source         Source   `json:"source"`
	Degraded       bool     `json:"degraded"`
}

// HealthSummary is the normalized clinical briefing over a patient's records.
type HealthSummary struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Priority        Urgency  `json:"priority"`
	Disclaimer      string   `json:"disclaimer"`
	RecordCount     int      `json:"record_count"`
	Truncated       bool     `json:"truncated"`
	Source          Source   `json:"source"`
	Degraded        bool     `json:"degraded"`
}
