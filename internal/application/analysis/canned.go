package analysis

import (
	"strings"

	domain "github.com/medibridge/carepipe/internal/domain/analysis"
)

const (
	SymptomDisclaimer = "This is not a medical diagnosis. Consult a qualified healthcare professional."
	// ImageScreeningDisclaimer must be part of every image result.
	ImageScreeningDisclaimer = "This is a screening aid only and not a diagnosis. A qualified specialist must review the image."
	SummaryDisclaimer        = "AI-generated briefing for clinical reference only; not a diagnosis."

	modelFailedNote = "Failed to contact AI service."
	mockNote        = "This is a MOCK response because no valid AI model credentials are configured."

	NoRecordsSummary = "No medical records found for this patient."
)

// Fixed illustrative results returned when the policy mocks the model.

func mockSymptom() domain.SymptomAnalysis {
	return domain.SymptomAnalysis{
		Assessment: "[MOCK] Illustrative triage result; no model was consulted.",
		Causes:     []string{"Viral Infection (Mock)", "Dehydration (Mock)", "Fatigue (Mock)"},
		NextSteps:  []string{"Rest and hydration", "Monitor temperature", "Consult doctor if worsens"},
		Urgency:    domain.UrgencyMedium,
		Disclaimer: mockNote,
		Source:     domain.SourceMock,
		Degraded:   true,
	}
}

func mockImage(imageType string) domain.ImageAnalysis {
	subject := strings.TrimSpace(imageType)
	if subject == "" {
		subject = "uploaded image"
	}
	return domain.ImageAnalysis{
		Analysis:       "[MOCK] Preliminary analysis for " + subject + ".",
		Findings:       []string{"No obvious fractures detected (Mock)", "Tissue density appears normal (Mock)"},
		Recommendation: "Please consult a specialist for a formal radiological report.",
		Urgency:        domain.UrgencyLow,
		Disclaimer:     ImageScreeningDisclaimer + " This is a MOCK vision analysis; AI model credentials are missing or invalid.",
		Source:         domain.SourceMock,
		Degraded:       true,
	}
}

func mockSummary(count int) domain.HealthSummary {
	return domain.HealthSummary{
		Summary:         "[MOCK] The patient has a history of respiratory issues and regular lab tests. All values appear to be within normal ranges for their age group.",
		Recommendations: []string{"Regular checkups", "Focus on cardiovascular health"},
		Priority:        domain.UrgencyLow,
		Disclaimer:      "Mock AI Summary. " + mockNote,
		RecordCount:     count,
		Source:          domain.SourceMock,
		Degraded:        true,
	}
}

// Safety-net results for failed model calls or unusable input.

func fallbackSymptom() domain.SymptomAnalysis {
	return domain.SymptomAnalysis{
		Assessment: "Symptom analysis could not be completed.",
		Causes:     []string{"Error analyzing symptoms"},
		NextSteps:  []string{"Please try again later", "Consult a healthcare professional if symptoms persist or worsen"},
		Urgency:    domain.UrgencyUnknown,
		Disclaimer: modelFailedNote + " This result is not a medical assessment.",
		Source:     domain.SourceFallback,
		Degraded:   true,
	}
}

func fallbackImage(reason string) domain.ImageAnalysis {
	return domain.ImageAnalysis{
		Analysis:       "Image analysis could not be completed.",
		Findings:       []string{},
		Recommendation: "Please retry later or consult a specialist.",
		Urgency:        domain.UrgencyUnknown,
		Disclaimer:     ImageScreeningDisclaimer + " " + reason,
		Source:         domain.SourceFallback,
		Degraded:       true,
	}
}

func unavailableImage() domain.ImageAnalysis {
	r := fallbackImage("No image was analyzed.")
	r.Analysis = "The referenced image is not available in storage, so no analysis was performed."
	r.Recommendation = "Re-upload the image once storage is available."
	return r
}

func fallbackSummary(count int) domain.HealthSummary {
	return domain.HealthSummary{
		Summary:         "Health summary could not be generated.",
		Recommendations: []string{"Review the patient's records directly"},
		Priority:        domain.UrgencyUnknown,
		Disclaimer:      modelFailedNote + " This is not a clinical assessment.",
		RecordCount:     count,
		Source:          domain.SourceFallback,
		Degraded:        true,
	}
}

func noRecordsSummary() domain.HealthSummary {
	return domain.HealthSummary{
		Summary:         NoRecordsSummary,
		Recommendations: []string{},
		Priority:        domain.UrgencyUnknown,
		Disclaimer:      SummaryDisclaimer,
		Source:          domain.SourceNone,
	}
}

// withScreening guarantees the image disclaimer states the result is not a diagnosis.
func withScreening(d string) string {
	d = strings.TrimSpace(d)
	if strings.Contains(strings.ToLower(d), "not a diagnosis") {
		return d
	}
	if d == "" {
		return ImageScreeningDisclaimer
	}
	return ImageScreeningDisclaimer + " " + d
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
