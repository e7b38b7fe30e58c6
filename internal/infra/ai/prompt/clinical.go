package prompt

import (
	"fmt"
	"strings"

	"github.com/medibridge/carepipe/internal/domain/analysis"
)

// Clinical exposes the prompts below as analysis.Prompts.
type Clinical struct{}

var _ analysis.Prompts = Clinical{}

func (Clinical) System() string { return SystemPrompt() }
func (Clinical) Symptom(q analysis.SymptomQuery) string { return Symptom(q) }
func (Clinical) Image(imageType string) string { return Image(imageType) }
func (Clinical) HealthSummary(history string) string { return HealthSummary(history) }

// SystemPrompt provides strict directions for JSON-only output, shared by all analyses.
func SystemPrompt() string {
	return `You are a careful clinical decision-support assistant. You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema given in the user message.

Requirements:
- Output must be a single JSON object.
- Urgency and priority values are exactly one of: Low, Medium, High.
- Array fields are arrays of short plain strings.
- Never present the output as a final diagnosis.`
}

// Symptom builds the triage instruction for free-text symptoms plus demographics.
func Symptom(q analysis.SymptomQuery) string {
	age := "unknown"
	if q.Age > 0 {
		age = fmt.Sprintf("%d", q.Age)
	}
	return fmt.Sprintf(`Act as a medical assistant. Analyze the following patient data:
Symptoms: %s
Age: %s
Gender: %s
Medical History: %s

Provide a short assessment, a list of potential causes (differential diagnosis), recommended next steps, and an urgency level (Low, Medium, High).

Schema:
{
  "assessment": "<string>",
  "causes": ["<string>"],
  "next_steps": ["<string>"],
  "urgency": "<Low|Medium|High>",
  "disclaimer": "<string>"
}`, oneLine(q.Symptoms), age, orUnknown(q.Gender), orNone(q.History))
}

// Image builds the screening instruction for one medical image.
func Image(imageType string) string {
	return fmt.Sprintf(`Act as a radiological assistant. Analyze this medical image (%s).
Provide:
1. Brief analysis of what is visible.
2. Key findings.
3. Preliminary recommendation.
4. Urgency level (Low, Medium, High).

IMPORTANT: State clearly that this is for screening only and not a diagnosis.

Schema:
{
  "analysis": "<string>",
  "findings": ["<string>"],
  "recommendation": "<string>",
  "urgency": "<Low|Medium|High>",
  "disclaimer": "<string>"
}`, ImageTypeLabel(imageType))
}

// HealthSummary wraps an OCR-extracted history document.
func HealthSummary(history string) string {
	return fmt.Sprintf(`Act as a senior clinical advisor. Below is a patient's medical history extracted via OCR.
Summarize this history into a professional clinical briefing for a consulting physician.
Highlight:
1. Major chronic conditions or recurring patterns.
2. Recent lab findings or acute issues.
3. Areas requiring immediate attention.

HISTORY:
%s

Schema:
{
  "summary": "<string>",
  "recommendations": ["<string>"],
  "priority": "<Low|Medium|High>",
  "disclaimer": "<string>"
}`, history)
}

// ImageTypeLabel renders the caller's image-type hint, "General" when absent.
func ImageTypeLabel(imageType string) string {
	t := oneLine(imageType)
	if t == "" {
		return "General"
	}
	return t
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orUnknown(s string) string {
	if s = oneLine(s); s == "" {
		return "unknown"
	}
	return s
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "none reported"
	}
	return s
}
