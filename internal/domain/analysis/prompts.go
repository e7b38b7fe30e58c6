package analysis

// Prompts renders the model instructions for each analysis.
type Prompts interface {
	System() string
	Symptom(q SymptomQuery) string
	Image(imageType string) string
	HealthSummary(history string) string
}
