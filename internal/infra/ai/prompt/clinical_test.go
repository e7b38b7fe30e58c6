package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medibridge/carepipe/internal/domain/analysis"
)

func TestSymptomPrompt(t *testing.T) {
	p := Symptom(analysis.SymptomQuery{Symptoms: "fever,\n cough", Age: 30, Gender: "Male"})
	assert.Contains(t, p, "Symptoms: fever, cough")
	assert.Contains(t, p, "Age: 30")
	assert.Contains(t, p, "Gender: Male")
	assert.Contains(t, p, "Medical History: none reported")
	assert.Contains(t, p, `"next_steps"`)
}

func TestSymptomPromptUnknownDemographics(t *testing.T) {
	p := Symptom(analysis.SymptomQuery{Symptoms: "rash"})
	assert.Contains(t, p, "Age: unknown")
	assert.Contains(t, p, "Gender: unknown")
}

func TestImagePrompt(t *testing.T) {
	assert.Contains(t, Image("xray"), "medical image (xray)")
	assert.Contains(t, Image(""), "medical image (General)")
	assert.Contains(t, Image("mri"), "not a diagnosis")
}

func TestHealthSummaryPrompt(t *testing.T) {
	p := HealthSummary("Title: CBC\nExtracted Data: normal")
	assert.Contains(t, p, "HISTORY:\nTitle: CBC\nExtracted Data: normal")
	assert.Contains(t, p, `"recommendations"`)
}

func TestClinicalMatchesPackagePrompts(t *testing.T) {
	var p analysis.Prompts = Clinical{}
	q := analysis.SymptomQuery{Symptoms: "fever"}
	assert.Equal(t, SystemPrompt(), p.System())
	assert.Equal(t, Symptom(q), p.Symptom(q))
	assert.Equal(t, Image("ct"), p.Image("ct"))
	assert.Equal(t, HealthSummary("h"), p.HealthSummary("h"))
}
