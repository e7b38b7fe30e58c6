// Package analysis runs the AI analyses: symptom triage, image screening and
// patient health summaries. Every call returns a well-formed result; errors
// are reserved for invalid input and infrastructure (record store) failures.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/medibridge/carepipe/internal/application"
	"github.com/medibridge/carepipe/internal/application/degrade"
	"github.com/medibridge/carepipe/internal/domain/ai"
	domain "github.com/medibridge/carepipe/internal/domain/analysis"
	"github.com/medibridge/carepipe/internal/domain/records"
)

const (
	DefaultMaxHistoryBytes = 12000

	symptomTemperature = 0.7
	summaryTemperature = 0.5
	visionMaxTokens    = 500
)

type Service struct {
	Model   ai.Client
	Prompts domain.Prompts
	Records records.Repository
	Policy  degrade.Policy
	Metrics application.Recorder
	Logger  *zap.Logger

	MaxHistoryBytes int

	// Signer, when set, presigns stored image URLs before they reach the model.
	Signer records.URLSigner
}

func NewService(model ai.Client, prompts domain.Prompts, repo records.Repository, policy degrade.Policy, logger *zap.Logger) *Service {
	return &Service{Model: model, Prompts: prompts, Records: repo, Policy: policy, Logger: logger}
}

type symptomReply struct {
	Assessment string     `json:"assessment"`
	Causes     StringList `json:"causes"`
	NextSteps  StringList `json:"next_steps"`
	Urgency    string     `json:"urgency"`
	Disclaimer string     `json:"disclaimer"`
}

type imageReply struct {
	Analysis       string     `json:"analysis"`
	Findings       StringList `json:"findings"`
	Recommendation string     `json:"recommendation"`
	Urgency        string     `json:"urgency"`
	Disclaimer     string     `json:"disclaimer"`
}

type summaryReply struct {
	Summary         string     `json:"summary"`
	Recommendations StringList `json:"recommendations"`
	Priority        string     `json:"priority"`
	Urgency         string     `json:"urgency"`
	Disclaimer      string     `json:"disclaimer"`
}

// AnalyzeSymptoms triages free-text symptoms.
func (s *Service) AnalyzeSymptoms(ctx context.Context, q domain.SymptomQuery) (domain.SymptomAnalysis, error) {
	if strings.TrimSpace(q.Symptoms) == "" {
		return domain.SymptomAnalysis{}, fmt.Errorf("%w: symptoms are required", records.ErrInvalidInput)
	}
	if q.Age < 0 || q.Age > 150 {
		return domain.SymptomAnalysis{}, fmt.Errorf("%w: age out of range", records.ErrInvalidInput)
	}
	if s.Policy.ShouldUseMock(degrade.Model) {
		return s.symptomDone(mockSymptom()), nil
	}

	raw, err := s.complete(ctx, ai.Request{
		System:      s.Prompts.System(),
		Prompt:      s.Prompts.Symptom(q),
		Temperature: symptomTemperature,
	})
	if err != nil {
		s.logger().Warn("symptom analysis model call failed", zap.Error(err))
		return s.symptomDone(fallbackSymptom()), nil
	}

	reply, tier := ParseJSON[symptomReply](raw)
	out := domain.SymptomAnalysis{
		Assessment: strings.TrimSpace(reply.Assessment),
		Causes:     orEmpty(reply.Causes),
		NextSteps:  orEmpty(reply.NextSteps),
		Urgency:    domain.ParseUrgency(reply.Urgency),
		Disclaimer: orDefault(reply.Disclaimer, SymptomDisclaimer),
		Source:     domain.SourceLive,
	}
	if tier == TierRaw || (out.Assessment == "" && len(out.Causes) == 0 && len(out.NextSteps) == 0) {
		s.logger().Warn("symptom reply not structured, keeping raw text", zap.Stringer("tier", tier))
		out.Assessment = strings.TrimSpace(raw)
		out.Source = domain.SourceRecovered
	}
	return s.symptomDone(out), nil
}

// AnalyzeImage screens a stored image referenced by URL or by record id.
func (s *Service) AnalyzeImage(ctx context.Context, q domain.ImageQuery) (domain.ImageAnalysis, error) {
	imageURL := strings.TrimSpace(q.ImageURL)
	if imageURL == "" && q.RecordID != "" {
		if s.Records == nil || strings.TrimSpace(q.OwnerID) == "" {
			return domain.ImageAnalysis{}, fmt.Errorf("%w: record lookup needs an owner", records.ErrInvalidInput)
		}
		rec, err := s.Records.Get(ctx, q.OwnerID, records.RecordID(q.RecordID))
		if err != nil {
			return domain.ImageAnalysis{}, err
		}
		imageURL = rec.FileURL
		if !rec.HasStoredFile() {
			imageURL = records.UnavailableURL
		}
	}
	if imageURL == "" {
		return domain.ImageAnalysis{}, fmt.Errorf("%w: image_url or record_id is required", records.ErrInvalidInput)
	}
	// The mock result does not depend on the image.
	if s.Policy.ShouldUseMock(degrade.Model) {
		return s.imageDone(mockImage(q.ImageType)), nil
	}
	if !records.IsStoredURL(imageURL) {
		s.logger().Warn("image analysis requested for an image that was never stored",
			zap.String("record_id", q.RecordID))
		return s.imageDone(unavailableImage()), nil
	}
	if s.Signer != nil {
		signed, err := s.Signer.SignURL(ctx, imageURL)
		if err != nil {
			s.logger().Warn("could not sign stored image url", zap.Error(err))
			return s.imageDone(unavailableImage()), nil
		}
		imageURL = signed
	}

	raw, err := s.complete(ctx, ai.Request{
		System:    s.Prompts.System(),
		Prompt:    s.Prompts.Image(q.ImageType),
		ImageURL:  imageURL,
		MaxTokens: visionMaxTokens,
	})
	if err != nil {
		s.logger().Warn("image analysis model call failed", zap.Error(err))
		return s.imageDone(fallbackImage(modelFailedNote)), nil
	}

	reply, tier := ParseJSON[imageReply](raw)
	out := domain.ImageAnalysis{
		Analysis:       strings.TrimSpace(reply.Analysis),
		Findings:       orEmpty(reply.Findings),
		Recommendation: strings.TrimSpace(reply.Recommendation),
		Urgency:        domain.ParseUrgency(reply.Urgency),
		Disclaimer:     withScreening(reply.Disclaimer),
		Source:         domain.SourceLive,
	}
	if tier == TierRaw || (out.Analysis == "" && len(out.Findings) == 0) {
		s.logger().Warn("image reply not structured, keeping raw text", zap.Stringer("tier", tier))
		out.Analysis = strings.TrimSpace(raw)
		out.Source = domain.SourceRecovered
	}
	return s.imageDone(out), nil
}

// GenerateHealthSummary briefs a clinician on all of a patient's records.
// Record store failures are returned; model failures are not.
func (s *Service) GenerateHealthSummary(ctx context.Context, patientID string) (domain.HealthSummary, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return domain.HealthSummary{}, fmt.Errorf("%w: patient id is required", records.ErrInvalidInput)
	}
	recs, err := s.Records.FindByOwner(ctx, patientID)
	if err != nil {
		return domain.HealthSummary{}, fmt.Errorf("load records: %w", err)
	}
	if len(recs) == 0 {
		return s.summaryDone(noRecordsSummary()), nil
	}
	if s.Policy.ShouldUseMock(degrade.Model) {
		return s.summaryDone(mockSummary(len(recs))), nil
	}

	h := BuildHistory(recs, s.maxHistoryBytes())
	if h.Truncated {
		s.logger().Info("health summary history truncated",
			zap.String("patient", patientID), zap.Int("included", h.Included), zap.Int("total", h.Total))
	}

	raw, err := s.complete(ctx, ai.Request{
		System:      s.Prompts.System(),
		Prompt:      s.Prompts.HealthSummary(h.Text),
		Temperature: summaryTemperature,
	})
	if err != nil {
		s.logger().Warn("health summary model call failed", zap.Error(err))
		out := fallbackSummary(len(recs))
		out.Truncated = h.Truncated
		return s.summaryDone(out), nil
	}

	reply, tier := ParseJSON[summaryReply](raw)
	priority := reply.Priority
	if priority == "" {
		priority = reply.Urgency
	}
	out := domain.HealthSummary{
		Summary:         strings.TrimSpace(reply.Summary),
		Recommendations: orEmpty(reply.Recommendations),
		Priority:        domain.ParseUrgency(priority),
		Disclaimer:      orDefault(reply.Disclaimer, SummaryDisclaimer),
		RecordCount:     len(recs),
		Truncated:       h.Truncated,
		Source:          domain.SourceLive,
	}
	if tier == TierRaw || (out.Summary == "" && len(out.Recommendations) == 0) {
		s.logger().Warn("summary reply not structured, keeping raw text", zap.Stringer("tier", tier))
		out.Summary = strings.TrimSpace(raw)
		out.Source = domain.SourceRecovered
	}
	return s.summaryDone(out), nil
}

// complete treats a blank reply like a failed call.
func (s *Service) complete(ctx context.Context, req ai.Request) (string, error) {
	raw, err := s.Model.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty reply", ai.ErrModelUnavailable)
	}
	return raw, nil
}

func (s *Service) symptomDone(r domain.SymptomAnalysis) domain.SymptomAnalysis {
	r.Degraded = r.Source.Degraded()
	s.metrics().Analyzed("symptom", string(r.Source))
	return r
}

func (s *Service) imageDone(r domain.ImageAnalysis) domain.ImageAnalysis {
	r.Degraded = r.Source.Degraded()
	s.metrics().Analyzed("image", string(r.Source))
	return r
}

func (s *Service) summaryDone(r domain.HealthSummary) domain.HealthSummary {
	r.Degraded = r.Source.Degraded()
	s.metrics().Analyzed("summary", string(r.Source))
	return r
}

func (s *Service) maxHistoryBytes() int {
	if s.MaxHistoryBytes == 0 {
		return DefaultMaxHistoryBytes
	}
	return s.MaxHistoryBytes
}

func (s *Service) metrics() application.Recorder {
	if s.Metrics == nil {
		return application.NopRecorder{}
	}
	return s.Metrics
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
