// Package ingest turns an uploaded medical file into a persisted record.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medibridge/carepipe/internal/application"
	"github.com/medibridge/carepipe/internal/application/degrade"
	"github.com/medibridge/carepipe/internal/domain/records"
)

const defaultPersistTimeout = 5 * time.Second

// Service implements the record ingestion use-cases.
// Service is stateless across calls and safe for concurrent use.
type Service struct {
	Repo      records.Repository
	Store     records.ObjectStore
	Extractor records.TextExtractor
	Policy    degrade.Policy
	Clock     application.Clock
	Metrics   application.Recorder
	Logger    *zap.Logger

	// PersistTimeout bounds the record write, which runs detached from the
	// caller's cancellation.
	PersistTimeout time.Duration
}

// Ingest uploads and extracts the payload concurrently, then persists a record
// combining both outcomes. Storage and extraction failures are absorbed into
// sentinel values; only invalid input and persistence failures are returned.
// The payload is released on every path.
func (s *Service) Ingest(ctx context.Context, req records.UploadRequest) (*records.Record, error) {
	if req.Payload == nil {
		return nil, fmt.Errorf("%w: no file uploaded", records.ErrInvalidInput)
	}
	defer s.release(req.Payload)

	owner := strings.TrimSpace(req.OwnerID)
	if owner == "" {
		return nil, fmt.Errorf("%w: missing owner identity", records.ErrInvalidInput)
	}
	data, err := req.Payload.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable upload: %v", records.ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", records.ErrInvalidInput)
	}

	log := s.logger().With(zap.String("owner", owner), zap.String("file", req.FileName), zap.Int("bytes", len(data)))
	contentType := mimetype.Detect(data).String()

	var (
		fileURL, text             string
		urlDegraded, textDegraded bool
	)
	var g errgroup.Group
	g.Go(func() error {
		fileURL, urlDegraded = s.upload(ctx, log, owner, req.FileName, data, contentType)
		return nil
	})
	g.Go(func() error {
		text, textDegraded = s.extract(ctx, log, req.FileName, data)
		return nil
	})
	_ = g.Wait()

	rec := &records.Record{
		ID:            records.RecordID(uuid.Must(uuid.NewV7()).String()),
		OwnerID:       owner,
		Title:         resolveTitle(req.Title, req.FileName),
		FileURL:       fileURL,
		ContentType:   contentType,
		ExtractedText: text,
		Summary:       records.StatusPendingAnalysis,
		CreatedAt:     s.now(),
	}

	// The caller may have gone away; the document is still recorded.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout())
	defer cancel()
	if err := s.Repo.Create(pctx, rec); err != nil {
		log.Error("record persistence failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}

	var degraded []string
	if urlDegraded {
		degraded = append(degraded, string(degrade.Storage))
	}
	if textDegraded {
		degraded = append(degraded, string(degrade.OCR))
	}
	s.metrics().Ingested(degraded)
	log.Info("record ingested",
		zap.String("record_id", string(rec.ID)),
		zap.String("content_type", contentType),
		zap.Strings("degraded", degraded),
	)
	return rec, nil
}

// upload returns the stored URL, or a sentinel and true when storage was skipped or failed.
func (s *Service) upload(ctx context.Context, log *zap.Logger, owner, fileName string, data []byte, contentType string) (url string, degraded bool) {
	if s.Policy.ShouldUseMock(degrade.Storage) || s.Store == nil {
		return records.MockStorageURL, true
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("storage adapter panicked", zap.Any("panic", r))
			url, degraded = records.UnavailableURL, true
		}
	}()

	url, err := s.Store.Put(ctx, records.ObjectKey(owner, fileName), data, contentType)
	if err != nil || url == "" {
		log.Warn("storage upload failed, continuing with sentinel url", zap.Error(err))
		return records.UnavailableURL, true
	}
	return url, false
}

// extract returns the OCR text, or a sentinel and true when extraction was skipped or failed.
func (s *Service) extract(ctx context.Context, log *zap.Logger, fileName string, data []byte) (text string, degraded bool) {
	if s.Policy.ShouldUseMock(degrade.OCR) || s.Extractor == nil {
		return records.ExtractionSkippedText, true
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("ocr adapter panicked", zap.Any("panic", r))
			text, degraded = records.ExtractionFailedText, true
		}
	}()

	text, err := s.Extractor.Extract(ctx, fileName, data)
	if err != nil {
		log.Warn("text extraction failed, continuing with sentinel text", zap.Error(err))
		return records.ExtractionFailedText, true
	}
	return text, false
}

// List returns the owner's records, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]*records.Record, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("%w: missing owner identity", records.ErrInvalidInput)
	}
	out, err := s.Repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*records.Record{}
	}
	return out, nil
}

// Get returns one record if it belongs to owner.
func (s *Service) Get(ctx context.Context, owner string, id records.RecordID) (*records.Record, error) {
	if strings.TrimSpace(owner) == "" || id == "" {
		return nil, fmt.Errorf("%w: owner and id are required", records.ErrInvalidInput)
	}
	return s.Repo.Get(ctx, owner, id)
}

func (s *Service) release(p records.Payload) {
	if err := p.Release(); err != nil {
		s.logger().Warn("failed to remove temporary upload", zap.Error(err))
	}
}

// resolveTitle prefers the caller's title, then the file's base name. Both
// are normalized since a client controls either.
func resolveTitle(title, fileName string) string {
	if t := records.NormalizeTitle(title); t != "" {
		return t
	}
	if fileName != "" {
		if base := filepath.Base(fileName); base != "." && base != "/" {
			if t := records.NormalizeTitle(base); t != "" {
				return t
			}
		}
	}
	return records.DefaultTitle
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func (s *Service) persistTimeout() time.Duration {
	if s.PersistTimeout <= 0 {
		return defaultPersistTimeout
	}
	return s.PersistTimeout
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
