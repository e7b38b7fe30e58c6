package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/medibridge/carepipe/internal/application/analysis"
	appingest "github.com/medibridge/carepipe/internal/application/ingest"
	domain "github.com/medibridge/carepipe/internal/domain/analysis"
	"github.com/medibridge/carepipe/internal/domain/records"
	"github.com/medibridge/carepipe/internal/logging"
	"github.com/medibridge/carepipe/internal/middleware"
)

const (
	maxJSONBody  = 1 << 20
	maxTitleSize = 4 << 10
	// multipart headers and the title field on top of the file itself
	multipartOverhead = 1 << 20
)

var errForbidden = errors.New("forbidden")

// Options wires the router to its services.
type Options struct {
	Ingest   *appingest.Service
	Analysis *appanalysis.Service
	Logger   *zap.Logger

	JWTSecret      []byte
	AllowedOrigins []string
	RateCapacity   int
	RateRefill     int

	UploadDir      string
	UploadMaxBytes int64

	// Health checks and degradation snapshot for GET /health.
	Checkers map[string]middleware.HealthChecker
	Snapshot func() map[string]string
}

type Router struct {
	ingestSvc   *appingest.Service
	analysisSvc *appanalysis.Service
	log         *zap.Logger

	uploadDir      string
	uploadMaxBytes int64
}

func NewRouter(o Options) http.Handler {
	log := logging.OrNop(o.Logger)
	r := &Router{
		ingestSvc:      o.Ingest,
		analysisSvc:    o.Analysis,
		log:            log,
		uploadDir:      o.UploadDir,
		uploadMaxBytes: o.UploadMaxBytes,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(o.Checkers, o.Snapshot))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.JWTAuth(o.JWTSecret))
		if o.RateCapacity > 0 {
			rt.Use(middleware.RateLimitMiddleware(o.RateCapacity, o.RateRefill))
		}

		rt.Post("/records/upload", r.wrap(r.handleUpload))
		rt.Get("/records", r.wrap(r.handleList))
		rt.Get("/records/{id}", r.wrap(r.handleGet))

		rt.Post("/ai/check-symptoms", r.wrap(r.handleSymptoms))
		rt.Post("/ai/analyze-image", r.wrap(r.handleImage))
		rt.Post("/ai/health-summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, records.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, records.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, errForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			// persistence and other infrastructure failures; details stay in the log
			r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxJSONBody)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body: %v", records.ErrInvalidInput, err)
	}
	return nil
}

// POST /v1/records/upload
// multipart/form-data: file=<binary>, title=<text>
// The file part is streamed to a temp file; it never sits fully in the request buffer.
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	owner := middleware.GetOwnerFromContext(req.Context())
	if r.uploadMaxBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.uploadMaxBytes+multipartOverhead)
	}
	mr, err := req.MultipartReader()
	if err != nil {
		return fmt.Errorf("%w: expected multipart/form-data: %v", records.ErrInvalidInput, err)
	}

	var (
		payload  *records.FilePayload
		fileName string
		title    string
	)
	// Ingest releases the payload; this covers the early returns before it.
	defer func() {
		if payload != nil {
			_ = payload.Release()
		}
	}()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return multipartErr(err)
		}
		switch part.FormName() {
		case "file":
			if payload != nil {
				_, _ = io.Copy(io.Discard, part)
				break
			}
			fileName = part.FileName()
			payload, err = records.Spool(part, r.uploadDir, r.uploadMaxBytes)
			if err != nil {
				return multipartErr(err)
			}
		case "title":
			title, err = readField(part)
			if err != nil {
				return multipartErr(err)
			}
		default:
			_, _ = io.Copy(io.Discard, part)
		}
		_ = part.Close()
	}
	if payload == nil {
		return fmt.Errorf("%w: no file uploaded", records.ErrInvalidInput)
	}

	rec, err := r.ingestSvc.Ingest(req.Context(), records.UploadRequest{
		OwnerID:  owner,
		Title:    middleware.SanitizeTitle(title),
		FileName: fileName,
		Payload:  payload,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

func readField(p *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(p, maxTitleSize+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxTitleSize {
		return "", fmt.Errorf("%w: title too long", records.ErrInvalidInput)
	}
	return string(b), nil
}

// multipartErr keeps size and validation errors, everything else is a malformed body.
func multipartErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, records.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: malformed multipart body: %v", records.ErrInvalidInput, err)
}

// GET /v1/records
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.ingestSvc.List(req.Context(), middleware.GetOwnerFromContext(req.Context()))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/records/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	rec, err := r.ingestSvc.Get(req.Context(), middleware.GetOwnerFromContext(req.Context()), records.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

// POST /v1/ai/check-symptoms
// Body: {"symptoms": "...", "age": 30, "gender": "Male", "history": "..."}
func (r *Router) handleSymptoms(w http.ResponseWriter, req *http.Request) error {
	var q domain.SymptomQuery
	if err := decodeJSON(w, req, &q); err != nil {
		return err
	}
	q.Symptoms = middleware.SanitizeString(q.Symptoms)
	q.Gender = middleware.SanitizeString(q.Gender)
	q.History = middleware.SanitizeString(q.History)
	if err := middleware.ValidateSymptoms(q.Symptoms, q.Age); err != nil {
		return fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
	}

	res, err := r.analysisSvc.AnalyzeSymptoms(req.Context(), q)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// POST /v1/ai/analyze-image
// Body: {"image_url": "...", "record_id": "...", "image_type": "X-Ray"}
func (r *Router) handleImage(w http.ResponseWriter, req *http.Request) error {
	var q domain.ImageQuery
	if err := decodeJSON(w, req, &q); err != nil {
		return err
	}
	q.OwnerID = middleware.GetOwnerFromContext(req.Context())
	q.ImageURL = strings.TrimSpace(q.ImageURL)
	q.RecordID = strings.TrimSpace(q.RecordID)
	q.ImageType = middleware.SanitizeString(q.ImageType)
	if err := middleware.ValidateImageURL(q.ImageURL); err != nil {
		return fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
	}
	if err := middleware.ValidateImageType(q.ImageType); err != nil {
		return fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
	}

	res, err := r.analysisSvc.AnalyzeImage(req.Context(), q)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// POST /v1/ai/health-summary
// Body: {"patient_id": "..."}; defaults to the caller. Only doctors may name another patient.
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	var q domain.SummaryQuery
	if req.ContentLength != 0 {
		if err := decodeJSON(w, req, &q); err != nil {
			return err
		}
	}
	owner := middleware.GetOwnerFromContext(req.Context())
	patient := strings.TrimSpace(q.PatientID)
	switch {
	case patient == "" || patient == owner:
		patient = owner
	case middleware.GetRoleFromContext(req.Context()) != middleware.RoleDoctor:
		return errForbidden
	default:
		if err := middleware.ValidateOwnerID(patient); err != nil {
			return fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
		}
	}

	res, err := r.analysisSvc.GenerateHealthSummary(req.Context(), patient)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}
