package ocr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibridge/carepipe/internal/domain/records"
)

func TestExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "lab.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "Hemoglobin 13.5 g/dL"})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", time.Second)
	text, err := c.Extract(context.Background(), "/tmp/x/lab.png", []byte("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "Hemoglobin 13.5 g/dL", text)
}

func TestExtractNon2xxIsExtractionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "reader crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Extract(context.Background(), "a.png", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "500")
}

func TestExtractBadJSONIsExtractionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Extract(context.Background(), "a.png", []byte("x"))
	assert.ErrorIs(t, err, records.ErrExtractionFailed)
}

func TestExtractTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(server.URL, 50*time.Millisecond).Extract(context.Background(), "a.png", []byte("x"))
	assert.ErrorIs(t, err, records.ErrExtractionFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExtractUnreachable(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", time.Second).Extract(context.Background(), "a.png", []byte("x"))
	assert.ErrorIs(t, err, records.ErrExtractionFailed)
}
