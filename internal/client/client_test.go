// Package client_test verifies the backend wire contract against stub servers.
package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/client"
	"docchat/internal/metrics"
	"docchat/internal/models"
)

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("DOCCHAT_BACKEND_URL", "")
	assert.Equal(t, "http://localhost:5000", client.New("", nil).BaseURL())

	t.Setenv("DOCCHAT_BACKEND_URL", "http://rag.internal:9100")
	assert.Equal(t, "http://rag.internal:9100", client.New("", nil).BaseURL())

	// Explicit address wins over the environment, trailing slash trimmed.
	assert.Equal(t, "http://10.0.0.1:5000", client.New("http://10.0.0.1:5000/", nil).BaseURL())
}

func TestQuerySendsFixedRetrievalDepth(t *testing.T) {
	var captured struct {
		Query    string `json:"query"`
		NResults int    `json:"n_results"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/query", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"answer": "Returns are accepted within 30 days of purchase.",
			"sources": [{"filename": "policy.pdf", "page": 3, "relevance": 0.92}],
			"model": "llama3.2",
			"num_chunks": 5
		}`))
	}))
	defer srv.Close()

	res, err := client.New(srv.URL, nil).Query(context.Background(), "What is the refund policy?")
	require.NoError(t, err)

	assert.Equal(t, "What is the refund policy?", captured.Query)
	assert.Equal(t, 5, captured.NResults)

	assert.Equal(t, "Returns are accepted within 30 days of purchase.", res.Answer)
	assert.Equal(t, "llama3.2", res.Model)
	assert.Equal(t, 5, res.NumChunks)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "policy.pdf", res.Sources[0].Filename)
	assert.Equal(t, 3, res.Sources[0].Page)
	assert.InDelta(t, 0.92, res.Sources[0].Relevance, 1e-9)
}

func TestQueryDefaultsMissingSourcesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer": "No relevant documents found.", "model": "llama3.2", "num_chunks": 0}`))
	}))
	defer srv.Close()

	res, err := client.New(srv.URL, nil).Query(context.Background(), "anything")
	require.NoError(t, err)

	assert.NotNil(t, res.Sources)
	assert.Empty(t, res.Sources)
}

func TestQuerySurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Ollama is not running"}`))
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, nil).Query(context.Background(), "ping")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Ollama is not running", apiErr.Message)
	assert.Contains(t, err.Error(), "query backend")
}

func writeTestFile(t *testing.T, dir, name, content string) models.FileInfo {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return models.FileInfo{
		Name:      name,
		Path:      path,
		SizeBytes: int64(len(content)),
		Extension: models.FileExtension(name),
	}
}

func TestUploadSendsBatchAsSingleRequest(t *testing.T) {
	dir := t.TempDir()
	files := []models.FileInfo{
		writeTestFile(t, dir, "report.pdf", "pdf bytes"),
		writeTestFile(t, dir, "notes.txt", "plain notes"),
	}

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		// Every file travels under the same form field.
		parts := r.MultipartForm.File["files"]
		require.Len(t, parts, 2)
		assert.Equal(t, "report.pdf", parts[0].Filename)
		assert.Equal(t, "notes.txt", parts[1].Filename)

		_, _ = w.Write([]byte(`{
			"success": true,
			"files_processed": 2,
			"files": ["report.pdf", "notes.txt"],
			"message": "Successfully processed 2 file(s)"
		}`))
	}))
	defer srv.Close()

	res, err := client.New(srv.URL, nil).Upload(context.Background(), files, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Uploaded())
	assert.Equal(t, []string{"report.pdf", "notes.txt"}, res.Files)
}

func TestUploadReportsProgress(t *testing.T) {
	dir := t.TempDir()
	files := []models.FileInfo{
		writeTestFile(t, dir, "a.txt", "aaaa"),
		writeTestFile(t, dir, "b.txt", "bbbbbb"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "files_processed": 2, "files": ["a.txt", "b.txt"], "message": "ok"}`))
	}))
	defer srv.Close()

	var progress bytes.Buffer
	_, err := client.New(srv.URL, nil).Upload(context.Background(), files, &progress)
	require.NoError(t, err)

	// The progress writer sees exactly the file content, not multipart framing.
	assert.Equal(t, "aaaabbbbbb", progress.String())
}

func TestUploadSurfacesBackendError(t *testing.T) {
	dir := t.TempDir()
	files := []models.FileInfo{writeTestFile(t, dir, "virus.exe", "nope")}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "File type not allowed: virus.exe"}`))
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, nil).Upload(context.Background(), files, nil)
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "File type not allowed")
}

func TestUploadMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the backend when staging fails")
	}))
	defer srv.Close()

	files := []models.FileInfo{{Name: "gone.pdf", Path: filepath.Join(t.TempDir(), "gone.pdf")}}
	_, err := client.New(srv.URL, nil).Upload(context.Background(), files, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.pdf")
}

func TestHealthParsesCollectionCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": "healthy",
			"ollama": "connected",
			"database": "connected",
			"model": "llama3.2",
			"collection": {"document_count": 7, "chunk_count": 154}
		}`))
	}))
	defer srv.Close()

	h, err := client.New(srv.URL, nil).Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "connected", h.Ollama)
	assert.Equal(t, 7, h.Collection.DocumentCount)
	assert.Equal(t, 154, h.Collection.ChunkCount)
	assert.Equal(t, models.CollectionSummary{DocumentCount: 7, ChunkCount: 154}, h.Summary())
}

func TestDocumentsListsCorpus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents", r.URL.Path)
		_, _ = w.Write([]byte(`{"documents": ["policy.pdf", "handbook.docx"], "total": 2}`))
	}))
	defer srv.Close()

	docs, err := client.New(srv.URL, nil).Documents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, docs.Total)
	assert.Equal(t, []string{"policy.pdf", "handbook.docx"}, docs.Documents)
}

func TestStatsParsesCollectionInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"collection_name": "documents",
			"total_chunks": 154,
			"unique_documents": 7,
			"document_names": ["policy.pdf"],
			"persist_directory": "/data/chroma"
		}`))
	}))
	defer srv.Close()

	info, err := client.New(srv.URL, nil).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "documents", info.CollectionName)
	assert.Equal(t, 154, info.TotalChunks)
	assert.Equal(t, 7, info.UniqueDocuments)
	assert.Equal(t, "/data/chroma", info.PersistDirectory)
}

func TestRequestMetricsRecorded(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "boom"}`))
			return
		}
		_, _ = w.Write([]byte(`{"answer": "ok", "sources": [], "model": "m", "num_chunks": 1}`))
	}))
	defer srv.Close()

	collector := metrics.NewCollector()
	c := client.New(srv.URL, collector)

	_, err := c.Query(context.Background(), "first")
	require.NoError(t, err)

	fail = true
	_, err = c.Query(context.Background(), "second")
	require.Error(t, err)

	snap := collector.Snapshot()
	require.NotNil(t, snap.Query)
	assert.Equal(t, int64(2), snap.Query.Count)
	assert.Equal(t, int64(1), snap.Query.Errors)
	assert.Nil(t, snap.Upload)
}

func TestErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, nil).Health(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "502")
}
