// Package client provides the HTTP client for the docchat backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"docchat/internal/metrics"
	"docchat/internal/models"
)

// queryResults is the number of chunks the backend retrieves per query.
const queryResults = 5

// uploadField is the multipart form field every file is sent under.
const uploadField = "files"

// Client talks to the backend over plain JSON and multipart HTTP.
//
// Requests carry no timeout and are never retried: a backend that stops
// responding leaves the call in flight until the connection itself dies.
// Callers own that trade-off, so do not add a deadline here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// New creates a backend client.
// If baseURL is empty, uses the DOCCHAT_BACKEND_URL env var or defaults to
// localhost:5000. A nil collector disables request metrics.
func New(baseURL string, collector *metrics.Collector) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("DOCCHAT_BACKEND_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		metrics:    collector,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is a non-2xx response from the backend, carrying the error
// message from the response body when one was provided.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// do executes the request and decodes the JSON response into out when
// provided. Non-2xx responses become an *APIError with the backend's
// "error" body field. Timing and outcome are recorded per operation.
func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	err := c.roundTrip(req, out)
	if c.metrics != nil {
		if err != nil {
			c.metrics.RecordFailure(op, time.Since(start))
		} else {
			c.metrics.RecordTiming(op, time.Since(start))
		}
	}
	return err
}

func (c *Client) roundTrip(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// =============================================================================
// TYPES (matching the backend's JSON wire format)
// =============================================================================

// Health is the backend health report.
type Health struct {
	Status     string          `json:"status"`
	Ollama     string          `json:"ollama"`
	Database   string          `json:"database"`
	Model      string          `json:"model"`
	Collection CollectionStats `json:"collection"`
}

// CollectionStats carries the corpus counters inside the health report.
type CollectionStats struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
}

// Summary extracts the counters as a collection summary snapshot.
func (h Health) Summary() models.CollectionSummary {
	return models.CollectionSummary{
		DocumentCount: h.Collection.DocumentCount,
		ChunkCount:    h.Collection.ChunkCount,
	}
}

// QueryResult is the answer payload for one question.
type QueryResult struct {
	Answer    string            `json:"answer"`
	Sources   []models.Citation `json:"sources"`
	Model     string            `json:"model"`
	NumChunks int               `json:"num_chunks"`
}

// UploadResult reports one processed upload batch.
type UploadResult struct {
	Files     []string `json:"files"`
	Processed int      `json:"files_processed"`
	Message   string   `json:"message"`
}

// Uploaded is the number of documents the backend accepted.
func (r UploadResult) Uploaded() int { return len(r.Files) }

// DocumentList names the indexed source documents.
type DocumentList struct {
	Documents []string `json:"documents"`
	Total     int      `json:"total"`
}

// CollectionInfo is the verbose collection report from the stats endpoint.
type CollectionInfo struct {
	CollectionName   string   `json:"collection_name"`
	TotalChunks      int      `json:"total_chunks"`
	UniqueDocuments  int      `json:"unique_documents"`
	DocumentNames    []string `json:"document_names"`
	PersistDirectory string   `json:"persist_directory"`
}

type queryRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("create request: %w", err)
	}

	var out Health
	if err := c.do(req, metrics.OpHealth, &out); err != nil {
		return Health{}, fmt.Errorf("check health: %w", err)
	}
	return out, nil
}

// Query asks a question against the indexed corpus. The retrieval depth is
// fixed; an answer without sources comes back with an empty citation list.
func (c *Client) Query(ctx context.Context, question string) (QueryResult, error) {
	payload, err := json.Marshal(queryRequest{Query: question, NResults: queryResults})
	if err != nil {
		return QueryResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(payload))
	if err != nil {
		return QueryResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out QueryResult
	if err := c.do(req, metrics.OpQuery, &out); err != nil {
		return QueryResult{}, fmt.Errorf("query backend: %w", err)
	}
	if out.Sources == nil {
		out.Sources = []models.Citation{}
	}
	return out, nil
}

// Upload sends all files as one multipart request; the batch succeeds or
// fails as a whole. A non-nil progress writer observes the bytes staged
// into the request body.
func (c *Client) Upload(ctx context.Context, files []models.FileInfo, progress io.Writer) (UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		if err := writeFilePart(writer, f, progress); err != nil {
			return UploadResult{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("finalize upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadResult
	if err := c.do(req, metrics.OpUpload, &out); err != nil {
		return UploadResult{}, fmt.Errorf("upload files: %w", err)
	}
	return out, nil
}

// writeFilePart streams one file from disk into the multipart body.
func writeFilePart(w *multipart.Writer, f models.FileInfo, progress io.Writer) error {
	part, err := w.CreateFormFile(uploadField, f.Name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}

	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer src.Close()

	var reader io.Reader = src
	if progress != nil {
		reader = io.TeeReader(src, progress)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}
	return nil
}

// Documents lists the indexed source documents.
func (c *Client) Documents(ctx context.Context) (DocumentList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents", nil)
	if err != nil {
		return DocumentList{}, fmt.Errorf("create request: %w", err)
	}

	var out DocumentList
	if err := c.do(req, metrics.OpDocuments, &out); err != nil {
		return DocumentList{}, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Stats fetches the verbose collection report.
func (c *Client) Stats(ctx context.Context) (CollectionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("create request: %w", err)
	}

	var out CollectionInfo
	if err := c.do(req, metrics.OpStats, &out); err != nil {
		return CollectionInfo{}, fmt.Errorf("fetch stats: %w", err)
	}
	return out, nil
}
