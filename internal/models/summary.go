package models

// CollectionSummary is an aggregate snapshot of the backend corpus.
// Counts are backend-authoritative and replaced wholesale on refresh.
type CollectionSummary struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
}
