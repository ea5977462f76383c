package models

import "time"

// JobStatus represents the lifecycle state of an upload job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// jobTransitions defines the only legal status edges. Terminal states
// (completed, error) have no outgoing edges.
var jobTransitions = map[JobStatus][]JobStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusError},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s JobStatus) CanTransition(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing edges.
func (s JobStatus) Terminal() bool {
	return len(jobTransitions[s]) == 0
}

// UploadJob tracks one file undergoing ingestion. Name, SizeBytes and
// Extension are captured at selection time and immutable afterwards; only
// Status advances, and only along the edges in jobTransitions.
type UploadJob struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	Extension string    `json:"extension"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileInfo describes a file selected for upload: the metadata an UploadJob
// is synthesized from, plus the path the upload request reads from.
type FileInfo struct {
	Name      string
	Path      string
	SizeBytes int64
	Extension string
}
