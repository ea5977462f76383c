package session

import (
	"time"

	"github.com/google/uuid"

	"docchat/internal/models"
)

// Batch identifies the jobs created by one Enqueue call. Its jobs share a
// single upload request and a single batch-wide outcome; transitions are
// keyed by job ID, so interleaved batches never touch each other's jobs.
type Batch struct {
	JobIDs []string
}

// Empty reports whether the batch holds no jobs.
func (b Batch) Empty() bool { return len(b.JobIDs) == 0 }

// Uploads tracks upload jobs in creation order.
type Uploads struct {
	jobs []models.UploadJob
}

// Jobs returns the tracked jobs in creation order. Callers must treat the
// returned slice as read-only.
func (u Uploads) Jobs() []models.UploadJob { return u.jobs }

// Job returns the job with the given ID, if present.
func (u Uploads) Job(id string) (models.UploadJob, bool) {
	for _, job := range u.jobs {
		if job.ID == id {
			return job, true
		}
	}
	return models.UploadJob{}, false
}

// Enqueue appends one pending job per file, before any network I/O happens,
// and returns the batch of newly created job IDs. Empty input is a no-op
// returning an empty batch.
func (u Uploads) Enqueue(files []models.FileInfo, now time.Time) (Uploads, Batch) {
	if len(files) == 0 {
		return u, Batch{}
	}
	jobs := make([]models.UploadJob, len(u.jobs), len(u.jobs)+len(files))
	copy(jobs, u.jobs)
	ids := make([]string, 0, len(files))
	for _, f := range files {
		id := uuid.New().String()[:8] // Short ID for convenience
		ids = append(ids, id)
		jobs = append(jobs, models.UploadJob{
			ID:        id,
			Name:      f.Name,
			SizeBytes: f.SizeBytes,
			Extension: f.Extension,
			Status:    models.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	u.jobs = jobs
	return u, Batch{JobIDs: ids}
}

// Dispatch marks every job of the batch processing, right before the batch
// upload request is issued.
func (u Uploads) Dispatch(b Batch, now time.Time) Uploads {
	return u.advance(b, models.StatusProcessing, now)
}

// Complete marks every job of the batch completed.
func (u Uploads) Complete(b Batch, now time.Time) Uploads {
	return u.advance(b, models.StatusCompleted, now)
}

// Fail marks every job of the batch error.
func (u Uploads) Fail(b Batch, now time.Time) Uploads {
	return u.advance(b, models.StatusError, now)
}

// Remove deletes the job with the given ID from the sequence. Removing an
// unknown ID is a no-op; there is no backend side effect either way.
func (u Uploads) Remove(id string) Uploads {
	for i, job := range u.jobs {
		if job.ID != id {
			continue
		}
		jobs := make([]models.UploadJob, 0, len(u.jobs)-1)
		jobs = append(jobs, u.jobs[:i]...)
		jobs = append(jobs, u.jobs[i+1:]...)
		u.jobs = jobs
		return u
	}
	return u
}

// advance applies a batch-wide status transition keyed by job ID. Jobs
// missing from the sequence (removed mid-flight) are skipped, as is any job
// whose current status has no edge to next.
func (u Uploads) advance(b Batch, next models.JobStatus, now time.Time) Uploads {
	if b.Empty() {
		return u
	}
	members := make(map[string]bool, len(b.JobIDs))
	for _, id := range b.JobIDs {
		members[id] = true
	}
	jobs := make([]models.UploadJob, len(u.jobs))
	copy(jobs, u.jobs)
	for i := range jobs {
		if !members[jobs[i].ID] || !jobs[i].Status.CanTransition(next) {
			continue
		}
		jobs[i].Status = next
		jobs[i].UpdatedAt = now
	}
	u.jobs = jobs
	return u
}
