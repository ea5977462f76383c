package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/models"
	"docchat/internal/session"
)

func testFiles(names ...string) []models.FileInfo {
	files := make([]models.FileInfo, 0, len(names))
	for i, name := range names {
		files = append(files, models.FileInfo{
			Name:      name,
			Path:      "/tmp/" + name,
			SizeBytes: int64(1024 * (i + 1)),
			Extension: models.FileExtension(name),
		})
	}
	return files
}

func statuses(u session.Uploads) []models.JobStatus {
	out := make([]models.JobStatus, 0, len(u.Jobs()))
	for _, j := range u.Jobs() {
		out = append(out, j.Status)
	}
	return out
}

func TestEnqueueCreatesPendingJobs(t *testing.T) {
	var u session.Uploads
	u, batch := u.Enqueue(testFiles("a.pdf", "b.txt", "c.docx"), t0)

	require.Len(t, batch.JobIDs, 3)
	jobs := u.Jobs()
	require.Len(t, jobs, 3)

	seen := map[string]bool{}
	for i, job := range jobs {
		assert.Equal(t, batch.JobIDs[i], job.ID)
		assert.Equal(t, models.StatusPending, job.Status, "jobs exist before any network I/O")
		assert.False(t, seen[job.ID], "job IDs must be unique")
		seen[job.ID] = true
	}
	assert.Equal(t, "a.pdf", jobs[0].Name)
	assert.Equal(t, int64(1024), jobs[0].SizeBytes)
	assert.Equal(t, ".pdf", jobs[0].Extension)
	assert.Equal(t, ".docx", jobs[2].Extension)
}

func TestEnqueueEmptyIsNoOp(t *testing.T) {
	var u session.Uploads
	got, batch := u.Enqueue(nil, t0)
	assert.True(t, batch.Empty())
	assert.Empty(t, got.Jobs())
}

func TestDispatchMarksBatchProcessing(t *testing.T) {
	var u session.Uploads
	u, batch := u.Enqueue(testFiles("a.pdf", "b.pdf"), t0)
	u = u.Dispatch(batch, t0)

	assert.Equal(t, []models.JobStatus{models.StatusProcessing, models.StatusProcessing}, statuses(u))
}

func TestBatchResolvesTogether(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(session.Uploads, session.Batch) session.Uploads
		want    models.JobStatus
	}{
		{"success", func(u session.Uploads, b session.Batch) session.Uploads {
			return u.Complete(b, t0)
		}, models.StatusCompleted},
		{"failure", func(u session.Uploads, b session.Batch) session.Uploads {
			return u.Fail(b, t0)
		}, models.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u session.Uploads
			u, batch := u.Enqueue(testFiles("a.pdf", "b.pdf", "c.pdf"), t0)
			u = u.Dispatch(batch, t0)
			u = tt.resolve(u, batch)

			for _, st := range statuses(u) {
				assert.Equal(t, tt.want, st, "outcome is batch-wide, never mixed")
			}
		})
	}
}

func TestTerminalTransitionsRequireDispatch(t *testing.T) {
	var u session.Uploads
	u, batch := u.Enqueue(testFiles("a.pdf"), t0)

	// Without Dispatch there is no pending->completed edge.
	got := u.Complete(batch, t0)
	assert.Equal(t, []models.JobStatus{models.StatusPending}, statuses(got))
}

func TestCompletedJobsIgnoreLateOutcome(t *testing.T) {
	var u session.Uploads
	u, batch := u.Enqueue(testFiles("a.pdf"), t0)
	u = u.Dispatch(batch, t0)
	u = u.Complete(batch, t0)

	got := u.Fail(batch, t0)
	assert.Equal(t, []models.JobStatus{models.StatusCompleted}, statuses(got),
		"terminal statuses have no outgoing edges")
}

func TestInterleavedBatchesResolveIndependently(t *testing.T) {
	var u session.Uploads
	u, first := u.Enqueue(testFiles("a.pdf", "b.pdf"), t0)
	u = u.Dispatch(first, t0)
	u, second := u.Enqueue(testFiles("c.pdf", "d.pdf", "e.pdf"), t0.Add(time.Second))
	u = u.Dispatch(second, t0.Add(time.Second))

	// Second batch resolves before the first.
	u = u.Complete(second, t0.Add(2*time.Second))
	u = u.Fail(first, t0.Add(3*time.Second))

	want := []models.JobStatus{
		models.StatusError, models.StatusError,
		models.StatusCompleted, models.StatusCompleted, models.StatusCompleted,
	}
	assert.Equal(t, want, statuses(u))
}

func TestRemoveJob(t *testing.T) {
	var u session.Uploads
	u, batch := u.Enqueue(testFiles("a.pdf", "b.pdf"), t0)

	got := u.Remove(batch.JobIDs[0])
	require.Len(t, got.Jobs(), 1)
	_, found := got.Job(batch.JobIDs[0])
	assert.False(t, found)
	_, found = got.Job(batch.JobIDs[1])
	assert.True(t, found)

	// Unknown ID is a no-op, and so is removing twice.
	assert.Len(t, got.Remove("no-such-id").Jobs(), 1)
	assert.Len(t, got.Remove(batch.JobIDs[0]).Jobs(), 1)
}

func TestRemovedJobSkippedByBatchOutcome(t *testing.T) {
	var u session.Uploads
	u, batch := u.Enqueue(testFiles("a.pdf", "b.pdf"), t0)
	u = u.Dispatch(batch, t0)
	u = u.Remove(batch.JobIDs[0])

	u = u.Complete(batch, t0)
	jobs := u.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, batch.JobIDs[1], jobs[0].ID)
	assert.Equal(t, models.StatusCompleted, jobs[0].Status)
}

func TestUploadsSnapshotsDoNotAlias(t *testing.T) {
	var base session.Uploads
	base, batch := base.Enqueue(testFiles("a.pdf", "b.pdf"), t0)

	dispatched := base.Dispatch(batch, t0)
	assert.Equal(t, []models.JobStatus{models.StatusPending, models.StatusPending}, statuses(base),
		"base snapshot must be untouched")
	assert.Equal(t, []models.JobStatus{models.StatusProcessing, models.StatusProcessing}, statuses(dispatched))

	removed := base.Remove(batch.JobIDs[0])
	assert.Len(t, base.Jobs(), 2)
	assert.Len(t, removed.Jobs(), 1)
}
