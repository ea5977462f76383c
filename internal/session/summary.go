package session

import (
	"time"

	"docchat/internal/models"
)

// SummaryCache holds the last successfully fetched collection summary.
// Refresh failures never touch it: the previous value stays available,
// stale but intact.
type SummaryCache struct {
	summary     models.CollectionSummary
	loaded      bool
	refreshedAt time.Time
}

// Apply replaces the cached summary wholesale and records the refresh
// instant. There is no partial update path.
func (c SummaryCache) Apply(s models.CollectionSummary, now time.Time) SummaryCache {
	c.summary = s
	c.loaded = true
	c.refreshedAt = now
	return c
}

// Summary returns the cached value and whether any refresh has succeeded.
func (c SummaryCache) Summary() (models.CollectionSummary, bool) {
	return c.summary, c.loaded
}

// RefreshedAt returns the instant of the last successful refresh, or the
// zero time if none has succeeded yet.
func (c SummaryCache) RefreshedAt() time.Time { return c.refreshedAt }
