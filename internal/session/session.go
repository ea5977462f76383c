// Package session implements the in-memory orchestrator state for one
// docchat run: the conversation transcript, the upload job tracker, and the
// collection summary cache. Containers are immutable values; every operation
// returns a new container whose backing storage is never shared with the
// old one, so a prior snapshot stays valid after any update. All mutation
// happens on the UI event loop, so no locking is needed.
package session

import "time"

// Session is the single aggregate owning all orchestrator state. Nothing
// outside the session holds a reference into its containers, and the
// containers hold no back-reference to the session.
type Session struct {
	Transcript Transcript
	Uploads    Uploads
	Summary    SummaryCache
}

// New returns a fresh session: a greeted transcript, no upload jobs, and an
// unloaded summary cache.
func New(now time.Time) Session {
	return Session{Transcript: NewTranscript(now)}
}
