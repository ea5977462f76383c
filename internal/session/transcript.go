package session

import (
	"strings"
	"time"

	"docchat/internal/models"
)

// Greeting is the assistant message every new transcript starts with.
const Greeting = "Hi! Upload a document and ask me anything about it. Answers include the sources they came from."

// QueryFailureNotice is appended in place of an answer when a query
// round-trip fails, so the user always receives a paired response.
const QueryFailureNotice = "Sorry, something went wrong answering that. Check that the backend is running and try again."

// Transcript holds the ordered, append-only message log and the
// awaiting-response flag. At most one query is in flight at a time; a
// second submission while awaiting is silently ignored rather than queued.
type Transcript struct {
	messages []models.Message
	awaiting bool
	nextID   int
}

// NewTranscript returns a transcript seeded with the fixed greeting.
func NewTranscript(now time.Time) Transcript {
	t := Transcript{nextID: 1}
	return t.append(models.RoleAssistant, Greeting, nil, now)
}

// Messages returns the message log in creation order. Callers must treat
// the returned slice as read-only.
func (t Transcript) Messages() []models.Message { return t.messages }

// Awaiting reports whether a query round-trip is in flight.
func (t Transcript) Awaiting() bool { return t.awaiting }

// Submit appends a user message and marks the transcript awaiting a
// response. The accepted result is false, with the transcript unchanged,
// when text trims to empty or a query is already in flight.
func (t Transcript) Submit(text string, now time.Time) (Transcript, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || t.awaiting {
		return t, false
	}
	t = t.append(models.RoleUser, trimmed, nil, now)
	t.awaiting = true
	return t, true
}

// Resolve appends the assistant answer for the in-flight query and clears
// the awaiting flag. A nil citation list defaults to empty. Resolving while
// nothing is awaiting is ignored so the user/assistant pairing can never
// break.
func (t Transcript) Resolve(answer string, sources []models.Citation, now time.Time) Transcript {
	if !t.awaiting {
		return t
	}
	if sources == nil {
		sources = []models.Citation{}
	}
	t = t.append(models.RoleAssistant, answer, sources, now)
	t.awaiting = false
	return t
}

// ResolveFailure appends the fixed failure notice as the assistant response
// and clears the awaiting flag.
func (t Transcript) ResolveFailure(now time.Time) Transcript {
	if !t.awaiting {
		return t
	}
	t = t.append(models.RoleAssistant, QueryFailureNotice, nil, now)
	t.awaiting = false
	return t
}

// append copies the message slice so the receiver's backing array is never
// shared with the returned transcript.
func (t Transcript) append(role models.Role, content string, sources []models.Citation, now time.Time) Transcript {
	msgs := make([]models.Message, len(t.messages), len(t.messages)+1)
	copy(msgs, t.messages)
	msgs = append(msgs, models.Message{
		ID:        t.nextID,
		Role:      role,
		Content:   content,
		Sources:   sources,
		Timestamp: now,
	})
	t.messages = msgs
	t.nextID++
	return t
}
