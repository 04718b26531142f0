package entity

import "time"

type SessionState string

const (
	SessionActive  SessionState = "active"
	SessionClosing SessionState = "closing"
	SessionClosed  SessionState = "closed"
)

// Session identifies one live client connection through the pipeline.
// It is owned exclusively by the session manager; there is exactly one
// transcription exchange per live session.
type Session struct {
	ID           string       `json:"id"`
	State        SessionState `json:"state"`
	StartedAt    time.Time    `json:"started_at"`
	Utterances   int          `json:"utterances"`
	Dispatched   int          `json:"dispatched"`
	LastActivity time.Time    `json:"last_activity"`
}
