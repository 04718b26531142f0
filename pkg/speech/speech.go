// Package speech wraps a streaming speech-recognition exchange behind a
// session with an explicit start/stop lifecycle, ordered transcript events
// and a bounded reconnect policy.
package speech

import (
	"context"
	"errors"
)

type EventKind string

const (
	EventPartial EventKind = "partial"
	EventFinal   EventKind = "final"
)

// TranscriptEvent is one incremental recognition result. Partial events for a
// given Index may be revised by later partials with the same Index; a final
// event closes that Index permanently.
type TranscriptEvent struct {
	Kind       EventKind
	Index      int
	Text       string
	Confidence float64
}

// Callback receives recognition results from a backend.
type Callback interface {
	OnPartial(text string)
	OnFinal(text string, confidence float64)
	OnError(err error)
}

// Backend is one streaming exchange with a recognition provider.
// Start may be called again after Listen returns to open a fresh exchange
// on the same provider connection.
type Backend interface {
	Start(ctx context.Context, cb Callback) error

	SendAudio(ctx context.Context, audio []byte) error

	// Listen blocks receiving results, invoking the callback passed to
	// Start, until the exchange ends. Run it in its own goroutine.
	Listen()

	// Close signals end-of-audio to the provider.
	Close() error
}

var (
	// ErrUnavailable is returned after the backend exchange failed twice in
	// succession. It is fatal to the owning session.
	ErrUnavailable = errors.New("speech: transcription unavailable")

	// ErrSessionStopped is returned by SendAudio after Stop.
	ErrSessionStopped = errors.New("speech: session stopped")
)
