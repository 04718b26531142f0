package speech

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"StockVoice/pkg/metrics"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// eventBuffer bounds how far the recognizer may run ahead of the
	// consumer before the receive loop blocks.
	eventBuffer = 32

	defaultFlushTimeout = 3 * time.Second
)

// Session owns one streaming recognition exchange. Events are delivered in
// order on Events(); after the channel closes, Err reports whether the
// session ended fatally.
type Session struct {
	backend Backend
	log     *logrus.Logger

	events    chan TranscriptEvent
	lifecycle *utteranceLifecycle

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	started  bool
	stopped  bool
	failures int
	lastErr  error
	fatalErr error
}

func NewSession(backend Backend, logger *logrus.Logger) *Session {
	return &Session{
		backend:   backend,
		log:       logger,
		events:    make(chan TranscriptEvent, eventBuffer),
		lifecycle: newUtteranceLifecycle(),
		done:      make(chan struct{}),
	}
}

// Start opens the streaming exchange and begins delivering events.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("speech: session already started")
	}
	s.started = true
	s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.backend.Start(s.ctx, s); err != nil {
		s.cancel()
		close(s.events)
		close(s.done)
		return err
	}

	go s.run()
	return nil
}

// Events returns the ordered transcript event stream. The channel closes when
// the session stops or fails; check Err afterwards.
func (s *Session) Events() <-chan TranscriptEvent {
	return s.events
}

// Err reports the fatal session error, if any, once Events has closed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatalErr
}

// SendAudio forwards one audio frame to the recognition backend.
func (s *Session) SendAudio(ctx context.Context, audio []byte) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	s.mu.Unlock()

	return s.backend.SendAudio(ctx, audio)
}

// Stop signals end-of-audio and waits, bounded, for the backend's final
// flush so any in-flight index reaches a final event or is discarded.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	err := s.backend.Close()

	select {
	case <-s.done:
	case <-ctx.Done():
		s.cancel()
		<-s.done
	case <-time.After(defaultFlushTimeout):
		s.cancel()
		<-s.done
	}

	return err
}

// Utterances reports how many indices reached a final event.
func (s *Session) Utterances() int {
	return s.lifecycle.Completed()
}

func (s *Session) run() {
	defer close(s.done)
	defer close(s.events)
	defer s.cancel()

	for {
		s.backend.Listen()

		s.mu.Lock()
		stopped := s.stopped
		err := s.lastErr
		s.lastErr = nil
		s.mu.Unlock()

		if stopped || s.ctx.Err() != nil || err == nil || errors.Is(err, io.EOF) {
			s.lifecycle.Close()
			return
		}

		s.mu.Lock()
		s.failures++
		failures := s.failures
		s.mu.Unlock()

		if failures < 2 && transient(err) {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Recognition exchange lost, reconnecting once")

			if rerr := s.backend.Start(s.ctx, s); rerr == nil {
				metrics.SpeechReconnectsTotal.Inc()
				continue
			}
		}

		s.lifecycle.Drop()
		s.mu.Lock()
		s.fatalErr = ErrUnavailable
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Recognition exchange failed twice, session is fatal")
		return
	}
}

// --- Callback implementation ---

func (s *Session) OnPartial(text string) {
	idx, err := s.lifecycle.EmitPartial()
	if err != nil {
		return
	}
	s.emit(TranscriptEvent{Kind: EventPartial, Index: idx, Text: text})
}

func (s *Session) OnFinal(text string, confidence float64) {
	idx, err := s.lifecycle.EmitFinal()
	if err != nil {
		return
	}

	// Progress resets the consecutive-failure budget.
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()

	s.emit(TranscriptEvent{Kind: EventFinal, Index: idx, Text: text, Confidence: confidence})
}

func (s *Session) OnError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Session) emit(ev TranscriptEvent) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func transient(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return true
	default:
		return false
	}
}
