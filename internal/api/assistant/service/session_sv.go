package assistantService

import (
	"sync"
	"time"

	"StockVoice/internal/api/assistant"
	"StockVoice/internal/entity"
	contextPkg "StockVoice/pkg/context"
	"StockVoice/pkg/metrics"
	"StockVoice/pkg/speech"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// frameBuffer bounds the outbound frame queue toward the websocket writer.
const frameBuffer = 32

// StreamSession binds one websocket connection to one recognition session:
// audio in, transcript and command frames out. All outbound frames travel
// through Frames(); the channel closes once the session has fully stopped.
type StreamSession struct {
	id  string
	svc *assistantService
	log *logrus.Logger

	relay  *audioRelay
	speech *speech.Session
	gate   *confirmationGate

	out chan assistant.ServerFrame

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once

	sendMu     sync.Mutex
	sendClosed bool

	mu   sync.Mutex
	meta entity.Session
}

func (s *assistantService) NewStreamSession(ctx context.Context) (*StreamSession, error) {
	backend, err := s.backendFactory(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to open recognition backend")
		return nil, assistant.ErrTranscriptionUnavailable
	}

	sessionID := uuid.New().String()

	// The session outlives the upgrade request context; its lifetime is
	// bounded by Close, not by the handshake.
	sessCtx, cancel := context.WithCancel(contextPkg.WithSessionID(context.Background(), sessionID))

	sess := &StreamSession{
		id:     sessionID,
		svc:    s,
		log:    s.log,
		relay:  newAudioRelay(relayBuffer),
		speech: speech.NewSession(backend, s.log),
		out:    make(chan assistant.ServerFrame, frameBuffer),
		ctx:    sessCtx,
		cancel: cancel,
		meta: entity.Session{
			ID:           sessionID,
			State:        entity.SessionActive,
			StartedAt:    time.Now(),
			LastActivity: time.Now(),
		},
	}
	sess.gate = newConfirmationGate(s.confirmWindow, sess.onProposalExpired)

	if err := sess.speech.Start(sessCtx); err != nil {
		cancel()
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to start recognition session")
		return nil, assistant.ErrTranscriptionUnavailable
	}

	metrics.SessionsActive.Inc()
	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
	}).Info("Stream session opened")

	sess.wg.Add(2)
	go sess.pumpAudio()
	go sess.consumeEvents()
	go func() {
		sess.wg.Wait()
		sess.sendMu.Lock()
		sess.sendClosed = true
		close(sess.out)
		sess.sendMu.Unlock()
	}()

	return sess, nil
}

func (ss *StreamSession) ID() string {
	return ss.id
}

// Frames returns the outbound frame stream for the websocket writer.
func (ss *StreamSession) Frames() <-chan assistant.ServerFrame {
	return ss.out
}

// Info returns a snapshot of the session for logging.
func (ss *StreamSession) Info() entity.Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.meta
}

// SubmitAudio relays one binary frame toward the recognizer. It blocks when
// the recognizer falls behind and fails with ErrChannelClosed after Close.
func (ss *StreamSession) SubmitAudio(frame []byte) error {
	if err := ss.relay.Submit(ss.ctx, frame); err != nil {
		return err
	}

	metrics.AudioFramesTotal.Inc()
	ss.touch()
	return nil
}

// Control applies a confirm or reject decision to the pending command.
func (ss *StreamSession) Control(msg assistant.ClientControl) {
	ss.touch()

	confirmed := msg.Type == assistant.ControlTypeConfirm
	cmd, err := ss.gate.Resolve(msg.CommandID, confirmed)
	if err != nil {
		ss.send(assistant.ServerFrame{
			Type:      assistant.FrameTypeError,
			Kind:      assistant.ErrorKindStaleConfirmation,
			CommandID: msg.CommandID,
			Message:   "command already resolved or expired",
		})
		return
	}

	if !confirmed {
		ss.log.WithFields(logrus.Fields{
			"session_id": ss.id,
			"command_id": cmd.ID,
		}).Info("Command rejected by user")
		ss.send(assistant.ServerFrame{
			Type:      assistant.FrameTypeResult,
			CommandID: cmd.ID,
			Status:    assistant.StatusRejected,
			Message:   "Command discarded",
		})
		return
	}

	// Dispatch off the event loop so a slow executor does not stall
	// transcript delivery. The gate accepts no second decision for this
	// command, so the dispatch runs at most once.
	go func() {
		result := ss.svc.dispatch(ss.ctx, cmd)
		ss.sendResult(cmd.ID, result)
		ss.markDispatched()
	}()
}

// Close tears the session down in order: stop accepting audio, flush the
// recognizer, drop any pending proposal, then release the frame stream.
func (ss *StreamSession) Close() {
	ss.closeOnce.Do(func() {
		ss.mu.Lock()
		ss.meta.State = entity.SessionClosing
		ss.mu.Unlock()

		ss.relay.Close()

		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := ss.speech.Stop(flushCtx); err != nil {
			ss.log.WithFields(logrus.Fields{
				"session_id": ss.id,
				"error":      err.Error(),
			}).Warn("Recognition session closed with error")
		}
		cancel()

		ss.gate.Discard()
		ss.cancel()

		ss.mu.Lock()
		ss.meta.State = entity.SessionClosed
		ss.mu.Unlock()

		metrics.SessionsActive.Dec()
		ss.log.WithFields(logrus.Fields{
			"session_id": ss.id,
			"utterances": ss.speech.Utterances(),
		}).Info("Stream session closed")
	})
}

func (ss *StreamSession) pumpAudio() {
	defer ss.wg.Done()

	for {
		select {
		case frame := <-ss.relay.Frames():
			if err := ss.speech.SendAudio(ss.ctx, frame); err != nil {
				ss.log.WithFields(logrus.Fields{
					"session_id": ss.id,
					"error":      err.Error(),
				}).Warn("Dropping audio frame, recognizer rejected it")
				return
			}
		case <-ss.relay.Closed():
			// Drain what was accepted before the close so the tail of the
			// utterance still reaches the recognizer.
			for {
				select {
				case frame := <-ss.relay.Frames():
					if err := ss.speech.SendAudio(ss.ctx, frame); err != nil {
						return
					}
				default:
					return
				}
			}
		case <-ss.ctx.Done():
			return
		}
	}
}

func (ss *StreamSession) consumeEvents() {
	defer ss.wg.Done()

	for ev := range ss.speech.Events() {
		metrics.TranscriptEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

		switch ev.Kind {
		case speech.EventPartial:
			ss.send(assistant.ServerFrame{
				Type:  assistant.FrameTypePartial,
				Index: ev.Index,
				Text:  ev.Text,
			})
		case speech.EventFinal:
			ss.send(assistant.ServerFrame{
				Type:  assistant.FrameTypeFinal,
				Index: ev.Index,
				Text:  ev.Text,
			})
			ss.handleFinal(ev)
		}
	}

	if err := ss.speech.Err(); err != nil {
		ss.send(assistant.ServerFrame{
			Type:    assistant.FrameTypeError,
			Kind:    assistant.ErrorKindTranscriptionUnavailable,
			Message: "transcription backend unavailable",
		})
		go ss.Close()
	}
}

func (ss *StreamSession) handleFinal(ev speech.TranscriptEvent) {
	cmd, err := ss.svc.interpret(ss.ctx, ev.Text)
	if err != nil {
		ss.send(assistant.ServerFrame{
			Type:    assistant.FrameTypeError,
			Kind:    assistant.ErrorKindInterpretationFailed,
			Index:   ev.Index,
			Message: "could not interpret command",
		})
		return
	}

	if cmd.NeedsConfirmation {
		ss.gate.Propose(cmd)
		ss.send(assistant.ServerFrame{
			Type:      assistant.FrameTypeProposal,
			CommandID: cmd.ID,
			Command:   &cmd,
			Summary:   cmd.Summary(),
		})
		return
	}

	result := ss.svc.dispatch(ss.ctx, cmd)
	ss.sendResult(cmd.ID, result)
	ss.markDispatched()
}

func (ss *StreamSession) onProposalExpired(cmd entity.ParsedCommand) {
	ss.log.WithFields(logrus.Fields{
		"session_id": ss.id,
		"command_id": cmd.ID,
	}).Info("Proposed command expired unconfirmed")

	ss.send(assistant.ServerFrame{
		Type:      assistant.FrameTypeResult,
		CommandID: cmd.ID,
		Status:    assistant.StatusExpired,
		Message:   "Confirmation window elapsed, command discarded",
	})
}

func (ss *StreamSession) sendResult(commandID string, result entity.ActionResult) {
	ss.send(assistant.ServerFrame{
		Type:      assistant.FrameTypeResult,
		CommandID: commandID,
		Status:    string(result.Status),
		Message:   result.Message,
		Kind:      string(result.ErrorKind),
	})
}

// send queues one frame for the writer, abandoning it on teardown so a gone
// client cannot wedge the pipeline. The mutex keeps late senders, such as a
// dispatch finishing during Close, off the already closed channel.
func (ss *StreamSession) send(frame assistant.ServerFrame) {
	ss.sendMu.Lock()
	defer ss.sendMu.Unlock()

	if ss.sendClosed {
		return
	}

	select {
	case ss.out <- frame:
	case <-ss.ctx.Done():
	}
}

func (ss *StreamSession) touch() {
	ss.mu.Lock()
	ss.meta.LastActivity = time.Now()
	ss.mu.Unlock()
}

func (ss *StreamSession) markDispatched() {
	ss.mu.Lock()
	ss.meta.Dispatched++
	ss.meta.Utterances = ss.speech.Utterances()
	ss.mu.Unlock()
}
