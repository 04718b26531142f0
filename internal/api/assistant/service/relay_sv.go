package assistantService

import (
	"sync"

	"StockVoice/internal/api/assistant"

	"golang.org/x/net/context"
)

// relayBuffer bounds how many audio frames may sit between the connection
// and the recognition backend. A full buffer blocks Submit, which is the
// backpressure the ordering invariant relies on; frames are never dropped.
const relayBuffer = 16

// audioRelay forwards inbound binary frames, in receipt order, to the
// transcription input channel.
type audioRelay struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newAudioRelay(buffer int) *audioRelay {
	if buffer <= 0 {
		buffer = relayBuffer
	}
	return &audioRelay{
		frames: make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

// Submit accepts one frame while the relay is open. It blocks when the
// backend cannot keep up and fails with ErrChannelClosed once the owning
// transcription session has ended.
func (r *audioRelay) Submit(ctx context.Context, frame []byte) error {
	select {
	case <-r.closed:
		return assistant.ErrChannelClosed
	default:
	}

	select {
	case r.frames <- frame:
		return nil
	case <-r.closed:
		return assistant.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *audioRelay) Frames() <-chan []byte {
	return r.frames
}

func (r *audioRelay) Closed() <-chan struct{} {
	return r.closed
}

// Close stops accepting frames. Idempotent; buffered frames stay readable
// for the flush.
func (r *audioRelay) Close() {
	r.once.Do(func() {
		close(r.closed)
	})
}
