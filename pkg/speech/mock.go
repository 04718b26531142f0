package speech

import (
	"context"
	"sync"
)

// SimulatedUtterance is a scripted recognition result for the mock backend.
type SimulatedUtterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterances drive the mock backend when no script is supplied.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"add ten", "add ten bags of"},
		Final:      "add 10 bags of espresso beans",
		Confidence: 0.95,
	},
	{
		Partials:   []string{"check stock"},
		Final:      "check stock on cups",
		Confidence: 0.97,
	},
	{
		Partials:   []string{"email the", "email the inventory report"},
		Final:      "email the inventory report to the manager",
		Confidence: 0.92,
	},
}

// MockBackend implements Backend without cloud credentials. Every few audio
// frames it emits the next partial of the current scripted utterance, then
// the final, then moves to the next utterance.
type MockBackend struct {
	utterances []SimulatedUtterance

	mu           sync.Mutex
	cb           Callback
	frames       int
	utterance    int
	partialIndex int
	done         chan struct{}
	closed       bool
}

// framesPerStep controls how much audio advances the script by one event.
const framesPerStep = 2

func NewMockBackend(utterances []SimulatedUtterance) *MockBackend {
	if len(utterances) == 0 {
		utterances = DefaultUtterances
	}
	return &MockBackend{utterances: utterances}
}

func (b *MockBackend) Start(_ context.Context, cb Callback) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cb = cb
	b.done = make(chan struct{})
	b.closed = false
	return nil
}

func (b *MockBackend) SendAudio(_ context.Context, _ []byte) error {
	b.mu.Lock()
	if b.closed || b.utterance >= len(b.utterances) {
		b.mu.Unlock()
		return nil
	}

	b.frames++
	if b.frames%framesPerStep != 0 {
		b.mu.Unlock()
		return nil
	}

	cb := b.cb
	utt := b.utterances[b.utterance]

	if b.partialIndex < len(utt.Partials) {
		partial := utt.Partials[b.partialIndex]
		b.partialIndex++
		b.mu.Unlock()
		cb.OnPartial(partial)
		return nil
	}

	b.utterance++
	b.partialIndex = 0
	b.mu.Unlock()
	cb.OnFinal(utt.Final, utt.Confidence)
	return nil
}

// Listen blocks until Close; the mock delivers results synchronously from
// SendAudio instead of a provider receive loop.
func (b *MockBackend) Listen() {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	<-done
}

func (b *MockBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}
