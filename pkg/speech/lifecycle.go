package speech

import (
	"errors"
	"sync"
)

type utteranceState int

const (
	stateOpen utteranceState = iota
	stateClosed
	stateDropped
)

var (
	errLifecycleClosed = errors.New("speech: utterance lifecycle closed")
)

// utteranceLifecycle enforces the per-index ordering invariant: an index
// accepts any number of partials, exactly one final, and never moves
// backward. After a final the lifecycle advances to the next index.
type utteranceLifecycle struct {
	mu    sync.Mutex
	index int
	state utteranceState
}

func newUtteranceLifecycle() *utteranceLifecycle {
	return &utteranceLifecycle{}
}

// EmitPartial returns the index the partial belongs to, or an error when the
// lifecycle has been closed or dropped.
func (l *utteranceLifecycle) EmitPartial() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateOpen {
		return 0, errLifecycleClosed
	}
	return l.index, nil
}

// EmitFinal returns the index the final closes and advances to the next one.
func (l *utteranceLifecycle) EmitFinal() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateOpen {
		return 0, errLifecycleClosed
	}
	idx := l.index
	l.index++
	return idx, nil
}

// Close ends the lifecycle normally. Idempotent.
func (l *utteranceLifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == stateOpen {
		l.state = stateClosed
	}
}

// Drop ends the lifecycle after a fatal backend error; the in-flight index is
// discarded without a final. Returns false if already terminal.
func (l *utteranceLifecycle) Drop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != stateOpen {
		return false
	}
	l.state = stateDropped
	return true
}

func (l *utteranceLifecycle) Dropped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateDropped
}

// Completed reports how many indices reached a final event.
func (l *utteranceLifecycle) Completed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index
}
