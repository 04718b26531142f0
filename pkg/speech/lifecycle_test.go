package speech

import "testing"

func TestLifecycle_PartialsKeepIndex(t *testing.T) {
	l := newUtteranceLifecycle()

	for i := 0; i < 3; i++ {
		idx, err := l.EmitPartial()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx != 0 {
			t.Errorf("expected index 0 for partial %d, got %d", i, idx)
		}
	}
}

func TestLifecycle_FinalAdvancesIndex(t *testing.T) {
	l := newUtteranceLifecycle()

	idx, err := l.EmitFinal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected first final at index 0, got %d", idx)
	}

	idx, err = l.EmitPartial()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected next partial at index 1, got %d", idx)
	}

	idx, err = l.EmitFinal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected second final at index 1, got %d", idx)
	}

	if l.Completed() != 2 {
		t.Errorf("expected 2 completed utterances, got %d", l.Completed())
	}
}

func TestLifecycle_CloseRejectsEmits(t *testing.T) {
	l := newUtteranceLifecycle()
	l.Close()

	if _, err := l.EmitPartial(); err == nil {
		t.Error("expected error emitting partial after close")
	}
	if _, err := l.EmitFinal(); err == nil {
		t.Error("expected error emitting final after close")
	}
	if l.Dropped() {
		t.Error("closed lifecycle should not report dropped")
	}
}

func TestLifecycle_DropIsTerminal(t *testing.T) {
	l := newUtteranceLifecycle()

	if _, err := l.EmitFinal(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !l.Drop() {
		t.Error("expected first Drop to succeed")
	}
	if l.Drop() {
		t.Error("expected second Drop to be rejected")
	}
	if !l.Dropped() {
		t.Error("expected lifecycle to report dropped")
	}

	// Completed counts indices that reached a final before the drop.
	if l.Completed() != 1 {
		t.Errorf("expected 1 completed utterance, got %d", l.Completed())
	}
}
