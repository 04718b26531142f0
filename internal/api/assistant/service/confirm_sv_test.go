package assistantService

import (
	"errors"
	"sync"
	"testing"
	"time"

	"StockVoice/internal/api/assistant"
	"StockVoice/internal/entity"
)

type expiryRecorder struct {
	mu      sync.Mutex
	expired []string
}

func (r *expiryRecorder) record(cmd entity.ParsedCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, cmd.ID)
}

func (r *expiryRecorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.expired...)
}

func testCommand(id string) entity.ParsedCommand {
	return entity.ParsedCommand{
		ID:     id,
		Action: entity.ActionAdd,
		Item:   "beans",
	}
}

func TestConfirmationGate_ConfirmDispatchesOnce(t *testing.T) {
	gate := newConfirmationGate(time.Minute, nil)
	gate.Propose(testCommand("cmd-1"))

	cmd, err := gate.Resolve("cmd-1", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cmd.ID != "cmd-1" {
		t.Errorf("got command %s, want cmd-1", cmd.ID)
	}

	// A second decision for the same command is stale.
	if _, err := gate.Resolve("cmd-1", true); !errors.Is(err, assistant.ErrStaleConfirmation) {
		t.Errorf("expected ErrStaleConfirmation on repeat decision, got %v", err)
	}
}

func TestConfirmationGate_Reject(t *testing.T) {
	gate := newConfirmationGate(time.Minute, nil)
	gate.Propose(testCommand("cmd-1"))

	if _, err := gate.Resolve("cmd-1", false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := gate.Resolve("cmd-1", false); !errors.Is(err, assistant.ErrStaleConfirmation) {
		t.Errorf("expected ErrStaleConfirmation after reject, got %v", err)
	}
}

func TestConfirmationGate_UnknownCommandIsStale(t *testing.T) {
	gate := newConfirmationGate(time.Minute, nil)
	gate.Propose(testCommand("cmd-1"))

	if _, err := gate.Resolve("cmd-2", true); !errors.Is(err, assistant.ErrStaleConfirmation) {
		t.Errorf("expected ErrStaleConfirmation for unknown id, got %v", err)
	}
}

func TestConfirmationGate_ExpiresUnconfirmed(t *testing.T) {
	recorder := &expiryRecorder{}
	gate := newConfirmationGate(30*time.Millisecond, recorder.record)
	gate.Propose(testCommand("cmd-1"))

	deadline := time.After(time.Second)
	for len(recorder.ids()) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for expiry")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if ids := recorder.ids(); ids[0] != "cmd-1" {
		t.Errorf("expected cmd-1 to expire, got %v", ids)
	}
	if _, err := gate.Resolve("cmd-1", true); !errors.Is(err, assistant.ErrStaleConfirmation) {
		t.Errorf("expected ErrStaleConfirmation after expiry, got %v", err)
	}
}

func TestConfirmationGate_NewProposalSupersedesOld(t *testing.T) {
	recorder := &expiryRecorder{}
	gate := newConfirmationGate(time.Minute, recorder.record)

	gate.Propose(testCommand("cmd-1"))
	gate.Propose(testCommand("cmd-2"))

	if ids := recorder.ids(); len(ids) != 1 || ids[0] != "cmd-1" {
		t.Errorf("expected cmd-1 to be expired by supersession, got %v", ids)
	}
	if _, err := gate.Resolve("cmd-1", true); !errors.Is(err, assistant.ErrStaleConfirmation) {
		t.Errorf("expected superseded command to be stale, got %v", err)
	}
	if _, err := gate.Resolve("cmd-2", true); err != nil {
		t.Errorf("expected current command to resolve, got %v", err)
	}
}

func TestConfirmationGate_DiscardDropsPendingSilently(t *testing.T) {
	recorder := &expiryRecorder{}
	gate := newConfirmationGate(time.Minute, recorder.record)

	gate.Propose(testCommand("cmd-1"))
	gate.Discard()

	if len(recorder.ids()) != 0 {
		t.Errorf("discard must not notify, got %v", recorder.ids())
	}
	if _, err := gate.Resolve("cmd-1", true); !errors.Is(err, assistant.ErrStaleConfirmation) {
		t.Errorf("expected ErrStaleConfirmation after discard, got %v", err)
	}
}
