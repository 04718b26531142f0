package assistantService

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"StockVoice/internal/api/assistant"

	"golang.org/x/net/context"
)

func TestAudioRelay_PreservesOrder(t *testing.T) {
	relay := newAudioRelay(4)

	frames := [][]byte{{1}, {2}, {3}}
	for _, frame := range frames {
		if err := relay.Submit(context.Background(), frame); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	for i, want := range frames {
		got := <-relay.Frames()
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d: got %v, want %v", i, got, want)
		}
	}
}

func TestAudioRelay_BlocksWhenFull(t *testing.T) {
	relay := newAudioRelay(1)

	if err := relay.Submit(context.Background(), []byte{1}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := relay.Submit(ctx, []byte{2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded on a full relay, got %v", err)
	}
}

func TestAudioRelay_SubmitAfterClose(t *testing.T) {
	relay := newAudioRelay(4)
	relay.Close()
	relay.Close()

	err := relay.Submit(context.Background(), []byte{1})
	if !errors.Is(err, assistant.ErrChannelClosed) {
		t.Errorf("expected ErrChannelClosed, got %v", err)
	}

	select {
	case <-relay.Closed():
	default:
		t.Error("expected Closed to be signalled")
	}
}

func TestAudioRelay_BufferedFramesSurviveClose(t *testing.T) {
	relay := newAudioRelay(4)

	if err := relay.Submit(context.Background(), []byte{7}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	relay.Close()

	select {
	case got := <-relay.Frames():
		if !bytes.Equal(got, []byte{7}) {
			t.Errorf("got %v, want [7]", got)
		}
	default:
		t.Error("expected the buffered frame to stay readable after close")
	}
}
