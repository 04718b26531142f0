package assistantHandler

import (
	"sync"
	"time"

	"StockVoice/internal/api/assistant"
	contextPkg "StockVoice/pkg/context"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

var streamJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const streamReadTimeout = 60 * time.Second

// streamWriter serializes frame writes; the session's frame pump and the
// read loop's protocol errors share one connection.
type streamWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *streamWriter) write(frame assistant.ServerFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return w.conn.WriteJSON(frame)
}

func (w *streamWriter) close(code int, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	deadline := time.Now().Add(5 * time.Second)
	_ = w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = w.conn.Close()
}

// handleStream owns one websocket connection: binary frames carry audio,
// text frames carry confirm and reject decisions. Outbound frames come from
// the session's frame stream and are written by a dedicated goroutine so the
// read loop never blocks on a slow write.
func (h *AssistantHandler) handleStream(c *websocket.Conn) {
	h.log.Info("Assistant stream client connected")
	defer h.log.Info("Assistant stream client disconnected")

	writer := &streamWriter{conn: c}
	ctx := contextPkg.WithRequestID(context.Background(), c.Query("request_id", "unknown"))

	sess, err := h.assistantService.NewStreamSession(ctx)
	if err != nil {
		h.log.Errorf("Failed to open stream session: %v", err)
		_ = writer.write(assistant.ServerFrame{
			Type:    assistant.FrameTypeError,
			Kind:    assistant.ErrorKindTranscriptionUnavailable,
			Message: "could not start transcription session",
		})
		return
	}
	defer sess.Close()

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for frame := range sess.Frames() {
			if err := writer.write(frame); err != nil {
				h.log.Errorf("Error writing stream frame: %v", err)
				return
			}
		}
		// The frame stream only ends once the session has fully stopped,
		// as it does after a fatal backend failure. Closing the connection
		// here unblocks ReadMessage so the read loop cannot keep serving a
		// dead session.
		writer.close(websocket.CloseInternalServerErr, "session closed")
	}()

	for {
		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Assistant stream error: %v", err)
			}
			break
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := sess.SubmitAudio(message); err != nil {
				h.log.Warnf("Audio frame rejected: %v", err)
				_ = writer.write(assistant.ServerFrame{
					Type:    assistant.FrameTypeError,
					Kind:    assistant.ErrorKindChannelClosed,
					Message: "audio channel already closed",
				})
			}
		case websocket.TextMessage:
			var control assistant.ClientControl
			if err := streamJSON.Unmarshal(message, &control); err != nil {
				h.writeControlError(writer, "malformed control message")
				continue
			}
			if err := h.validator.Struct(control); err != nil {
				h.writeControlError(writer, "invalid control message")
				continue
			}
			sess.Control(control)
		}
	}

	// Close stops the session and drains the frame stream, which ends the
	// writer goroutine.
	sess.Close()
	<-writerDone
}

func (h *AssistantHandler) writeControlError(w *streamWriter, message string) {
	_ = w.write(assistant.ServerFrame{
		Type:    assistant.FrameTypeError,
		Kind:    assistant.ErrorKindInvalidControl,
		Message: message,
	})
}
