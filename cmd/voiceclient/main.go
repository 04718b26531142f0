// Command voiceclient streams a WAV recording to a running assistant
// backend and prints the transcript, proposal, and result frames it gets
// back. It is a development tool; pair it with SPEECH_BACKEND=mock to
// exercise the full pipeline without cloud credentials.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/youpy/go-wav"
)

type serverFrame struct {
	Type      string          `json:"type"`
	Index     int             `json:"index,omitempty"`
	Text      string          `json:"text,omitempty"`
	CommandID string          `json:"command_id,omitempty"`
	Command   json.RawMessage `json:"command,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Status    string          `json:"status,omitempty"`
	Message   string          `json:"message,omitempty"`
	Kind      string          `json:"kind,omitempty"`
}

type clientControl struct {
	Type      string `json:"type"`
	CommandID string `json:"command_id"`
}

func main() {
	var (
		addr        = flag.String("addr", "ws://localhost:3000/api/v1/assistant/stream", "assistant stream endpoint")
		wavPath     = flag.String("wav", "", "path to a 16-bit PCM WAV file to stream")
		frameMs     = flag.Int("frame-ms", 100, "audio frame duration in milliseconds")
		autoConfirm = flag.Bool("confirm", false, "automatically confirm proposed commands")
		linger      = flag.Duration("linger", 5*time.Second, "how long to wait for frames after the audio ends")
	)
	flag.Parse()

	if *wavPath == "" {
		log.Fatal("usage: voiceclient -wav recording.wav [-confirm]")
	}

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go readFrames(conn, *autoConfirm, done)

	if err := streamWav(conn, *wavPath, *frameMs); err != nil {
		log.Fatalf("stream audio: %v", err)
	}

	select {
	case <-done:
	case <-time.After(*linger):
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func readFrames(conn *websocket.Conn, autoConfirm bool, done chan struct{}) {
	defer close(done)

	for {
		var frame serverFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "partial":
			fmt.Printf("\r[%d] %s", frame.Index, frame.Text)
		case "final":
			fmt.Printf("\r[%d] %s\n", frame.Index, frame.Text)
		case "proposal":
			fmt.Printf("proposal %s: %s\n", frame.CommandID, frame.Summary)
			if autoConfirm {
				control := clientControl{Type: "confirm", CommandID: frame.CommandID}
				if err := conn.WriteJSON(control); err != nil {
					return
				}
				fmt.Println("  -> confirmed")
			}
		case "result":
			fmt.Printf("result %s: %s %s\n", frame.CommandID, frame.Status, frame.Message)
		case "error":
			fmt.Printf("error %s: %s\n", frame.Kind, frame.Message)
		}
	}
}

// streamWav sends the file's samples as little-endian 16-bit PCM frames,
// paced at recording speed so the recognizer sees a realistic stream.
func streamWav(conn *websocket.Conn, path string, frameMs int) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := wav.NewReader(file)
	format, err := reader.Format()
	if err != nil {
		return err
	}

	samplesPerFrame := int(format.SampleRate) * frameMs / 1000
	ticker := time.NewTicker(time.Duration(frameMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		samples, err := reader.ReadSamples(uint32(samplesPerFrame))
		if len(samples) > 0 {
			frame := make([]byte, 2*len(samples))
			for i, sample := range samples {
				binary.LittleEndian.PutUint16(frame[2*i:], uint16(int16(sample.Values[0])))
			}
			if werr := conn.WriteMessage(websocket.BinaryMessage, frame); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		<-ticker.C
	}
}
