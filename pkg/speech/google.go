package speech

import (
	"context"
	"os"
	"strconv"
	"sync"

	googlespeech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleBackend implements Backend using Google Cloud Speech-to-Text
// streaming recognition. One backend carries one exchange at a time; Start
// may be called again after Listen returns to open a fresh exchange.
type GoogleBackend struct {
	client *googlespeech.Client

	sampleRate int32
	language   string

	mu     sync.Mutex
	stream speechpb.Speech_StreamingRecognizeClient
	cb     Callback
}

// NewGoogleBackend creates a streaming recognition backend. Credentials come
// from GOOGLE_APPLICATION_CREDENTIALS; sample rate and language from
// SPEECH_SAMPLE_RATE and SPEECH_LANGUAGE.
func NewGoogleBackend(ctx context.Context) (*GoogleBackend, error) {
	client, err := googlespeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	sampleRate := int64(16000)
	if v := os.Getenv("SPEECH_SAMPLE_RATE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			sampleRate = parsed
		}
	}

	language := os.Getenv("SPEECH_LANGUAGE")
	if language == "" {
		language = "en-US"
	}

	return &GoogleBackend{
		client:     client,
		sampleRate: int32(sampleRate),
		language:   language,
	}, nil
}

// Start opens a streaming exchange and sends the recognition config as the
// first message.
func (b *GoogleBackend) Start(ctx context.Context, cb Callback) error {
	stream, err := b.client.StreamingRecognize(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.stream = stream
	b.cb = cb
	b.mu.Unlock()

	return stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: b.sampleRate,
					LanguageCode:    b.language,
				},
				InterimResults: true,
			},
		},
	})
}

func (b *GoogleBackend) SendAudio(_ context.Context, audio []byte) error {
	b.mu.Lock()
	stream := b.stream
	b.mu.Unlock()

	return stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

// Listen receives recognition responses and forwards them to the callback
// until the exchange ends.
func (b *GoogleBackend) Listen() {
	b.mu.Lock()
	stream := b.stream
	cb := b.cb
	b.mu.Unlock()

	for {
		resp, err := stream.Recv()
		if err != nil {
			cb.OnError(err)
			return
		}

		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			alt := r.Alternatives[0]
			if r.IsFinal {
				cb.OnFinal(alt.Transcript, float64(alt.Confidence))
			} else {
				cb.OnPartial(alt.Transcript)
			}
		}
	}
}

// Close signals end-of-audio; the provider flushes any pending final before
// terminating the exchange.
func (b *GoogleBackend) Close() error {
	b.mu.Lock()
	stream := b.stream
	b.mu.Unlock()

	if stream != nil {
		return stream.CloseSend()
	}
	return nil
}
