package audio

import (
	"context"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// TranscriptionService transcribes whole uploaded audio files through
// Whisper. The streaming path does not use it; it backs the one-shot HTTP
// command endpoint.
type TranscriptionService struct {
	client *openai.Client
}

func NewTranscriptionService(apiKey string) *TranscriptionService {
	client := openai.NewClient(apiKey)
	return &TranscriptionService{client: client}
}

func (t *TranscriptionService) TranscribeAudio(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filePath,
		Language: os.Getenv("WHISPER_LANGUAGE"),
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}
