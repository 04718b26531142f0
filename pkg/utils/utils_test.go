package utils

import (
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()

	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("expected 26-character ULID, got %d characters: %s", len(id), id)
	}

	other, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == other {
		t.Error("expected distinct ULIDs for consecutive calls")
	}
}

func audioHeader(filename, contentType string, size int64) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{
		Filename: filename,
		Header:   header,
		Size:     size,
	}
}

func TestValidateAudioFile(t *testing.T) {
	u := New()

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr bool
	}{
		{"nil file", nil, true},
		{"wav by extension", audioHeader("cmd.wav", "", 1024), false},
		{"audio content type", audioHeader("upload.bin", "audio/webm", 1024), false},
		{"mp3 by extension", audioHeader("cmd.MP3", "application/octet-stream", 1024), false},
		{"not audio", audioHeader("cmd.txt", "text/plain", 1024), true},
		{"too large", audioHeader("cmd.wav", "audio/wav", 11*1024*1024), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := u.ValidateAudioFile(tt.file)
			if (err != nil) != tt.wantErr {
				t.Errorf("got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
