package assistantService

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"StockVoice/internal/api/assistant"
	contextPkg "StockVoice/pkg/context"
	redisPkg "StockVoice/pkg/redis"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ProcessVoiceCommand is the one-shot HTTP path: transcribe an uploaded
// recording, interpret it, and either dispatch directly or park the command
// pending confirmation.
func (s *assistantService) ProcessVoiceCommand(ctx context.Context, req assistant.ProcessVoiceRequest) (*assistant.VoiceCommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.utils.ValidateAudioFile(req.AudioFile); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid audio file")
		return nil, assistant.ErrInvalidAudioFile
	}

	audioPath, err := s.saveAudioFile(req.AudioFile)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to save audio file")
		return nil, err
	}
	defer os.Remove(audioPath)

	transcript, err := s.transcriber.TranscribeAudio(ctx, audioPath)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to transcribe audio")
		return nil, assistant.ErrTranscriptionFailed
	}

	cmd, err := s.interpret(ctx, transcript)
	if err != nil {
		return nil, err
	}

	if cmd.NeedsConfirmation {
		if err := s.redisServer.SetPendingCommand(ctx, cmd, s.confirmWindow); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"command_id": cmd.ID,
				"error":      err.Error(),
			}).Error("Failed to store pending command")
			return nil, err
		}

		return &assistant.VoiceCommandResponse{
			Transcript: transcript,
			CommandID:  cmd.ID,
			Command:    &cmd,
			Summary:    cmd.Summary(),
			Status:     assistant.StatusPendingConfirmation,
		}, nil
	}

	result := s.dispatch(ctx, cmd)
	return &assistant.VoiceCommandResponse{
		Transcript: transcript,
		CommandID:  cmd.ID,
		Command:    &cmd,
		Status:     string(result.Status),
		Result:     &result,
	}, nil
}

// ProcessConfirmation resolves a pending command stored by the one-shot
// path. The pending entry is removed before dispatch so a duplicate decision
// cannot execute the command twice.
func (s *assistantService) ProcessConfirmation(ctx context.Context, req assistant.ConfirmationRequest) (*assistant.VoiceCommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	cmd, err := s.redisServer.GetPendingCommand(ctx, req.CommandID)
	if err != nil {
		if errors.Is(err, redisPkg.ErrNotFound) {
			return nil, assistant.ErrStaleConfirmation
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"command_id": req.CommandID,
			"error":      err.Error(),
		}).Error("Failed to load pending command")
		return nil, err
	}

	if err := s.redisServer.DeletePendingCommand(ctx, req.CommandID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"command_id": req.CommandID,
			"error":      err.Error(),
		}).Error("Failed to clear pending command")
		return nil, err
	}

	if req.Decision == assistant.ControlTypeReject {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"command_id": cmd.ID,
		}).Info("Command rejected by user")
		return &assistant.VoiceCommandResponse{
			Transcript: cmd.Transcript,
			CommandID:  cmd.ID,
			Command:    &cmd,
			Status:     assistant.StatusRejected,
		}, nil
	}

	result := s.dispatch(ctx, cmd)
	return &assistant.VoiceCommandResponse{
		Transcript: cmd.Transcript,
		CommandID:  cmd.ID,
		Command:    &cmd,
		Status:     string(result.Status),
		Result:     &result,
	}, nil
}

func (s *assistantService) saveAudioFile(audioFile *multipart.FileHeader) (string, error) {
	src, err := audioFile.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp("", "voice-*"+filepath.Ext(audioFile.Filename))
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, src); err != nil {
		os.Remove(tmpFile.Name())
		return "", err
	}

	return tmpFile.Name(), nil
}
