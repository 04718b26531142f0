package assistant

import "StockVoice/pkg/response"

var (
	ErrInvalidAudioFile         = response.NewError(400, "invalid audio file")
	ErrInvalidControlMessage    = response.NewError(400, "invalid control message")
	ErrTranscriptionFailed      = response.NewError(500, "failed to transcribe audio")
	ErrInterpretationFailed     = response.NewError(502, "failed to interpret command")
	ErrTranscriptionUnavailable = response.NewError(503, "transcription backend unavailable")
	ErrChannelClosed            = response.NewError(409, "audio channel already closed")
	ErrStaleConfirmation        = response.NewError(409, "command already resolved or expired")
	ErrCommandNotFound          = response.NewError(404, "pending command not found")
	ErrDispatchFailed           = response.NewError(502, "failed to dispatch command")
)
