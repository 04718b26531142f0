package assistant

import (
	"mime/multipart"

	"StockVoice/internal/entity"
)

// Websocket frame types, server to client.
const (
	FrameTypePartial  = "partial"
	FrameTypeFinal    = "final"
	FrameTypeProposal = "proposal"
	FrameTypeResult   = "result"
	FrameTypeError    = "error"
)

// Control message types, client to server.
const (
	ControlTypeConfirm = "confirm"
	ControlTypeReject  = "reject"
)

// Error kinds carried on error frames.
const (
	ErrorKindChannelClosed            = "ChannelClosed"
	ErrorKindTranscriptionUnavailable = "TranscriptionUnavailable"
	ErrorKindInterpretationFailed     = "InterpretationFailed"
	ErrorKindStaleConfirmation        = "StaleConfirmation"
	ErrorKindInvalidControl           = "InvalidControlMessage"
)

// Result frame statuses beyond entity.ResultStatus.
const (
	StatusRejected            = "rejected"
	StatusExpired             = "expired"
	StatusPendingConfirmation = "pending_confirmation"
)

// ClientControl is a text frame from the client correlating a confirm or
// reject decision to a proposed command.
type ClientControl struct {
	Type      string `json:"type" validate:"required,oneof=confirm reject"`
	CommandID string `json:"command_id" validate:"required"`
}

// ServerFrame is any text frame sent to the client over the stream.
type ServerFrame struct {
	Type      string                `json:"type"`
	Index     int                   `json:"index,omitempty"`
	Text      string                `json:"text,omitempty"`
	CommandID string                `json:"command_id,omitempty"`
	Command   *entity.ParsedCommand `json:"command,omitempty"`
	Summary   string                `json:"summary,omitempty"`
	Status    string                `json:"status,omitempty"`
	Message   string                `json:"message,omitempty"`
	Kind      string                `json:"kind,omitempty"`
}

type ProcessVoiceRequest struct {
	AudioFile *multipart.FileHeader `validate:"required"`
}

type ConfirmationRequest struct {
	CommandID string `json:"command_id" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=confirm reject"`
}

type VoiceCommandResponse struct {
	Transcript string                `json:"transcript"`
	CommandID  string                `json:"command_id,omitempty"`
	Command    *entity.ParsedCommand `json:"command,omitempty"`
	Summary    string                `json:"summary,omitempty"`
	Status     string                `json:"status"`
	Result     *entity.ActionResult  `json:"result,omitempty"`
}

type HistoryResponse struct {
	Records []entity.CommandRecord `json:"records"`
}
