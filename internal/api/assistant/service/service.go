package assistantService

import (
	"os"
	"strconv"
	"time"

	"StockVoice/internal/api/assistant"
	"StockVoice/internal/entity"
	"StockVoice/pkg/gemini"
	"StockVoice/pkg/nlp"
	redisPkg "StockVoice/pkg/redis"
	sheetsPkg "StockVoice/pkg/sheets"
	smtpPkg "StockVoice/pkg/smtp"
	"StockVoice/pkg/speech"
	"StockVoice/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const defaultConfirmWindow = 30 * time.Second

// Transcriber is the batch transcription dependency for the one-shot HTTP
// command path.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, filePath string) (string, error)
}

// BackendFactory opens a fresh recognition backend for one stream session.
type BackendFactory func(ctx context.Context) (speech.Backend, error)

type IAssistantService interface {
	NewStreamSession(ctx context.Context) (*StreamSession, error)
	ProcessVoiceCommand(ctx context.Context, req assistant.ProcessVoiceRequest) (*assistant.VoiceCommandResponse, error)
	ProcessConfirmation(ctx context.Context, req assistant.ConfirmationRequest) (*assistant.VoiceCommandResponse, error)
	History(ctx context.Context, limit int) ([]entity.CommandRecord, error)
}

type assistantService struct {
	log            *logrus.Logger
	gemini         gemini.IGemini
	extractor      nlp.IExtractor
	transcriber    Transcriber
	smtpMailer     smtpPkg.ItfSmtp
	sheetsClient   sheetsPkg.ItfSheets
	redisServer    redisPkg.IRedis
	utils          utils.IUtils
	backendFactory BackendFactory
	confirmWindow  time.Duration
}

func New(
	log *logrus.Logger,
	geminiClient gemini.IGemini,
	transcriber Transcriber,
	smtpMailer smtpPkg.ItfSmtp,
	sheetsClient sheetsPkg.ItfSheets,
	redisServer redisPkg.IRedis,
	utilsInstance utils.IUtils,
	backendFactory BackendFactory,
) IAssistantService {
	window := defaultConfirmWindow
	if v := os.Getenv("CONFIRMATION_WINDOW_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			window = time.Duration(seconds) * time.Second
		}
	}

	return &assistantService{
		log:            log,
		gemini:         geminiClient,
		extractor:      nlp.NewExtractor(),
		transcriber:    transcriber,
		smtpMailer:     smtpMailer,
		sheetsClient:   sheetsClient,
		redisServer:    redisServer,
		utils:          utilsInstance,
		backendFactory: backendFactory,
		confirmWindow:  window,
	}
}
