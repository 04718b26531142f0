package assistantService

import (
	"sync"
	"time"

	"StockVoice/internal/entity"
	"StockVoice/pkg/nlp"
	redisPkg "StockVoice/pkg/redis"
	"StockVoice/pkg/speech"
	"StockVoice/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fakeGemini struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeGemini) InterpretCommand(_ context.Context, transcript string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, transcript)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) TranscribeAudio(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSmtp struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (f *fakeSmtp) SendMail(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeSheets struct {
	mu         sync.Mutex
	appendErr  error
	updateErr  error
	queryErr   error
	queryTotal float64
	queryUnit  string
	appended   []entity.ParsedCommand
	updates    []updatedRange
}

type updatedRange struct {
	rangeA1 string
	values  [][]interface{}
}

func (f *fakeSheets) AppendChange(_ context.Context, cmd entity.ParsedCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, cmd)
	return nil
}

func (f *fakeSheets) UpdateRange(_ context.Context, rangeA1 string, values [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updatedRange{rangeA1: rangeA1, values: values})
	return nil
}

func (f *fakeSheets) lastUpdate() (updatedRange, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return updatedRange{}, false
	}
	return f.updates[len(f.updates)-1], true
}

func (f *fakeSheets) QueryItem(_ context.Context, _ string) (float64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return 0, "", f.queryErr
	}
	return f.queryTotal, f.queryUnit, nil
}

func (f *fakeSheets) appendedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

type fakeRedis struct {
	mu      sync.Mutex
	pending map[string]entity.ParsedCommand
	history []entity.CommandRecord
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{pending: make(map[string]entity.ParsedCommand)}
}

func (f *fakeRedis) SetPendingCommand(_ context.Context, cmd entity.ParsedCommand, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[cmd.ID] = cmd
	return nil
}

func (f *fakeRedis) GetPendingCommand(_ context.Context, commandID string) (entity.ParsedCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd, ok := f.pending[commandID]
	if !ok {
		return entity.ParsedCommand{}, redisPkg.ErrNotFound
	}
	return cmd, nil
}

func (f *fakeRedis) DeletePendingCommand(_ context.Context, commandID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, commandID)
	return nil
}

func (f *fakeRedis) PushHistory(_ context.Context, record entity.CommandRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append([]entity.CommandRecord{record}, f.history...)
	return nil
}

func (f *fakeRedis) GetHistory(_ context.Context, limit int) ([]entity.CommandRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.history) {
		limit = len(f.history)
	}
	out := make([]entity.CommandRecord, limit)
	copy(out, f.history[:limit])
	return out, nil
}

func (f *fakeRedis) historyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

type fixture struct {
	svc         *assistantService
	gemini      *fakeGemini
	sheets      *fakeSheets
	mailer      *fakeSmtp
	store       *fakeRedis
	transcriber *fakeTranscriber
}

func newFixture(backend speech.Backend) *fixture {
	g := &fakeGemini{}
	sheets := &fakeSheets{}
	mailer := &fakeSmtp{}
	store := newFakeRedis()
	transcriber := &fakeTranscriber{}

	svc := &assistantService{
		log:          testLogger(),
		gemini:       g,
		extractor:    nlp.NewExtractor(),
		transcriber:  transcriber,
		smtpMailer:   mailer,
		sheetsClient: sheets,
		redisServer:  store,
		utils:        utils.New(),
		backendFactory: func(_ context.Context) (speech.Backend, error) {
			return backend, nil
		},
		confirmWindow: time.Minute,
	}
	return &fixture{svc: svc, gemini: g, sheets: sheets, mailer: mailer, store: store, transcriber: transcriber}
}
