package assistantService

import (
	"fmt"
	"strings"
	"time"

	"StockVoice/internal/api/assistant"
	"StockVoice/internal/entity"
	contextPkg "StockVoice/pkg/context"
	"StockVoice/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// generatedCommand mirrors the JSON shape the generation service is
// instructed to answer with. The service may deviate; parsing is defensive.
type generatedCommand struct {
	Action     string           `json:"action"`
	Item       string           `json:"item"`
	Quantity   *quantityPayload `json:"quantity"`
	Recipient  string           `json:"recipient"`
	Notes      string           `json:"notes"`
	Confidence float64          `json:"confidence"`
}

type quantityPayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// interpret sends a finalized transcript to the generation service and maps
// its answer onto a ParsedCommand. Failures surface as ErrInterpretationFailed
// and must not advance the pipeline to the confirmation gate.
func (s *assistantService) interpret(ctx context.Context, transcript string) (entity.ParsedCommand, error) {
	requestID := contextPkg.GetRequestID(ctx)

	raw, err := s.gemini.InterpretCommand(ctx, transcript)
	if err != nil {
		metrics.InterpretationsTotal.WithLabelValues("failed").Inc()
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Generation service unreachable")
		return entity.ParsedCommand{}, assistant.ErrInterpretationFailed
	}

	cmd, err := s.parseGenerated(raw, transcript)
	if err != nil {
		metrics.InterpretationsTotal.WithLabelValues("unparseable").Inc()
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"raw":        raw,
			"error":      err.Error(),
		}).Warn("Generation service answer was not parseable")
		return entity.ParsedCommand{}, assistant.ErrInterpretationFailed
	}

	metrics.InterpretationsTotal.WithLabelValues("success").Inc()
	return cmd, nil
}

func (s *assistantService) parseGenerated(raw, transcript string) (entity.ParsedCommand, error) {
	cleaned := stripCodeFences(raw)

	var gen generatedCommand
	if err := jsoniter.UnmarshalFromString(cleaned, &gen); err != nil {
		return entity.ParsedCommand{}, fmt.Errorf("unmarshal generation answer: %w", err)
	}

	action := s.extractor.NormalizeAction(gen.Action)
	if action == entity.ActionUnknown && gen.Action == "" {
		action = s.extractor.ClassifyAction(transcript)
	}

	var quantity *entity.Quantity
	if gen.Quantity != nil && gen.Quantity.Value != 0 {
		quantity = &entity.Quantity{Value: gen.Quantity.Value, Unit: gen.Quantity.Unit}
	} else if action.Mutating() {
		quantity, _ = s.extractor.ExtractQuantity(transcript)
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return entity.ParsedCommand{}, err
	}

	needsConfirmation := action.Mutating() ||
		action == entity.ActionEmail || action == entity.ActionAlert

	return entity.ParsedCommand{
		ID:                id,
		Action:            action,
		Item:              strings.TrimSpace(gen.Item),
		Quantity:          quantity,
		Recipient:         strings.TrimSpace(gen.Recipient),
		Notes:             strings.TrimSpace(gen.Notes),
		Confidence:        gen.Confidence,
		NeedsConfirmation: needsConfirmation,
		Transcript:        transcript,
		CreatedAt:         time.Now(),
	}, nil
}

// stripCodeFences tolerates models that wrap their JSON answer in markdown
// fences despite the instruction not to.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
