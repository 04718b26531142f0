package assistantService

import (
	"errors"
	"fmt"
	"os"
	"time"

	"StockVoice/internal/entity"
	contextPkg "StockVoice/pkg/context"
	"StockVoice/pkg/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// dispatch executes a command that is either confirmed or never required
// confirmation. Each executor call is attempted exactly once: mutating
// actions must not be retried blindly.
func (s *assistantService) dispatch(ctx context.Context, cmd entity.ParsedCommand) entity.ActionResult {
	requestID := contextPkg.GetRequestID(ctx)

	result := s.execute(ctx, cmd)

	metrics.DispatchesTotal.WithLabelValues(string(cmd.Action), string(result.Status)).Inc()
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"command_id": cmd.ID,
		"action":     cmd.Action,
		"status":     result.Status,
		"error_kind": result.ErrorKind,
	}).Info("Command dispatched")

	s.recordHistory(ctx, cmd, result)
	return result
}

func (s *assistantService) execute(ctx context.Context, cmd entity.ParsedCommand) entity.ActionResult {
	switch cmd.Action {
	case entity.ActionAdd, entity.ActionRemove:
		if cmd.Item == "" {
			return invalidCommand("no inventory item recognized")
		}
		if err := s.sheetsClient.AppendChange(ctx, cmd); err != nil {
			return dispatchFailure(err)
		}
		return entity.ActionResult{
			Status:  entity.ResultSuccess,
			Message: cmd.Summary() + " recorded",
		}

	case entity.ActionUpdate:
		if cmd.Item == "" {
			return invalidCommand("no inventory item recognized")
		}
		if err := s.sheetsClient.AppendChange(ctx, cmd); err != nil {
			return dispatchFailure(err)
		}
		// A stocktake also pins the counted level to the summary range so
		// sheet formulas can reference the latest count directly.
		if err := s.sheetsClient.UpdateRange(ctx, levelsRange(), [][]interface{}{levelRow(cmd)}); err != nil {
			return dispatchFailure(err)
		}
		return entity.ActionResult{
			Status:  entity.ResultSuccess,
			Message: cmd.Summary() + " recorded",
		}

	case entity.ActionCheck:
		if cmd.Item == "" {
			return invalidCommand("no inventory item recognized")
		}
		total, unit, err := s.sheetsClient.QueryItem(ctx, cmd.Item)
		if err != nil {
			return dispatchFailure(err)
		}
		qty := entity.Quantity{Value: total, Unit: unit}
		return entity.ActionResult{
			Status:  entity.ResultSuccess,
			Message: fmt.Sprintf("%s: %s in stock", cmd.Item, qty.String()),
			Payload: qty.String(),
		}

	case entity.ActionReport:
		report, err := s.buildReport(ctx, 10)
		if err != nil {
			return dispatchFailure(err)
		}
		return entity.ActionResult{
			Status:  entity.ResultSuccess,
			Message: "Inventory report ready",
			Payload: report,
		}

	case entity.ActionEmail:
		to := cmd.Recipient
		if to == "" {
			to = os.Getenv("INVENTORY_EMAIL_TO")
		}
		if to == "" {
			return invalidCommand("no email recipient configured")
		}
		report, err := s.buildReport(ctx, 20)
		if err != nil {
			return dispatchFailure(err)
		}
		body := report
		if cmd.Notes != "" {
			body = cmd.Notes + "\r\n\r\n" + report
		}
		if err := s.smtpMailer.SendMail(to, "Inventory report", body); err != nil {
			return dispatchFailure(err)
		}
		return entity.ActionResult{
			Status:  entity.ResultSuccess,
			Message: "Inventory report sent to " + to,
		}

	case entity.ActionAlert:
		to := os.Getenv("INVENTORY_ALERT_TO")
		if to == "" {
			to = os.Getenv("INVENTORY_EMAIL_TO")
		}
		if to == "" {
			return invalidCommand("no alert recipient configured")
		}
		subject := "[Inventory alert]"
		if cmd.Item != "" {
			subject = fmt.Sprintf("[Inventory alert] %s", cmd.Item)
		}
		body := cmd.Notes
		if body == "" {
			body = cmd.Transcript
		}
		if err := s.smtpMailer.SendMail(to, subject, body); err != nil {
			return dispatchFailure(err)
		}
		return entity.ActionResult{
			Status:  entity.ResultSuccess,
			Message: "Alert sent to " + to,
		}

	default:
		return invalidCommand("command not recognized")
	}
}

func (s *assistantService) recordHistory(ctx context.Context, cmd entity.ParsedCommand, result entity.ActionResult) {
	record := entity.CommandRecord{
		ID:         cmd.ID,
		Action:     cmd.Action,
		Item:       cmd.Item,
		Quantity:   cmd.Quantity,
		Status:     result.Status,
		Message:    result.Message,
		Transcript: cmd.Transcript,
		CreatedAt:  time.Now(),
	}

	if err := s.redisServer.PushHistory(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"command_id": cmd.ID,
			"error":      err.Error(),
		}).Warn("Failed to record command history")
	}
}

func levelsRange() string {
	if r := os.Getenv("SHEETS_LEVELS_RANGE"); r != "" {
		return r
	}
	return "Levels!A2:E2"
}

func levelRow(cmd entity.ParsedCommand) []interface{} {
	var value float64
	var unit string
	if cmd.Quantity != nil {
		value = cmd.Quantity.Value
		unit = cmd.Quantity.Unit
	}
	return []interface{}{
		time.Now().Format(time.RFC3339),
		cmd.Item,
		value,
		unit,
		cmd.Notes,
	}
}

func invalidCommand(message string) entity.ActionResult {
	return entity.ActionResult{
		Status:    entity.ResultFailed,
		Message:   message,
		ErrorKind: entity.ErrKindInvalidCommand,
	}
}

func dispatchFailure(err error) entity.ActionResult {
	return entity.ActionResult{
		Status:    entity.ResultFailed,
		Message:   err.Error(),
		ErrorKind: classifyDispatchError(err),
	}
}

func classifyDispatchError(err error) entity.ErrorKind {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return entity.ErrKindAuthExpired
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return entity.ErrKindAuthExpired
	}

	return entity.ErrKindExternalService
}
