package assistantService

import (
	"errors"
	"strings"
	"testing"

	"StockVoice/internal/entity"

	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestDispatch_AddAppendsToSheet(t *testing.T) {
	fx := newFixture(nil)

	cmd := entity.ParsedCommand{
		ID:       "cmd-1",
		Action:   entity.ActionAdd,
		Item:     "espresso beans",
		Quantity: &entity.Quantity{Value: 10, Unit: "bags"},
	}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultSuccess {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Message)
	}
	if fx.sheets.appendedCount() != 1 {
		t.Errorf("expected 1 sheet append, got %d", fx.sheets.appendedCount())
	}
	if fx.store.historyCount() != 1 {
		t.Errorf("expected 1 history record, got %d", fx.store.historyCount())
	}
}

func TestDispatch_UpdateWritesLevelRow(t *testing.T) {
	fx := newFixture(nil)

	cmd := entity.ParsedCommand{
		ID:       "cmd-7",
		Action:   entity.ActionUpdate,
		Item:     "oat milk",
		Quantity: &entity.Quantity{Value: 6, Unit: "cartons"},
	}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultSuccess {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Message)
	}
	if fx.sheets.appendedCount() != 1 {
		t.Errorf("expected 1 sheet append, got %d", fx.sheets.appendedCount())
	}

	update, ok := fx.sheets.lastUpdate()
	if !ok {
		t.Fatal("expected a level range update")
	}
	if update.rangeA1 != "Levels!A2:E2" {
		t.Errorf("level range: got %s, want Levels!A2:E2", update.rangeA1)
	}
	if len(update.values) != 1 || len(update.values[0]) != 5 {
		t.Fatalf("unexpected level row shape: %v", update.values)
	}
	if update.values[0][1] != "oat milk" {
		t.Errorf("level row item: got %v, want oat milk", update.values[0][1])
	}
	if update.values[0][2] != 6.0 {
		t.Errorf("level row value: got %v, want 6", update.values[0][2])
	}
}

func TestDispatch_UpdateFailsWhenLevelWriteFails(t *testing.T) {
	fx := newFixture(nil)
	fx.sheets.updateErr = errors.New("backend unavailable")

	cmd := entity.ParsedCommand{
		ID:       "cmd-8",
		Action:   entity.ActionUpdate,
		Item:     "oat milk",
		Quantity: &entity.Quantity{Value: 6, Unit: "cartons"},
	}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultFailed {
		t.Fatalf("expected failure, got %s", result.Status)
	}
	if result.ErrorKind != entity.ErrKindExternalService {
		t.Errorf("error kind: got %s, want %s", result.ErrorKind, entity.ErrKindExternalService)
	}
}

func TestDispatch_CheckReportsStock(t *testing.T) {
	fx := newFixture(nil)
	fx.sheets.queryTotal = 12
	fx.sheets.queryUnit = "boxes"

	cmd := entity.ParsedCommand{ID: "cmd-1", Action: entity.ActionCheck, Item: "cups"}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultSuccess {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Message)
	}
	if !strings.Contains(result.Message, "cups") || !strings.Contains(result.Message, "12 boxes") {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if fx.sheets.appendedCount() != 0 {
		t.Error("check must not append to the sheet")
	}
}

func TestDispatch_EmailSendsReport(t *testing.T) {
	fx := newFixture(nil)

	cmd := entity.ParsedCommand{
		ID:        "cmd-1",
		Action:    entity.ActionEmail,
		Recipient: "manager@example.com",
	}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultSuccess {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Message)
	}
	if len(fx.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail sent, got %d", len(fx.mailer.sent))
	}
	if fx.mailer.sent[0].to != "manager@example.com" {
		t.Errorf("recipient: got %q", fx.mailer.sent[0].to)
	}
}

func TestDispatch_EmailWithoutRecipientFails(t *testing.T) {
	t.Setenv("INVENTORY_EMAIL_TO", "")

	fx := newFixture(nil)
	cmd := entity.ParsedCommand{ID: "cmd-1", Action: entity.ActionEmail}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultFailed {
		t.Fatalf("expected failure, got %s", result.Status)
	}
	if result.ErrorKind != entity.ErrKindInvalidCommand {
		t.Errorf("error kind: got %s, want %s", result.ErrorKind, entity.ErrKindInvalidCommand)
	}
}

func TestDispatch_AlertUsesConfiguredRecipient(t *testing.T) {
	t.Setenv("INVENTORY_ALERT_TO", "oncall@example.com")

	fx := newFixture(nil)
	cmd := entity.ParsedCommand{
		ID:     "cmd-1",
		Action: entity.ActionAlert,
		Item:   "espresso beans",
		Notes:  "stock below threshold",
	}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultSuccess {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Message)
	}
	if len(fx.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail sent, got %d", len(fx.mailer.sent))
	}
	mail := fx.mailer.sent[0]
	if mail.to != "oncall@example.com" {
		t.Errorf("recipient: got %q", mail.to)
	}
	if !strings.Contains(mail.subject, "Inventory alert") {
		t.Errorf("subject: got %q", mail.subject)
	}
}

func TestDispatch_UnknownActionFails(t *testing.T) {
	fx := newFixture(nil)

	result := fx.svc.dispatch(context.Background(), entity.ParsedCommand{ID: "cmd-1", Action: entity.ActionUnknown})
	if result.Status != entity.ResultFailed || result.ErrorKind != entity.ErrKindInvalidCommand {
		t.Errorf("got %s/%s, want failed/%s", result.Status, result.ErrorKind, entity.ErrKindInvalidCommand)
	}
}

func TestDispatch_SingleAttemptOnExecutorError(t *testing.T) {
	fx := newFixture(nil)
	fx.sheets.appendErr = errors.New("backend down")

	cmd := entity.ParsedCommand{ID: "cmd-1", Action: entity.ActionAdd, Item: "beans"}
	result := fx.svc.dispatch(context.Background(), cmd)

	if result.Status != entity.ResultFailed {
		t.Fatalf("expected failure, got %s", result.Status)
	}
	if result.ErrorKind != entity.ErrKindExternalService {
		t.Errorf("error kind: got %s, want %s", result.ErrorKind, entity.ErrKindExternalService)
	}
	if fx.sheets.appendedCount() != 0 {
		t.Error("failed append must not be retried")
	}
	// The failed attempt still lands in history.
	if fx.store.historyCount() != 1 {
		t.Errorf("expected 1 history record, got %d", fx.store.historyCount())
	}
}

func TestClassifyDispatchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want entity.ErrorKind
	}{
		{"oauth retrieve error", &oauth2.RetrieveError{}, entity.ErrKindAuthExpired},
		{"googleapi 401", &googleapi.Error{Code: 401}, entity.ErrKindAuthExpired},
		{"googleapi 403", &googleapi.Error{Code: 403}, entity.ErrKindAuthExpired},
		{"googleapi 500", &googleapi.Error{Code: 500}, entity.ErrKindExternalService},
		{"plain error", errors.New("boom"), entity.ErrKindExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDispatchError(tt.err); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
