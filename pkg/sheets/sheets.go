package sheets

import (
	"errors"
	"fmt"
	"os"
	"time"

	"StockVoice/internal/entity"
	googlePkg "StockVoice/pkg/google"

	"golang.org/x/net/context"
	"google.golang.org/api/option"
	sheetsAPI "google.golang.org/api/sheets/v4"
)

type ItfSheets interface {
	// AppendChange appends one inventory mutation row to the log sheet.
	AppendChange(ctx context.Context, cmd entity.ParsedCommand) error

	// UpdateRange writes values into an explicit A1 range.
	UpdateRange(ctx context.Context, rangeA1 string, values [][]interface{}) error

	// QueryItem scans the log sheet and returns the net quantity recorded
	// for an item.
	QueryItem(ctx context.Context, item string) (float64, string, error)
}

type sheetsClient struct {
	provider      googlePkg.ItfGoogle
	spreadsheetID string
	logRange      string
}

func New(provider googlePkg.ItfGoogle) (ItfSheets, error) {
	spreadsheetID := os.Getenv("SHEETS_SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}

	logRange := os.Getenv("SHEETS_LOG_RANGE")
	if logRange == "" {
		logRange = "Inventory!A:F"
	}

	return &sheetsClient{
		provider:      provider,
		spreadsheetID: spreadsheetID,
		logRange:      logRange,
	}, nil
}

func (s *sheetsClient) service(ctx context.Context) (*sheetsAPI.Service, error) {
	return sheetsAPI.NewService(ctx, option.WithTokenSource(s.provider.TokenSource(ctx)))
}

func (s *sheetsClient) AppendChange(ctx context.Context, cmd entity.ParsedCommand) error {
	svc, err := s.service(ctx)
	if err != nil {
		return err
	}

	var value float64
	var unit string
	if cmd.Quantity != nil {
		value = cmd.Quantity.Value
		unit = cmd.Quantity.Unit
	}

	row := []interface{}{
		time.Now().Format(time.RFC3339),
		string(cmd.Action),
		cmd.Item,
		value,
		unit,
		cmd.Notes,
	}

	_, err = svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.logRange, &sheetsAPI.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (s *sheetsClient) UpdateRange(ctx context.Context, rangeA1 string, values [][]interface{}) error {
	svc, err := s.service(ctx)
	if err != nil {
		return err
	}

	_, err = svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rangeA1, &sheetsAPI.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (s *sheetsClient) QueryItem(ctx context.Context, item string) (float64, string, error) {
	svc, err := s.service(ctx)
	if err != nil {
		return 0, "", err
	}

	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, s.logRange).Context(ctx).Do()
	if err != nil {
		return 0, "", err
	}

	var total float64
	var unit string
	for _, row := range resp.Values {
		if len(row) < 4 {
			continue
		}
		action, _ := row[1].(string)
		name, _ := row[2].(string)
		if name != item {
			continue
		}

		var value float64
		switch v := row[3].(type) {
		case float64:
			value = v
		case string:
			fmt.Sscanf(v, "%f", &value)
		}

		switch entity.ActionKind(action) {
		case entity.ActionAdd:
			total += value
		case entity.ActionRemove:
			total -= value
		case entity.ActionUpdate:
			// an update row records the counted stock level outright
			total = value
		}

		if len(row) >= 5 {
			if u, ok := row[4].(string); ok && u != "" {
				unit = u
			}
		}
	}

	return total, unit, nil
}
