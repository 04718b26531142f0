package assistantService

import (
	"fmt"
	"strings"

	"StockVoice/internal/entity"
	contextPkg "StockVoice/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const defaultHistoryLimit = 20

func (s *assistantService) History(ctx context.Context, limit int) ([]entity.CommandRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.redisServer.GetHistory(ctx, limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to load command history")
		return nil, err
	}

	return records, nil
}

// buildReport renders the most recent dispatched commands as a plain-text
// report suitable for the report action and outgoing emails.
func (s *assistantService) buildReport(ctx context.Context, limit int) (string, error) {
	records, err := s.redisServer.GetHistory(ctx, limit)
	if err != nil {
		return "", err
	}

	if len(records) == 0 {
		return "No inventory activity recorded yet.", nil
	}

	var b strings.Builder
	b.WriteString("Recent inventory activity:\r\n")
	for _, rec := range records {
		line := fmt.Sprintf("- [%s] %s", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Action)
		if rec.Quantity != nil {
			line += " " + rec.Quantity.String()
		}
		if rec.Item != "" {
			line += " " + rec.Item
		}
		line += fmt.Sprintf(" (%s)", rec.Status)
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	return b.String(), nil
}
