package entity

import (
	"fmt"
	"strings"
	"time"
)

type ActionKind string

const (
	ActionAdd     ActionKind = "add"
	ActionRemove  ActionKind = "remove"
	ActionUpdate  ActionKind = "update"
	ActionCheck   ActionKind = "check"
	ActionReport  ActionKind = "report"
	ActionEmail   ActionKind = "email"
	ActionAlert   ActionKind = "alert"
	ActionUnknown ActionKind = "unknown"
)

// Mutating reports whether the action changes inventory state when dispatched.
func (k ActionKind) Mutating() bool {
	switch k {
	case ActionAdd, ActionRemove, ActionUpdate:
		return true
	default:
		return false
	}
}

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

func (q Quantity) String() string {
	if q.Unit == "" {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

type ParsedCommand struct {
	ID                string     `json:"id"`
	Action            ActionKind `json:"action"`
	Item              string     `json:"item,omitempty"`
	Quantity          *Quantity  `json:"quantity,omitempty"`
	Recipient         string     `json:"recipient,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Confidence        float64    `json:"confidence,omitempty"`
	NeedsConfirmation bool       `json:"needs_confirmation"`
	Transcript        string     `json:"transcript,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Summary renders the human-readable confirmation text shown to the user
// before a mutating command is dispatched.
func (c ParsedCommand) Summary() string {
	var b strings.Builder

	switch c.Action {
	case ActionAdd:
		b.WriteString("Add ")
	case ActionRemove:
		b.WriteString("Remove ")
	case ActionUpdate:
		b.WriteString("Update ")
	case ActionCheck:
		b.WriteString("Check stock of ")
	case ActionReport:
		b.WriteString("Generate inventory report")
	case ActionEmail:
		b.WriteString("Send inventory email")
	case ActionAlert:
		b.WriteString("Send inventory alert")
	default:
		b.WriteString("Unrecognized command")
	}

	if c.Action.Mutating() || c.Action == ActionCheck {
		if c.Quantity != nil {
			b.WriteString(c.Quantity.String())
			b.WriteString(" of ")
		}
		b.WriteString(c.Item)
	}

	if c.Action == ActionEmail && c.Recipient != "" {
		b.WriteString(" to ")
		b.WriteString(c.Recipient)
	}

	if c.Notes != "" {
		b.WriteString(" (")
		b.WriteString(c.Notes)
		b.WriteString(")")
	}

	return b.String()
}

type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

type ErrorKind string

const (
	ErrKindAuthExpired     ErrorKind = "AuthExpired"
	ErrKindExternalService ErrorKind = "ExternalServiceError"
	ErrKindInvalidCommand  ErrorKind = "InvalidCommand"
)

type ActionResult struct {
	Status    ResultStatus `json:"status"`
	Message   string       `json:"message"`
	Payload   string       `json:"payload,omitempty"`
	ErrorKind ErrorKind    `json:"error_kind,omitempty"`
}

// CommandRecord is the history entry persisted after a dispatch attempt.
type CommandRecord struct {
	ID         string       `json:"id"`
	Action     ActionKind   `json:"action"`
	Item       string       `json:"item,omitempty"`
	Quantity   *Quantity    `json:"quantity,omitempty"`
	Status     ResultStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	Transcript string       `json:"transcript,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
