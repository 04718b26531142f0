package nlp

import (
	"testing"

	"StockVoice/internal/entity"
)

func TestNormalizeAction(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		verb string
		want entity.ActionKind
	}{
		{"add", entity.ActionAdd},
		{"Add", entity.ActionAdd},
		{"restock", entity.ActionAdd},
		{"remove", entity.ActionRemove},
		{"deduct", entity.ActionRemove},
		{"set", entity.ActionUpdate},
		{"check", entity.ActionCheck},
		{"summary", entity.ActionReport},
		{"mail", entity.ActionEmail},
		{"notify", entity.ActionAlert},
		{"unknown", entity.ActionUnknown},
		{"dance", entity.ActionUnknown},
		{"", entity.ActionUnknown},
	}

	for _, tt := range tests {
		if got := e.NormalizeAction(tt.verb); got != tt.want {
			t.Errorf("NormalizeAction(%q): got %s, want %s", tt.verb, got, tt.want)
		}
	}
}

func TestClassifyAction(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		text string
		want entity.ActionKind
	}{
		{"add ten bags of espresso beans", entity.ActionAdd},
		{"how many cups do we have", entity.ActionCheck},
		{"please send the report to anna", entity.ActionEmail},
		{"warn the team about low stock", entity.ActionAlert},
		{"what a lovely day", entity.ActionUnknown},
	}

	for _, tt := range tests {
		if got := e.ClassifyAction(tt.text); got != tt.want {
			t.Errorf("ClassifyAction(%q): got %s, want %s", tt.text, got, tt.want)
		}
	}
}
