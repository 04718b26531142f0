package nlp

import "testing"

func TestExtractQuantity(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name      string
		text      string
		wantValue float64
		wantUnit  string
		wantMatch string
	}{
		{"digits with unit", "add 10 bags of espresso beans", 10, "bags", "numeric"},
		{"digits without unit", "remove 3 of those", 3, "", "numeric"},
		{"decimal value", "add 2.5 kg of flour", 2.5, "kg", "numeric"},
		{"spelled out with unit", "add ten boxes of cups", 10, "boxes", "words"},
		{"spelled out without unit", "take five of them", 5, "", "words"},
		{"article as one", "add a bag of sugar", 1, "bag", "words"},
		{"trailing stop word is not a unit", "add 5 to the sheet", 5, "", "numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, match := e.ExtractQuantity(tt.text)
			if q == nil {
				t.Fatalf("expected a quantity for %q, got none", tt.text)
			}
			if q.Value != tt.wantValue {
				t.Errorf("value: got %g, want %g", q.Value, tt.wantValue)
			}
			if q.Unit != tt.wantUnit {
				t.Errorf("unit: got %q, want %q", q.Unit, tt.wantUnit)
			}
			if match != tt.wantMatch {
				t.Errorf("match: got %q, want %q", match, tt.wantMatch)
			}
		})
	}
}

func TestExtractQuantity_NoNumber(t *testing.T) {
	e := NewExtractor()

	q, match := e.ExtractQuantity("check stock on cups")
	if q != nil {
		t.Errorf("expected no quantity, got %+v", q)
	}
	if match != "none" {
		t.Errorf("expected match 'none', got %q", match)
	}
}
