package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"StockVoice/internal/entity"
)

type Extractor struct {
	numberWords map[string]float64
}

func NewExtractor() *Extractor {
	return &Extractor{
		numberWords: map[string]float64{
			"zero":      0,
			"one":       1,
			"a":         1,
			"an":        1,
			"two":       2,
			"three":     3,
			"four":      4,
			"five":      5,
			"six":       6,
			"seven":     7,
			"eight":     8,
			"nine":      9,
			"ten":       10,
			"eleven":    11,
			"twelve":    12,
			"a dozen":   12,
			"thirteen":  13,
			"fourteen":  14,
			"fifteen":   15,
			"sixteen":   16,
			"seventeen": 17,
			"eighteen":  18,
			"nineteen":  19,
			"twenty":    20,
			"thirty":    30,
			"forty":     40,
			"fifty":     50,
			"hundred":   100,
		},
	}
}

var quantityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-zA-Z]+)?`)

// ExtractQuantity splits "5 bags" style phrases into a numeric value and a
// unit string. The second return value names the pattern that matched.
func (e *Extractor) ExtractQuantity(text string) (*entity.Quantity, string) {
	text = strings.ToLower(text)

	// Pattern 1: digits, optionally followed by a unit word
	if matches := quantityPattern.FindStringSubmatch(text); len(matches) > 0 {
		value, err := strconv.ParseFloat(matches[1], 64)
		if err == nil {
			unit := matches[2]
			if !isUnitWord(unit) {
				unit = ""
			}
			return &entity.Quantity{Value: value, Unit: unit}, "numeric"
		}
	}

	// Pattern 2: spelled-out number followed by a unit word
	words := strings.Fields(text)
	for i, word := range words {
		value, ok := e.numberWords[word]
		if !ok {
			continue
		}
		if i+1 < len(words) && isUnitWord(words[i+1]) {
			return &entity.Quantity{Value: value, Unit: words[i+1]}, "words"
		}
		return &entity.Quantity{Value: value}, "words"
	}

	return nil, "none"
}

// isUnitWord filters out non-unit words that often trail a number
// ("add 5 to the sheet").
func isUnitWord(word string) bool {
	switch word {
	case "", "of", "to", "on", "in", "the", "and", "for", "more", "less":
		return false
	default:
		return true
	}
}
