package nlp

import "StockVoice/internal/entity"

type IExtractor interface {
	ExtractQuantity(text string) (*entity.Quantity, string)
	NormalizeAction(verb string) entity.ActionKind
	ClassifyAction(text string) entity.ActionKind
}
