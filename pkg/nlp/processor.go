package nlp

import (
	"strings"

	"StockVoice/internal/entity"
)

var actionSynonyms = map[string]entity.ActionKind{
	"add":      entity.ActionAdd,
	"restock":  entity.ActionAdd,
	"receive":  entity.ActionAdd,
	"stock":    entity.ActionAdd,
	"remove":   entity.ActionRemove,
	"use":      entity.ActionRemove,
	"take":     entity.ActionRemove,
	"subtract": entity.ActionRemove,
	"deduct":   entity.ActionRemove,
	"update":   entity.ActionUpdate,
	"set":      entity.ActionUpdate,
	"correct":  entity.ActionUpdate,
	"count":    entity.ActionUpdate,
	"check":    entity.ActionCheck,
	"query":    entity.ActionCheck,
	"how":      entity.ActionCheck,
	"report":   entity.ActionReport,
	"summary":  entity.ActionReport,
	"email":    entity.ActionEmail,
	"send":     entity.ActionEmail,
	"mail":     entity.ActionEmail,
	"alert":    entity.ActionAlert,
	"warn":     entity.ActionAlert,
	"notify":   entity.ActionAlert,
}

// NormalizeAction maps a verb from the generation service onto the closed
// action set; unrecognized verbs map to unknown.
func (e *Extractor) NormalizeAction(verb string) entity.ActionKind {
	verb = strings.ToLower(strings.TrimSpace(verb))

	switch entity.ActionKind(verb) {
	case entity.ActionAdd, entity.ActionRemove, entity.ActionUpdate, entity.ActionCheck,
		entity.ActionReport, entity.ActionEmail, entity.ActionAlert, entity.ActionUnknown:
		return entity.ActionKind(verb)
	}

	if kind, ok := actionSynonyms[verb]; ok {
		return kind
	}
	return entity.ActionUnknown
}

// ClassifyAction is the keyword fallback used when the generation service
// answers without a usable action field.
func (e *Extractor) ClassifyAction(text string) entity.ActionKind {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if kind, ok := actionSynonyms[word]; ok {
			return kind
		}
	}
	return entity.ActionUnknown
}
