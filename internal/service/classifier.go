package service

import (
	"strings"
	"unicode"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
)

const ruleConfidence = 0.7

// RuleMatch is a classification produced without any provider call.
type RuleMatch struct {
	CategoryID uint    `json:"category_id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ClassifyByRules matches log text against category names by token
// containment. The first category (in table order) with any name token
// found in the text wins, at a fixed confidence. This runs before the LLM
// client to avoid provider calls for the obvious cases.
func ClassifyByRules(text string, categories []model.KpiCategory) *RuleMatch {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	for _, c := range categories {
		tokens := strings.FieldsFunc(strings.ToLower(c.Name), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, tok := range tokens {
			if tok != "" && strings.Contains(text, tok) {
				return &RuleMatch{CategoryID: c.ID, Category: c.Name, Confidence: ruleConfidence}
			}
		}
	}
	return nil
}
