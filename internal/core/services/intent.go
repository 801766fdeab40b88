package services

import (
	"strings"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// intentRule pairs a set of trigger keywords with the intent they select.
type intentRule struct {
	keywords []string
	intent   domain.Intent
}

// intentRules is evaluated in order, first match wins. The ordering is a
// deliberate tie-break: a question containing both "how" and "list" always
// resolves to elaborate. Reordering silently changes classification, so the
// order is pinned by tests.
var intentRules = []intentRule{
	{
		keywords: []string{"explain", "why", "how"},
		intent:   domain.IntentElaborate,
	},
	{
		keywords: []string{"dont get", "don't get", "confused", "dont understand"},
		intent:   domain.IntentSimplify,
	},
	{
		keywords: []string{"list", "what ports", "which ports", "what services"},
		intent:   domain.IntentExtract,
	},
}

// ClassifyIntent maps a question to an intent by keyword heuristics.
// Pure and case-insensitive. This is not a semantic classifier: false
// positives and negatives are accepted, the intent only steers tone.
// Never returns IntentBaseline; the fallback is IntentRestrict.
func ClassifyIntent(question string) domain.Intent {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.intent
			}
		}
	}
	return domain.IntentRestrict
}
