package services

import (
	"fmt"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// policyTable maps each intent to the instruction appended to the prompt.
// The baseline turn carries no instruction at all.
var policyTable = map[domain.Intent]string{
	domain.IntentElaborate: "Elaborate with clear reasoning and structured explanation.",
	domain.IntentSimplify:  "Explain in simpler terms for a non-technical audience.",
	domain.IntentRestrict:  "Focus strictly on the user's request and retrieved scan context. Be concise.",
	domain.IntentExtract:   "Provide a short, list-based factual answer. No extra commentary.",
	domain.IntentBaseline:  "",
}

// PolicyInstruction returns the steering instruction for an intent.
// A lookup outside the enumeration is a programming error, surfaced as
// domain.ErrUnknownIntent rather than silently falling back.
func PolicyInstruction(intent domain.Intent) (string, error) {
	instruction, ok := policyTable[intent]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownIntent, intent)
	}
	return instruction, nil
}
