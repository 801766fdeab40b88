package domain

// Intent is a coarse category of user question used to select a
// response policy.
type Intent string

const (
	// IntentBaseline is reserved for the first turn of a session and is
	// never produced by the classifier.
	IntentBaseline Intent = "baseline"

	// IntentElaborate asks for reasoning and structured explanation
	IntentElaborate Intent = "elaborate"

	// IntentSimplify asks for a non-technical explanation
	IntentSimplify Intent = "simplify"

	// IntentRestrict is the default: stick to the request and the context
	IntentRestrict Intent = "restrict"

	// IntentExtract asks for a short, list-based factual answer
	IntentExtract Intent = "extract"
)

// IsValid returns true if this is a known intent
func (i Intent) IsValid() bool {
	switch i {
	case IntentBaseline, IntentElaborate, IntentSimplify, IntentRestrict, IntentExtract:
		return true
	default:
		return false
	}
}

func (i Intent) String() string {
	return string(i)
}
