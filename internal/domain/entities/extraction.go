package entities

// ExtractionResult is the validated output of one extraction call. One
// instance is produced per chunk; chunk results are merged into a single
// instance for the whole transcript.
type ExtractionResult struct {
	ActionItems []ActionItem `json:"actionItems"`
	Summary     string       `json:"summary,omitempty"`
}
