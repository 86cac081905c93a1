package entities

// DeliveryRecord is the terminal entity for one successfully created work
// item in the ticketing backend.
type DeliveryRecord struct {
	ID                 int               `json:"id"`
	URL                string            `json:"url"`
	Title              string            `json:"title"`
	Type               ItemType          `json:"type"`
	AssigneeResolution *ResolutionResult `json:"assigneeResolution,omitempty"`
	CorrelationID      string            `json:"correlationId"`
}

// DeliveryFailure pairs a source item with the error that prevented its
// creation. Failures never abort the batch; they are reported alongside
// the successes.
type DeliveryFailure struct {
	Item  ActionItem `json:"item"`
	Error string     `json:"error"`
}
