package transcript

// ProcessRequest is the body of POST /v1/transcripts/process
type ProcessRequest struct {
	CaptionText      string `json:"caption_text" validate:"required"`
	MeetingID        string `json:"meeting_id,omitempty"`
	ResolveAssignees bool   `json:"resolve_assignees"`
	// Deliver defaults to true; extraction-only callers set it false
	Deliver *bool `json:"deliver,omitempty"`
}

// ShouldDeliver resolves the optional flag with its default
func (r *ProcessRequest) ShouldDeliver() bool {
	if r.Deliver == nil {
		return true
	}
	return *r.Deliver
}
