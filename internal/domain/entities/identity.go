package entities

// MatchConfidence reflects which directory lookup strategy produced a
// candidate: exact display-name match is high, prefix match is medium,
// fuzzy search is low.
type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
	ConfidenceLow    MatchConfidence = "low"
)

// ResolvedIdentity is one directory user matched to a free-text name
type ResolvedIdentity struct {
	DisplayName   string          `json:"displayName"`
	PrincipalName string          `json:"principalName"`
	Mail          string          `json:"mail,omitempty"`
	ID            string          `json:"id"`
	Confidence    MatchConfidence `json:"confidence"`
}

// ResolutionResult is the outcome of resolving one free-text assignee name.
// When multiple candidates match, Identity holds the first and Alternatives
// the rest for caller-side disambiguation.
type ResolutionResult struct {
	OriginalName string             `json:"originalName"`
	Resolved     bool               `json:"resolved"`
	Identity     *ResolvedIdentity  `json:"identity,omitempty"`
	Alternatives []ResolvedIdentity `json:"alternatives,omitempty"`
	Error        string             `json:"error,omitempty"`
}
