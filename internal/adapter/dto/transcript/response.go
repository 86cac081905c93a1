package transcript

import "github.com/johnquangdev/meeting-actions/internal/domain/entities"

// ActionItemResponse is one extracted work item as returned to the caller
type ActionItemResponse struct {
	Title       string `json:"title"`
	AssignedTo  string `json:"assigned_to"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// DeliveredItemResponse is one successfully created work item
type DeliveredItemResponse struct {
	ID                 int                 `json:"id"`
	URL                string              `json:"url"`
	Title              string              `json:"title"`
	Type               string              `json:"type"`
	AssigneeResolution *AssigneeResolution `json:"assignee_resolution,omitempty"`
}

// AssigneeResolution reports how an assignee name matched the directory
type AssigneeResolution struct {
	OriginalName  string `json:"original_name"`
	Resolved      bool   `json:"resolved"`
	PrincipalName string `json:"principal_name,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	Confidence    string `json:"confidence,omitempty"`
	Error         string `json:"error,omitempty"`
}

// FailedItemResponse is one item that could not be created
type FailedItemResponse struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ProcessResponse is the body returned by POST /v1/transcripts/process
type ProcessResponse struct {
	CorrelationID string                  `json:"correlation_id"`
	Summary       string                  `json:"summary,omitempty"`
	ActionItems   []ActionItemResponse    `json:"action_items"`
	Delivered     []DeliveredItemResponse `json:"delivered,omitempty"`
	Failed        []FailedItemResponse    `json:"failed,omitempty"`
	FailedCount   int                     `json:"failed_count"`
}

// FromActionItem maps the domain entity onto the response shape
func FromActionItem(item entities.ActionItem) ActionItemResponse {
	return ActionItemResponse{
		Title:       item.Title,
		AssignedTo:  item.AssignedTo,
		Type:        string(item.Type),
		Priority:    string(item.Priority),
		Description: item.Description,
		Deadline:    item.Deadline,
	}
}

// FromDeliveryRecord maps a delivery record onto the response shape
func FromDeliveryRecord(rec entities.DeliveryRecord) DeliveredItemResponse {
	out := DeliveredItemResponse{
		ID:    rec.ID,
		URL:   rec.URL,
		Title: rec.Title,
		Type:  string(rec.Type),
	}
	if rec.AssigneeResolution != nil {
		res := &AssigneeResolution{
			OriginalName: rec.AssigneeResolution.OriginalName,
			Resolved:     rec.AssigneeResolution.Resolved,
			Error:        rec.AssigneeResolution.Error,
		}
		if rec.AssigneeResolution.Identity != nil {
			res.PrincipalName = rec.AssigneeResolution.Identity.PrincipalName
			res.DisplayName = rec.AssigneeResolution.Identity.DisplayName
			res.Confidence = string(rec.AssigneeResolution.Identity.Confidence)
		}
		out.AssigneeResolution = res
	}
	return out
}

// FromDeliveryFailure maps a delivery failure onto the response shape
func FromDeliveryFailure(f entities.DeliveryFailure) FailedItemResponse {
	return FailedItemResponse{Title: f.Item.Title, Error: f.Error}
}
