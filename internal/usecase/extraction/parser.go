package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// Parser handles parsing and validation of extraction backend responses
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new Parser instance
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// rawItem is one entry as the backend emits it, before normalization
type rawItem struct {
	Title       string `json:"title"`
	AssignedTo  string `json:"assignedTo"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

// responseEnvelope tolerates the shapes the backend drifts between: an
// object carrying actionItems, the tasks alias, or (handled separately)
// a bare array.
type responseEnvelope struct {
	ActionItems []rawItem `json:"actionItems"`
	Tasks       []rawItem `json:"tasks"`
	Summary     string    `json:"summary"`
}

// Parse turns the raw response text into a validated ExtractionResult.
// A JSON parse failure is a hard error for the chunk: it signals a contract
// violation by the backend and carries the correlation id and raw content
// for diagnosis. An unexpected-but-valid JSON shape is only a warning and
// yields an empty item list.
func (p *Parser) Parse(correlationID, content string) (*entities.ExtractionResult, error) {
	jsonString := extractJSON(content)

	if !json.Valid([]byte(jsonString)) {
		return nil, apperrors.ErrExtractionParseFailed(correlationID, content,
			fmt.Errorf("response is not valid JSON"))
	}

	var items []rawItem
	var summary string

	if strings.HasPrefix(jsonString, "[") {
		if err := json.Unmarshal([]byte(jsonString), &items); err != nil {
			items = nil
			p.warnShape(correlationID)
		}
	} else {
		var envelope responseEnvelope
		if err := json.Unmarshal([]byte(jsonString), &envelope); err != nil {
			p.warnShape(correlationID)
		} else {
			switch {
			case envelope.ActionItems != nil:
				items = envelope.ActionItems
			case envelope.Tasks != nil:
				items = envelope.Tasks
			default:
				p.warnShape(correlationID)
			}
			summary = strings.TrimSpace(envelope.Summary)
		}
	}

	result := &entities.ExtractionResult{
		ActionItems: make([]entities.ActionItem, 0, len(items)),
		Summary:     summary,
	}
	for _, item := range items {
		if normalized, ok := normalizeItem(item); ok {
			result.ActionItems = append(result.ActionItems, normalized)
		}
	}
	return result, nil
}

func (p *Parser) warnShape(correlationID string) {
	if p.logger != nil {
		p.logger.Warn("extraction response has no recognizable item list",
			zap.String("correlation_id", correlationID),
		)
	}
}

// normalizeItem validates and sanitizes one raw entry. Entries without a
// usable title are discarded; everything else is coerced into the enums.
func normalizeItem(item rawItem) (entities.ActionItem, bool) {
	title := collapseWhitespace(item.Title)
	if title == "" {
		return entities.ActionItem{}, false
	}
	if runes := []rune(title); len(runes) > entities.MaxTitleLength {
		title = string(runes[:entities.MaxTitleLength])
	}

	assignedTo := strings.TrimSpace(item.AssignedTo)
	if assignedTo == "" {
		assignedTo = entities.UnassignedName
	}

	return entities.ActionItem{
		Title:       title,
		AssignedTo:  assignedTo,
		Type:        entities.NormalizeItemType(item.Type),
		Priority:    entities.NormalizeItemPriority(item.Priority),
		Description: strings.TrimSpace(item.Description),
		Deadline:    strings.TrimSpace(item.Deadline),
	}, true
}

// collapseWhitespace folds internal newlines and repeated whitespace into
// single spaces and trims the result.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractJSON strips markdown code fences the backend sometimes wraps its
// JSON payload in.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
