package entities

import (
	"strings"
	"unicode"
)

// ItemType categorizes an extracted work item
type ItemType string

const (
	ItemTypeTask      ItemType = "Task"
	ItemTypeBug       ItemType = "Bug"
	ItemTypeUserStory ItemType = "UserStory"
)

// ItemPriority is the urgency tier of an extracted work item
type ItemPriority string

const (
	ItemPriorityHigh   ItemPriority = "High"
	ItemPriorityMedium ItemPriority = "Medium"
	ItemPriorityLow    ItemPriority = "Low"
)

// UnassignedName is the sentinel assignee for items nobody claimed
const UnassignedName = "Unassigned"

// MaxTitleLength bounds the normalized title
const MaxTitleLength = 255

// ActionItem is one verified work item extracted from a transcript.
// Fields are normalized on construction and never mutated afterwards,
// except assignee substitution at delivery time.
type ActionItem struct {
	Title       string       `json:"title"`
	AssignedTo  string       `json:"assignedTo"`
	Type        ItemType     `json:"type"`
	Priority    ItemPriority `json:"priority"`
	Description string       `json:"description"`
	Deadline    string       `json:"deadline,omitempty"`
}

// NormalizeItemType collapses free-text synonyms onto the ItemType enum.
// Unrecognized values map to Task, so the result is always a valid member.
func NormalizeItemType(raw string) ItemType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "bug", "defect", "fix":
		return ItemTypeBug
	case "user story", "userstory", "story", "feature":
		return ItemTypeUserStory
	default:
		return ItemTypeTask
	}
}

// NormalizeItemPriority collapses free-text synonyms onto the ItemPriority
// enum. Unrecognized values map to Medium.
func NormalizeItemPriority(raw string) ItemPriority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "critical", "urgent", "1":
		return ItemPriorityHigh
	case "low", "minor", "3":
		return ItemPriorityLow
	default:
		return ItemPriorityMedium
	}
}

// NormalizedTitleKey reduces a title to its dedup key: lowercased, articles
// dropped, all non-alphanumeric characters stripped, so "Fix the login bug!"
// and "fix login bug" collide.
func NormalizedTitleKey(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, strings.ToLower(title))

	var b strings.Builder
	for _, word := range strings.Fields(cleaned) {
		if word == "the" || word == "a" || word == "an" {
			continue
		}
		b.WriteString(word)
	}
	return b.String()
}
