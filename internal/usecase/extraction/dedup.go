package extraction

import (
	"strings"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// Dedupe removes near-duplicate items across chunk results. Items collide
// on their normalized title key; the entry with the longer description wins
// because it carries more context. First-seen ordering is preserved for the
// survivors.
func Dedupe(items []entities.ActionItem) []entities.ActionItem {
	type slot struct {
		index int
		item  entities.ActionItem
	}

	seen := make(map[string]*slot, len(items))
	order := make([]string, 0, len(items))

	for _, item := range items {
		key := entities.NormalizedTitleKey(item.Title)
		existing, ok := seen[key]
		if !ok {
			seen[key] = &slot{index: len(order), item: item}
			order = append(order, key)
			continue
		}
		if len(item.Description) > len(existing.item.Description) {
			existing.item = item
		}
	}

	out := make([]entities.ActionItem, 0, len(order))
	for _, key := range order {
		out = append(out, seen[key].item)
	}
	return out
}

// JoinSummaries concatenates chunk summaries with a separator, the
// fallback when the consolidation call is unavailable or fails.
func JoinSummaries(summaries []string) string {
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}
