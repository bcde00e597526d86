package inbox

import (
	"strings"

	"github.com/ajramos/hostinbox/internal/model"
)

// Filter returns the messages whose content or sender contains query, ignoring case.
// A blank query returns messages unchanged.
func Filter(messages []model.Message, query string) []model.Message {
	if strings.TrimSpace(query) == "" {
		return messages
	}
	q := strings.ToLower(query)
	out := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m.Content), q) || strings.Contains(strings.ToLower(m.Sender), q) {
			out = append(out, m)
		}
	}
	return out
}

// Merge prepends imported messages to existing ones and returns a new slice
func Merge(existing, imported []model.Message) []model.Message {
	out := make([]model.Message, 0, len(imported)+len(existing))
	out = append(out, imported...)
	return append(out, existing...)
}

// Unseen returns the imported messages not already present in existing,
// matching on Key or on SameAs
func Unseen(existing, imported []model.Message) []model.Message {
	keys := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		keys[m.Key()] = struct{}{}
	}
	out := make([]model.Message, 0, len(imported))
	for _, m := range imported {
		if _, ok := keys[m.Key()]; ok {
			continue
		}
		dup := false
		for _, e := range existing {
			if e.SameAs(m) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}
