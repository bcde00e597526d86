package inbox

import (
	"time"

	"github.com/ajramos/hostinbox/internal/model"
)

// Placeholders returns the sample messages shown for a property with no stored
// messages. They are display-only and must never be persisted.
func Placeholders(now time.Time) []model.Message {
	return []model.Message{
		{
			Sender:    "John Doe",
			Receiver:  "Host",
			Content:   "Hi there! I was wondering what time check-in is?",
			Timestamp: model.ISOTimestamp(now),
			Source:    model.SourceSampleData,
		},
		{
			Sender:    "Jane Smith",
			Receiver:  "Host",
			Content:   "Is parking available at the property?",
			Timestamp: model.ISOTimestamp(now.Add(-24 * time.Hour)),
			Source:    model.SourceSampleData,
		},
	}
}

// MessagesFor returns the property's embedded messages, or the placeholder set
// when it has none. The second result reports whether placeholders were used.
func MessagesFor(p model.Property, now time.Time) ([]model.Message, bool) {
	if len(p.Messages) > 0 {
		out := make([]model.Message, len(p.Messages))
		copy(out, p.Messages)
		return out, false
	}
	return Placeholders(now), true
}
