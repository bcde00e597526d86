package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message sources
const (
	SourceSampleData = "sample_data"
	SourceGmail      = "gmail"
	SourceIMAP       = "imap"
	SourceSeed       = "seed"
)

// Property is a rental unit owned by a host; messages are grouped by property
type Property struct {
	ID       string    `json:"id"`
	Name     string    `json:"property_name"`
	Messages []Message `json:"messages,omitempty"`
}

// Message is a single guest/host communication record
type Message struct {
	ID        string    `json:"id,omitempty"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
	Source    string    `json:"source"`
}

// Key returns a stable identifier for the message. Persisted messages use their
// store ID; unsaved ones (placeholders) derive it from their contents.
func (m Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	name := strings.Join([]string{m.Sender, m.Receiver, m.Content, m.Timestamp.String(), m.Source}, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// SameAs reports whether two messages describe the same communication,
// ignoring store IDs. Used to deduplicate imports.
func (m Message) SameAs(o Message) bool {
	return m.Sender == o.Sender && m.Content == o.Content && m.Timestamp.Equal(o.Timestamp)
}

// Timestamp holds either an epoch-seconds-bearing value or an ISO-8601 string
type Timestamp struct {
	Seconds int64
	Nanos   int32
	ISO     string
}

// TimestampFromTime builds a seconds-bearing timestamp
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// ISOTimestamp builds a string timestamp in UTC with millisecond precision
func ISOTimestamp(t time.Time) Timestamp {
	return Timestamp{ISO: t.UTC().Format("2006-01-02T15:04:05.000Z07:00")}
}

// IsZero reports whether no time information is present
func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Nanos == 0 && strings.TrimSpace(t.ISO) == ""
}

// Time resolves the timestamp: seconds first, then the ISO string, then now.
func (t Timestamp) Time(now time.Time) time.Time {
	if t.Seconds != 0 || t.Nanos != 0 {
		return time.Unix(t.Seconds, int64(t.Nanos))
	}
	if parsed, ok := parseISO(t.ISO); ok {
		return parsed
	}
	return now
}

// Equal compares the instants both timestamps resolve to, falling back to the raw
// values when neither can be resolved
func (t Timestamp) Equal(o Timestamp) bool {
	if t.IsZero() || o.IsZero() {
		return t == o
	}
	var zero time.Time
	a, b := t.Time(zero), o.Time(zero)
	if a.IsZero() || b.IsZero() {
		return t == o
	}
	return a.Equal(b)
}

func (t Timestamp) String() string {
	if t.ISO != "" {
		return t.ISO
	}
	if t.Seconds != 0 || t.Nanos != 0 {
		return fmt.Sprintf("%d.%09d", t.Seconds, t.Nanos)
	}
	return ""
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

type secondsValue struct {
	Seconds     *int64 `json:"seconds,omitempty"`
	Nanoseconds int32  `json:"nanoseconds,omitempty"`
	// Firestore REST exports use underscored names
	AltSeconds     *int64 `json:"_seconds,omitempty"`
	AltNanoseconds int32  `json:"_nanoseconds,omitempty"`
}

// MarshalJSON writes the ISO form as a string and the seconds form as an object
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.ISO != "":
		return json.Marshal(t.ISO)
	case t.Seconds != 0 || t.Nanos != 0:
		secs := t.Seconds
		return json.Marshal(secondsValue{Seconds: &secs, Nanoseconds: t.Nanos})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, an object with seconds/nanoseconds or null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Timestamp{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &t.ISO)
	}
	var v secondsValue
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	switch {
	case v.Seconds != nil:
		t.Seconds, t.Nanos = *v.Seconds, v.Nanoseconds
	case v.AltSeconds != nil:
		t.Seconds, t.Nanos = *v.AltSeconds, v.AltNanoseconds
	default:
		return fmt.Errorf("invalid timestamp: missing seconds")
	}
	return nil
}
