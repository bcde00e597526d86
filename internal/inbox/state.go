package inbox

import (
	"fmt"

	"github.com/ajramos/hostinbox/internal/model"
)

// Phase tracks the property list lifecycle
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MessagesPhase tracks the message list of the selected property
type MessagesPhase int

const (
	MessagesNone MessagesPhase = iota
	MessagesLoading
	MessagesReady
)

func (p MessagesPhase) String() string {
	switch p {
	case MessagesNone:
		return "none"
	case MessagesLoading:
		return "loading"
	case MessagesReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MessageLoad asks the caller to fetch messages for a property. Token must be
// passed back to MessagesLoaded or MessagesFailed.
type MessageLoad struct {
	PropertyID string
	Token      uint64
}

// State holds the selection and list state of the inbox screen. It is not safe
// for concurrent use: all transitions run on the UI goroutine.
type State struct {
	Phase         Phase
	MessagesPhase MessagesPhase

	Properties []model.Property
	SelectedID string
	Selected   *model.Property

	Messages        []model.Message
	Filtered        []model.Message
	SelectedMessage *model.Message
	Placeholder     bool

	Query string

	// latest issued fetch tokens; responses carrying older ones are dropped
	propertiesToken uint64
	messagesToken   uint64
}

// NewState returns an uninitialized state
func NewState() *State {
	return &State{}
}

// BeginPropertiesLoad enters Loading and returns the token for the fetch
func (s *State) BeginPropertiesLoad() uint64 {
	s.propertiesToken++
	s.Phase = PhaseLoading
	return s.propertiesToken
}

// PropertiesLoaded stores the fetched properties and auto-selects the first one.
// It returns the message load to start, if any, and whether the result was applied.
func (s *State) PropertiesLoaded(token uint64, props []model.Property) (*MessageLoad, bool) {
	if token != s.propertiesToken {
		return nil, false
	}
	s.Phase = PhaseReady
	s.Properties = props
	s.clearSelection()
	if len(props) == 0 {
		return nil, true
	}
	load, err := s.SelectProperty(props[0].ID)
	if err != nil {
		return nil, true
	}
	return load, true
}

// PropertiesFailed leaves an empty property set. Stale failures are ignored.
func (s *State) PropertiesFailed(token uint64) bool {
	if token != s.propertiesToken {
		return false
	}
	s.Phase = PhaseReady
	s.Properties = nil
	s.clearSelection()
	return true
}

// SelectProperty selects the property with the given id, clears the selected
// message and returns the message load to start
func (s *State) SelectProperty(id string) (*MessageLoad, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("unknown property %q", id)
	}
	p := s.Properties[idx]
	s.SelectedID = id
	s.Selected = &p
	s.SelectedMessage = nil
	s.Messages = nil
	s.Filtered = nil
	s.Placeholder = false
	s.MessagesPhase = MessagesLoading
	s.messagesToken++
	return &MessageLoad{PropertyID: id, Token: s.messagesToken}, nil
}

// MessagesLoaded installs the loaded messages if token is the latest issued
func (s *State) MessagesLoaded(token uint64, msgs []model.Message, placeholder bool) bool {
	if token != s.messagesToken || s.MessagesPhase != MessagesLoading {
		return false
	}
	s.Messages = msgs
	s.Filtered = Filter(msgs, s.Query)
	s.Placeholder = placeholder
	s.MessagesPhase = MessagesReady
	return true
}

// MessagesFailed clears the message list if token is the latest issued
func (s *State) MessagesFailed(token uint64) bool {
	if token != s.messagesToken || s.MessagesPhase != MessagesLoading {
		return false
	}
	s.Messages = nil
	s.Filtered = nil
	s.Placeholder = false
	s.MessagesPhase = MessagesReady
	return true
}

// SelectMessage records the selected message by value
func (s *State) SelectMessage(m model.Message) {
	s.SelectedMessage = &m
}

// IsSelected reports whether m equals the selected message
func (s *State) IsSelected(m model.Message) bool {
	return s.SelectedMessage != nil && *s.SelectedMessage == m
}

// SetQuery updates the search query and recomputes the filtered list
func (s *State) SetQuery(q string) {
	s.Query = q
	s.Filtered = Filter(s.Messages, q)
}

// Imported prepends newly imported messages for propertyID and returns how many
// were added. Imports for a property that is no longer selected are dropped,
// and messages already listed (a reload may have read them from the store) are
// skipped. While a reload is in flight its result would overwrite the merge, so
// a fresh load is returned instead.
func (s *State) Imported(propertyID string, msgs []model.Message) (*MessageLoad, int) {
	if propertyID == "" || propertyID != s.SelectedID || len(msgs) == 0 {
		return nil, 0
	}
	if s.MessagesPhase == MessagesLoading {
		s.messagesToken++
		return &MessageLoad{PropertyID: propertyID, Token: s.messagesToken}, 0
	}
	msgs = Unseen(s.Messages, msgs)
	if len(msgs) == 0 {
		return nil, 0
	}
	s.Messages = Merge(s.Messages, msgs)
	s.Filtered = Filter(s.Messages, s.Query)
	s.Placeholder = false
	return nil, len(msgs)
}

// Loading reports whether a fetch the screen waits on is in flight
func (s *State) Loading() bool {
	return s.Phase == PhaseLoading || s.MessagesPhase == MessagesLoading
}

func (s *State) clearSelection() {
	s.SelectedID = ""
	s.Selected = nil
	s.SelectedMessage = nil
	s.Messages = nil
	s.Filtered = nil
	s.Placeholder = false
	s.MessagesPhase = MessagesNone
}

func (s *State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Properties {
		if s.Properties[i].ID == id {
			return i
		}
	}
	return -1
}
