package gmail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/render"
)

// GuestSource imports guest messages about a property from Gmail search results
type GuestSource struct {
	client     *Client
	query      string
	maxResults int64
}

// NewGuestSource creates a source. query may reference {{property}}.
func NewGuestSource(client *Client, query string, maxResults int64) *GuestSource {
	return &GuestSource{client: client, query: query, maxResults: maxResults}
}

// Name returns the source name stored on imported messages
func (s *GuestSource) Name() string { return model.SourceGmail }

// FetchMessages searches Gmail for the property and converts every hit
func (s *GuestSource) FetchMessages(ctx context.Context, property model.Property) ([]model.Message, error) {
	query := strings.ReplaceAll(s.query, "{{property}}", property.Name)
	refs, err := s.client.SearchMessages(ctx, query, s.maxResults)
	if err != nil {
		return nil, err
	}

	out := make([]model.Message, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := s.client.GetMessageWithContent(ctx, ref.Id)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ref.Id, err)
		}
		if m, ok := ToGuestMessage(msg); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// ToGuestMessage converts a Gmail message into a stored message. Messages
// without any readable body are skipped.
func ToGuestMessage(msg *Message) (model.Message, bool) {
	content := render.PlainText(msg.PlainText)
	if content == "" && strings.TrimSpace(msg.HTML) != "" {
		if text, err := render.HTMLToText(msg.HTML); err == nil {
			content = text
		}
	}
	if content == "" {
		return model.Message{}, false
	}

	receiver := "Host"
	if to := firstAddress(msg.To); to != "" {
		receiver = to
	}
	m := model.Message{
		Sender:   render.SenderName(msg.From),
		Receiver: receiver,
		Content:  content,
		Source:   model.SourceGmail,
	}
	if !msg.Date.IsZero() {
		m.Timestamp = model.TimestampFromTime(msg.Date)
	}
	return m, true
}

func firstAddress(list string) string {
	if strings.TrimSpace(list) == "" {
		return ""
	}
	addrs, err := mail.ParseAddressList(list)
	if err != nil || len(addrs) == 0 {
		return strings.TrimSpace(list)
	}
	return addrs[0].Address
}
