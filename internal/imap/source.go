package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/config"
	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/render"
	"github.com/ajramos/hostinbox/internal/services"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
)

// Session is the subset of *client.Client used to import messages
type Session interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// Dialer opens an unauthenticated session to server
type Dialer func(ctx context.Context, server string) (Session, error)

const commandTimeout = 30 * time.Second

// DialTLS connects over implicit TLS
func DialTLS(ctx context.Context, server string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := client.DialTLS(server, &tls.Config{})
	if err != nil {
		return nil, err
	}
	c.Timeout = commandTimeout
	return c, nil
}

// Source imports guest messages that mention a property from an IMAP mailbox
type Source struct {
	cfg        config.IMAPConfig
	maxResults int
	dial       Dialer
}

// NewSource creates an IMAP source. A nil dialer uses DialTLS.
func NewSource(cfg config.IMAPConfig, maxResults int64, dial Dialer) *Source {
	if dial == nil {
		dial = DialTLS
	}
	if strings.TrimSpace(cfg.Mailbox) == "" {
		cfg.Mailbox = "INBOX"
	}
	return &Source{cfg: cfg, maxResults: int(maxResults), dial: dial}
}

// Name returns the source name stored on imported messages
func (s *Source) Name() string { return model.SourceIMAP }

// FetchMessages searches the mailbox for the property name and converts the newest hits
func (s *Source) FetchMessages(ctx context.Context, property model.Property) ([]model.Message, error) {
	if strings.TrimSpace(s.cfg.Server) == "" {
		return nil, fmt.Errorf("%w: imap server not set", services.ErrImportUnavailable)
	}

	c, err := s.dial(ctx, s.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", services.ErrNetworkUnavailable, s.cfg.Server, err)
	}
	defer func() { _ = c.Logout() }()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, fmt.Errorf("%w: login failed: %v", services.ErrUnauthorized, err)
	}
	if _, err := c.Select(s.cfg.Mailbox, true); err != nil {
		return nil, fmt.Errorf("select %s failed: %w", s.cfg.Mailbox, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := c.Search(SearchCriteria(property.Name))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	ids = newest(ids, s.maxResults)
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var out []model.Message
	for msg := range messages {
		if m, ok := ToGuestMessage(msg, section); ok {
			out = append(out, m)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchCriteria matches messages whose headers or body mention the property
func SearchCriteria(propertyName string) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if name := strings.TrimSpace(propertyName); name != "" {
		criteria.Text = []string{name}
	}
	return criteria
}

// newest keeps the max highest sequence numbers
func newest(ids []uint32, max int) []uint32 {
	sorted := append([]uint32(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if max > 0 && len(sorted) > max {
		sorted = sorted[len(sorted)-max:]
	}
	return sorted
}

// ToGuestMessage converts a fetched message. Messages without a sender or a
// readable body are skipped.
func ToGuestMessage(msg *imap.Message, section *imap.BodySectionName) (model.Message, bool) {
	if msg == nil || msg.Envelope == nil || len(msg.Envelope.From) == 0 {
		return model.Message{}, false
	}
	from := msg.Envelope.From[0]
	sender := strings.TrimSpace(from.PersonalName)
	if sender == "" && from.MailboxName != "" {
		sender = from.Address()
	}
	if sender == "" {
		return model.Message{}, false
	}

	var text, html string
	if r := msg.GetBody(section); r != nil {
		entity, err := message.Read(r)
		if err == nil || message.IsUnknownCharset(err) {
			text, html = extractBodies(entity)
		}
	}
	content := render.PlainText(text)
	if content == "" && strings.TrimSpace(html) != "" {
		if converted, err := render.HTMLToText(html); err == nil {
			content = converted
		}
	}
	if content == "" {
		return model.Message{}, false
	}

	receiver := "Host"
	if len(msg.Envelope.To) > 0 && msg.Envelope.To[0].MailboxName != "" {
		receiver = msg.Envelope.To[0].Address()
	}
	m := model.Message{
		Sender:   sender,
		Receiver: receiver,
		Content:  content,
		Source:   model.SourceIMAP,
	}
	if !msg.Envelope.Date.IsZero() {
		m.Timestamp = model.TimestampFromTime(msg.Envelope.Date)
	}
	return m, true
}

// extractBodies returns the first text/plain and text/html parts, skipping attachments
func extractBodies(entity *message.Entity) (text, html string) {
	if entity == nil {
		return "", ""
	}
	if mr := entity.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil && !message.IsUnknownCharset(err) {
				break
			}
			t, h := extractBodies(part)
			if text == "" {
				text = t
			}
			if html == "" {
				html = h
			}
		}
		return text, html
	}

	if disposition, _, _ := entity.Header.ContentDisposition(); disposition == "attachment" {
		return "", ""
	}
	mediaType, _, _ := entity.Header.ContentType()
	body, err := io.ReadAll(entity.Body)
	if err != nil {
		return "", ""
	}
	switch mediaType {
	case "text/plain", "":
		return string(body), ""
	case "text/html":
		return "", string(body)
	}
	return "", ""
}
