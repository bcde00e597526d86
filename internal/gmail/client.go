package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

// Client wraps the gmail.Service and provides convenience methods
type Client struct {
	Service *gmail.Service
}

// NewClient creates a new Gmail client
func NewClient(service *gmail.Service) *Client {
	return &Client{Service: service}
}

// Message represents a Gmail message with extracted content
type Message struct {
	*gmail.Message
	PlainText string
	HTML      string
	Subject   string
	From      string
	To        string
	Date      time.Time
}

// SearchMessages returns the ids of messages matching a Gmail search query
func (c *Client) SearchMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.Message, error) {
	if c == nil || c.Service == nil {
		return nil, fmt.Errorf("gmail client not initialized")
	}
	call := c.Service.Users.Messages.List("me").Q(query).Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("could not search messages: %w", err)
	}
	return res.Messages, nil
}

// GetMessage retrieves a specific message by ID
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	if c == nil || c.Service == nil {
		return nil, fmt.Errorf("gmail client not initialized")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("message ID cannot be empty")
	}
	msg, err := c.Service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not get message %s: %w", id, err)
	}
	return msg, nil
}

// GetMessageWithContent retrieves a message and extracts its content
func (c *Client) GetMessageWithContent(ctx context.Context, id string) (*Message, error) {
	msg, err := c.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return newMessage(msg), nil
}

func newMessage(msg *gmail.Message) *Message {
	return &Message{
		Message:   msg,
		PlainText: ExtractPlainText(msg),
		HTML:      ExtractHTML(msg),
		Subject:   extractHeader(msg, "Subject"),
		From:      extractHeader(msg, "From"),
		To:        extractHeader(msg, "To"),
		Date:      extractDate(msg),
	}
}

// Helper functions
func extractHeader(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, header := range msg.Payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

// extractDate prefers the Date header and falls back to Gmail's internal date
func extractDate(msg *gmail.Message) time.Time {
	if dateStr := extractHeader(msg, "Date"); dateStr != "" {
		if t, err := mail.ParseDate(dateStr); err == nil {
			return t
		}
	}
	if msg != nil && msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	return time.Time{}
}

// ExtractPlainText extracts plain text content from a Gmail message
func ExtractPlainText(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	return extractPart(msg.Payload, "text/plain")
}

// ExtractHTML extracts HTML content from a Gmail message
func ExtractHTML(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	return extractPart(msg.Payload, "text/html")
}

// extractPart returns the first body of the given mime type, depth first
func extractPart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.Body != nil && part.Body.Data != "" && strings.EqualFold(part.MimeType, mimeType) {
		data, err := decodeBody(part.Body.Data)
		if err != nil {
			return ""
		}
		if strings.EqualFold(partHeader(part, "Content-Transfer-Encoding"), "quoted-printable") {
			if decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(string(data)))); err == nil {
				return string(decoded)
			}
		}
		return string(data)
	}
	for _, p := range part.Parts {
		if text := extractPart(p, mimeType); text != "" {
			return text
		}
	}
	return ""
}

func partHeader(part *gmail.MessagePart, name string) string {
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// decodeBody accepts padded and unpadded base64url bodies
func decodeBody(data string) ([]byte, error) {
	if out, err := base64.URLEncoding.DecodeString(data); err == nil {
		return out, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
