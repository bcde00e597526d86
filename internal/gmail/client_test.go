package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ajramos/hostinbox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// newTestClient points a real gmail.Service at an httptest server
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return NewClient(svc)
}

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func guestMessage(id, from, body string) *gmail.Message {
	return &gmail.Message{
		Id:           id,
		InternalDate: 1700000000000,
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "To", Value: "Host <host@example.com>"},
				{Name: "Subject", Value: "Question"},
				{Name: "Date", Value: "Sat, 01 Mar 2025 09:30:00 +0000"},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode(body)}},
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode("<p>" + body + "</p>")}},
			},
		},
	}
}

func TestNewClient(t *testing.T) {
	service := &gmail.Service{}
	client := NewClient(service)

	assert.NotNil(t, client)
	assert.Equal(t, service, client.Service)
}

func TestClient_NotInitialized(t *testing.T) {
	ctx := context.Background()

	var nilClient *Client
	_, err := nilClient.SearchMessages(ctx, "x", 1)
	assert.ErrorContains(t, err, "gmail client not initialized")

	_, err = NewClient(nil).GetMessage(ctx, "id")
	assert.ErrorContains(t, err, "gmail client not initialized")
}

func TestClient_GetMessage_EmptyID(t *testing.T) {
	client := NewClient(&gmail.Service{})

	_, err := client.GetMessage(context.Background(), "  ")
	assert.ErrorContains(t, err, "message ID cannot be empty")
}

func TestClient_SearchMessages(t *testing.T) {
	var gotQuery, gotMax string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/messages", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotMax = r.URL.Query().Get("maxResults")
		_ = json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{
			Messages: []*gmail.Message{{Id: "a"}, {Id: "b"}},
		})
	})

	refs, err := client.SearchMessages(context.Background(), `in:inbox "Lake House"`, 10)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].Id)
	assert.Equal(t, `in:inbox "Lake House"`, gotQuery)
	assert.Equal(t, "10", gotMax)
}

func TestClient_SearchMessages_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"bad token"}}`, http.StatusUnauthorized)
	})

	_, err := client.SearchMessages(context.Background(), "q", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not search messages")
}

func TestClient_GetMessageWithContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/messages/m1", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("format"))
		_ = json.NewEncoder(w).Encode(guestMessage("m1", "Jane Smith <jane@example.com>", "Is parking available?"))
	})

	msg, err := client.GetMessageWithContent(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Is parking available?", msg.PlainText)
	assert.Equal(t, "<p>Is parking available?</p>", msg.HTML)
	assert.Equal(t, "Question", msg.Subject)
	assert.Equal(t, "Jane Smith <jane@example.com>", msg.From)
	assert.True(t, msg.Date.Equal(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)))
}

func TestExtractHeader(t *testing.T) {
	msg := guestMessage("m", "a@example.com", "hi")

	assert.Equal(t, "Question", extractHeader(msg, "subject"))
	assert.Empty(t, extractHeader(msg, "X-Missing"))
	assert.Empty(t, extractHeader(nil, "Subject"))
	assert.Empty(t, extractHeader(&gmail.Message{}, "Subject"))
}

func TestExtractDate(t *testing.T) {
	assert.True(t, extractDate(nil).IsZero())
	assert.True(t, extractDate(&gmail.Message{}).IsZero())

	internal := &gmail.Message{InternalDate: 1700000000000, Payload: &gmail.MessagePart{}}
	assert.Equal(t, int64(1700000000), extractDate(internal).Unix())

	badHeader := &gmail.Message{InternalDate: 1700000000000, Payload: &gmail.MessagePart{
		Headers: []*gmail.MessagePartHeader{{Name: "Date", Value: "yesterday"}},
	}}
	assert.Equal(t, int64(1700000000), extractDate(badHeader).Unix())
}

func TestExtractBodies(t *testing.T) {
	assert.Empty(t, ExtractPlainText(nil))
	assert.Empty(t, ExtractHTML(&gmail.Message{}))

	nested := &gmail.Message{Payload: &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("unpadded?"))}},
			},
		}},
	}}
	assert.Equal(t, "unpadded?", ExtractPlainText(nested))
	assert.Empty(t, ExtractHTML(nested))

	qp := &gmail.Message{Payload: &gmail.MessagePart{
		MimeType: "text/plain",
		Headers:  []*gmail.MessagePartHeader{{Name: "Content-Transfer-Encoding", Value: "quoted-printable"}},
		Body:     &gmail.MessagePartBody{Data: encode("caf=C3=A9 at 5")},
	}}
	assert.Equal(t, "café at 5", ExtractPlainText(qp))

	broken := &gmail.Message{Payload: &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: "!!not base64!!"},
	}}
	assert.Empty(t, ExtractPlainText(broken))
}

func TestGuestSource_FetchMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/gmail/v1/users/me/messages":
			assert.Equal(t, `in:inbox "Lake House"`, r.URL.Query().Get("q"))
			assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
			_ = json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "m1"}, {Id: "empty"}},
			})
		case strings.HasSuffix(r.URL.Path, "/m1"):
			_ = json.NewEncoder(w).Encode(guestMessage("m1", `"Jane Smith" <jane@example.com>`, "Is parking\r\navailable?"))
		case strings.HasSuffix(r.URL.Path, "/empty"):
			_ = json.NewEncoder(w).Encode(&gmail.Message{Id: "empty", Payload: &gmail.MessagePart{MimeType: "text/plain"}})
		default:
			http.NotFound(w, r)
		}
	})

	src := NewGuestSource(client, `in:inbox "{{property}}"`, 5)
	assert.Equal(t, model.SourceGmail, src.Name())

	msgs, err := src.FetchMessages(context.Background(), model.Property{ID: "p1", Name: "Lake House"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	m := msgs[0]
	assert.Equal(t, "Jane Smith", m.Sender)
	assert.Equal(t, "host@example.com", m.Receiver)
	assert.Equal(t, "Is parking\navailable?", m.Content)
	assert.Equal(t, model.SourceGmail, m.Source)
	assert.Equal(t, int64(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC).Unix()), m.Timestamp.Seconds)
}

func TestGuestSource_FetchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gmail/v1/users/me/messages" {
			_ = json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{Messages: []*gmail.Message{{Id: "gone"}}})
			return
		}
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	})

	_, err := NewGuestSource(client, "q", 0).FetchMessages(context.Background(), model.Property{Name: "Loft"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch gone")
}

func TestToGuestMessage(t *testing.T) {
	htmlOnly := &Message{From: "bob@example.com", HTML: "<div>Late <b>check-out</b>?</div>"}
	m, ok := ToGuestMessage(htmlOnly)
	require.True(t, ok)
	assert.Equal(t, "Late check-out?", m.Content)
	assert.Equal(t, "Host", m.Receiver)
	assert.True(t, m.Timestamp.IsZero())

	_, ok = ToGuestMessage(&Message{From: "x@example.com", PlainText: "  \n "})
	assert.False(t, ok)
}

func BenchmarkExtractPlainText(b *testing.B) {
	msg := guestMessage("m", "a@example.com", strings.Repeat("hello ", 200))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ExtractPlainText(msg)
	}
}
