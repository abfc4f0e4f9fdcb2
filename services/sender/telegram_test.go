package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(server *httptest.Server) *TelegramSender {
	return &TelegramSender{
		client: &http.Client{Timeout: 5 * time.Second},
		apiURL: server.URL,
	}
}

func TestSendText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "12345", payload["chat_id"])
		assert.Equal(t, "🏷️ *Fone*\nR$ 99,90", payload["text"])
		assert.Equal(t, "Markdown", payload["parse_mode"])

		w.Write([]byte(`{"ok": true, "result": {}}`))
	}))
	defer server.Close()

	s := newTestSender(server)
	err := s.SendText(context.Background(), "12345", "🏷️ *Fone*\nR$ 99,90")
	assert.NoError(t, err)
}

func TestSendTextAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	}))
	defer server.Close()

	s := newTestSender(server)
	err := s.SendText(context.Background(), "12345", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendPhoto", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "12345", r.FormValue("chat_id"))
		assert.Equal(t, "legenda", r.FormValue("caption"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "abc.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

		w.Write([]byte(`{"ok": true, "result": {}}`))
	}))
	defer server.Close()

	s := newTestSender(server)
	err := s.SendImage(context.Background(), "12345", []byte{0x89, 'P', 'N', 'G'}, "image/png", "abc.png", "legenda")
	assert.NoError(t, err)
}

func TestListChats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getUpdates", r.URL.Path)

		w.Write([]byte(`{"ok": true, "result": [
			{"update_id": 1, "message": {"chat": {"id": -100, "type": "group", "title": "Promoções da Loja"}}},
			{"update_id": 2, "message": {"chat": {"id": -100, "type": "group", "title": "Promoções da Loja"}}},
			{"update_id": 3, "message": {"chat": {"id": 42, "type": "private", "first_name": "Ana", "last_name": "Souza"}}}
		]}`))
	}))
	defer server.Close()

	s := newTestSender(server)
	chats, err := s.ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, Chat{ID: "-100", Name: "Promoções da Loja"}, chats[0])
	assert.Equal(t, Chat{ID: "42", Name: "Ana Souza"}, chats[1])
}

// FakeSender returns canned chats for ResolveChat tests
type FakeSender struct {
	chats []Chat
}

// Ensure FakeSender implements Sender
var _ Sender = (*FakeSender)(nil)

func (f *FakeSender) SendText(ctx context.Context, chatID, text string) error {
	return nil
}

func (f *FakeSender) SendImage(ctx context.Context, chatID string, data []byte, mimeType, filename, caption string) error {
	return nil
}

func (f *FakeSender) ListChats(ctx context.Context) ([]Chat, error) {
	return f.chats, nil
}

func TestResolveChat(t *testing.T) {
	s := &FakeSender{chats: []Chat{
		{ID: "-1", Name: "Ofertas"},
		{ID: "-2", Name: "Ofertas Relâmpago"},
	}}

	// Exact match wins even when a substring match comes first
	id, err := ResolveChat(context.Background(), s, "Ofertas Relâmpago")
	require.NoError(t, err)
	assert.Equal(t, "-2", id)

	// Substring match, case-insensitive
	id, err = ResolveChat(context.Background(), s, "relâmpago")
	require.NoError(t, err)
	assert.Equal(t, "-2", id)

	_, err = ResolveChat(context.Background(), s, "inexistente")
	assert.Error(t, err)
}
