package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"offerbot/pkg/errors"
)

// TelegramSender implements Sender over the Telegram Bot API.
type TelegramSender struct {
	client *http.Client
	apiURL string
}

// Ensure TelegramSender implements Sender
var _ Sender = (*TelegramSender)(nil)

// NewTelegramSender creates a sender for the given bot token.
func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL: "https://api.telegram.org/bot" + token,
	}
}

// apiResponse is the envelope every Bot API method answers with.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// tgChat describes a chat (private or group).
type tgChat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// tgUpdate describes one getUpdates entry.
type tgUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat tgChat `json:"chat"`
	} `json:"message"`
	MyChatMember *struct {
		Chat tgChat `json:"chat"`
	} `json:"my_chat_member"`
}

// SendText sends a plain text message.
func (s *TelegramSender) SendText(ctx context.Context, chatID, text string) error {
	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.NewSend("telegram", "failed to marshal sendMessage payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/sendMessage", bytes.NewReader(data))
	if err != nil {
		return errors.NewSend("telegram", "failed to create sendMessage request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, nil)
}

// SendImage uploads image bytes via sendPhoto with the caption attached.
func (s *TelegramSender) SendImage(ctx context.Context, chatID string, data []byte, mimeType, filename, caption string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	writer.WriteField("chat_id", chatID)
	writer.WriteField("caption", caption)
	writer.WriteField("parse_mode", "Markdown")

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return errors.NewSend("telegram", "failed to create photo part", err)
	}
	if _, err := part.Write(data); err != nil {
		return errors.NewSend("telegram", "failed to write photo bytes", err)
	}
	if err := writer.Close(); err != nil {
		return errors.NewSend("telegram", "failed to finalize upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/sendPhoto", &body)
	if err != nil {
		return errors.NewSend("telegram", "failed to create sendPhoto request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return s.do(req, nil)
}

// ListChats enumerates chats seen in recent updates. A bot cannot list every
// chat it belongs to; messaging the bot or adding it to the group makes the
// chat discoverable here.
func (s *TelegramSender) ListChats(ctx context.Context) ([]Chat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/getUpdates?limit=100", nil)
	if err != nil {
		return nil, errors.NewSend("telegram", "failed to create getUpdates request", err)
	}

	var updates []tgUpdate
	if err := s.do(req, &updates); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var chats []Chat
	for _, u := range updates {
		var c *tgChat
		switch {
		case u.Message != nil:
			c = &u.Message.Chat
		case u.MyChatMember != nil:
			c = &u.MyChatMember.Chat
		default:
			continue
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		chats = append(chats, Chat{
			ID:   strconv.FormatInt(c.ID, 10),
			Name: chatDisplayName(*c),
		})
	}
	return chats, nil
}

func chatDisplayName(c tgChat) string {
	if c.Title != "" {
		return c.Title
	}
	if c.Username != "" {
		return c.Username
	}
	name := c.FirstName
	if c.LastName != "" {
		name += " " + c.LastName
	}
	return name
}

// do executes the request and decodes the Bot API envelope, unmarshalling
// the result into out when non-nil.
func (s *TelegramSender) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.NewSend("telegram", "request failed", err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.NewSend("telegram", fmt.Sprintf("unreadable response (status %d)", resp.StatusCode), err)
	}
	if resp.StatusCode >= 400 || !envelope.OK {
		return errors.NewSend("telegram", fmt.Sprintf("api status %d: %s", resp.StatusCode, envelope.Description), nil)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return errors.NewSend("telegram", "failed to decode result", err)
		}
	}
	return nil
}
