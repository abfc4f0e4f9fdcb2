package sender

import (
	"context"
	"fmt"
	"strings"

	"offerbot/pkg/errors"
)

// Chat is one reachable destination on the messaging platform.
type Chat struct {
	ID   string
	Name string
}

// Sender is the messaging-platform capability consumed by the dispatcher.
// The platform session itself (auth, reconnects) lives behind the
// implementation; the core only ever talks through this contract.
type Sender interface {
	// SendText sends a plain text message
	SendText(ctx context.Context, chatID, text string) error

	// SendImage sends image bytes with a caption
	SendImage(ctx context.Context, chatID string, data []byte, mimeType, filename, caption string) error

	// ListChats enumerates the chats the bot can reach
	ListChats(ctx context.Context) ([]Chat, error)
}

// ResolveChat finds a chat ID by display name: exact match first, then
// case-insensitive substring match. Returns a configuration error when no
// chat matches, since the bot has nowhere to send.
func ResolveChat(ctx context.Context, s Sender, name string) (string, error) {
	chats, err := s.ListChats(ctx)
	if err != nil {
		return "", err
	}

	for _, chat := range chats {
		if chat.Name == name {
			return chat.ID, nil
		}
	}

	lowered := strings.ToLower(name)
	for _, chat := range chats {
		if strings.Contains(strings.ToLower(chat.Name), lowered) {
			return chat.ID, nil
		}
	}

	return "", errors.NewConfiguration(fmt.Sprintf("no chat matches %q", name), nil)
}
