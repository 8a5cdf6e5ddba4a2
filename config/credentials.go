package config

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	PlaceholderBotToken = "YOUR_BOT_TOKEN_HERE"
	PlaceholderChatID   = "YOUR_CHAT_ID_HERE"
)

var ErrIncompleteCredentials = errors.New("credentials: telegram botToken and chatId are required")

// Credentials mirrors the on-disk document:
//
//	{"telegram": {"botToken": "...", "chatId": "..."}}
type Credentials struct {
	Telegram TelegramCredentials `koanf:"telegram"`
}

type TelegramCredentials struct {
	BotToken string `koanf:"botToken"`
	ChatID   string `koanf:"chatId"`
}

func PlaceholderCredentials() Credentials {
	return Credentials{Telegram: TelegramCredentials{
		BotToken: PlaceholderBotToken,
		ChatID:   PlaceholderChatID,
	}}
}

// Placeholder reports whether either value is still a placeholder.
func (c Credentials) Placeholder() bool {
	return c.Telegram.BotToken == PlaceholderBotToken || c.Telegram.ChatID == PlaceholderChatID
}

// LoadCredentials parses the credentials document at path. On any failure it
// returns the placeholder credentials together with the error; fields that
// are present are kept.
func LoadCredentials(path string) (Credentials, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return PlaceholderCredentials(), fmt.Errorf("credentials: load %s: %w", path, err)
	}

	var c Credentials
	if err := k.Unmarshal("", &c); err != nil {
		return PlaceholderCredentials(), fmt.Errorf("credentials: decode %s: %w", path, err)
	}

	var err error
	if c.Telegram.BotToken == "" {
		c.Telegram.BotToken = PlaceholderBotToken
		err = ErrIncompleteCredentials
	}
	if c.Telegram.ChatID == "" {
		c.Telegram.ChatID = PlaceholderChatID
		err = ErrIncompleteCredentials
	}
	return c, err
}
