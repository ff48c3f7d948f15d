package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/waterme/internal/config"
	"github.com/julianstephens/waterme/internal/keyring"
	"github.com/julianstephens/waterme/internal/notifier"
)

// telegramToken is swapped in tests.
var telegramToken = keyring.TelegramToken

// BuildSender assembles the enabled delivery channels. It returns nil when
// none are enabled.
func BuildSender(ctx context.Context, cfg config.NotifyConfig) (notifier.Sender, error) {
	var senders notifier.Multi

	if cfg.Tray.Enabled {
		senders = append(senders, notifier.NewTray())
	}

	if cfg.Telegram.Enabled {
		token := cfg.Telegram.BotToken
		if token == "" {
			t, err := telegramToken()
			if err != nil {
				if errors.Is(err, keyring.ErrNotFound) {
					return nil, errors.New("telegram is enabled but no bot token is configured or stored in the keyring")
				}
				return nil, fmt.Errorf("failed to read telegram token: %w", err)
			}
			token = t
		}
		senders = append(senders, notifier.NewTelegram(token, cfg.Telegram.ChatID))
	}

	if cfg.FCM.Enabled {
		fcm, err := notifier.NewFCM(ctx, cfg.FCM.CredentialsFile, cfg.FCM.Tokens)
		if err != nil {
			return nil, err
		}
		senders = append(senders, fcm)
	}

	switch len(senders) {
	case 0:
		return nil, nil
	case 1:
		return senders[0], nil
	}
	return senders, nil
}
