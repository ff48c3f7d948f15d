package config

import (
	"github.com/julianstephens/waterme/internal/constants"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"debug": false,
		"daemon": map[string]interface{}{
			"quiet_period":       constants.DefaultQuietPeriod.String(),
			"run_timeout":        constants.DefaultRunTimeout.String(),
			"delivery_interval":  constants.DefaultDeliveryInterval.String(),
			"day_check_interval": "1m",
			"watch":              true,
		},
		"api": map[string]interface{}{
			"enabled":  false,
			"listen":   "127.0.0.1:7717",
			"icon_dir": "~/.config/waterme/icons",
		},
		"notify": map[string]interface{}{
			"tray": map[string]interface{}{
				"enabled": true,
			},
			"telegram": map[string]interface{}{
				"enabled":   false,
				"chat_id":   "",
				"bot_token": "", // falls back to the keyring
			},
			"fcm": map[string]interface{}{
				"enabled":          false,
				"credentials_file": "",
				"tokens":           []string{},
			},
		},
	}
}
