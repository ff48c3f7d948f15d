package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/keyring"
	"github.com/julianstephens/waterme/internal/storage/postgres"
)

// secretName maps the --telegram switch to the keyring entry it addresses.
func secretName(telegram bool) (user, label string) {
	if telegram {
		return constants.TelegramKeyringUser, "Telegram bot token"
	}
	return constants.DefaultKeyringUser, "Connection string"
}

// KeyringSetCmd stores the database connection string, or the Telegram bot
// token, in the OS keyring.
type KeyringSetCmd struct {
	Secret   string `arg:"" help:"PostgreSQL connection string, or the bot token with --telegram."`
	Telegram bool   `help:"Store a Telegram bot token instead of a connection string."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	user, label := secretName(cmd.Telegram)
	if !cmd.Telegram {
		if !cli.IsPostgres(cmd.Secret) {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Secret); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(user, cmd.Secret); err != nil {
		return err
	}
	fmt.Printf("✓ %s stored in OS keyring\n", label)
	if !cmd.Telegram {
		fmt.Printf("  Run %s with --db keyring to use it\n", constants.AppName)
	}
	return nil
}

type KeyringGetCmd struct {
	Telegram bool `help:"Show the Telegram bot token instead of the connection string."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	user, label := secretName(cmd.Telegram)
	secret, err := keyring.Get(user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use '%s keyring set' to store one", strings.ToLower(label), constants.AppName)
		}
		return err
	}
	if cmd.Telegram {
		fmt.Println(maskToken(secret))
	} else {
		fmt.Println(maskPassword(secret))
	}
	return nil
}

type KeyringDeleteCmd struct {
	Telegram bool `help:"Delete the Telegram bot token instead of the connection string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	user, label := secretName(cmd.Telegram)
	if err := keyring.Delete(user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", strings.ToLower(label))
		}
		return err
	}
	fmt.Printf("✓ %s deleted from OS keyring\n", label)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")
	for _, telegram := range []bool{false, true} {
		user, label := secretName(telegram)
		if _, err := keyring.Get(user); err == nil {
			fmt.Printf("✓ %s is stored in keyring\n", label)
		} else if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("ℹ No %s stored in keyring\n", strings.ToLower(label))
		}
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	if !strings.Contains(connStr, "password=") {
		return connStr
	}
	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}

// maskToken keeps the bot id half of a Telegram token visible.
func maskToken(token string) string {
	if id, _, ok := strings.Cut(token, ":"); ok {
		return id + ":****"
	}
	return "****"
}
