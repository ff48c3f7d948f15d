// Package notifier delivers notification banners to the places a user
// actually sees them: the desktop tray app, Telegram and FCM devices.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/waterme/internal/constants"
)

// Message is a single banner.
type Message struct {
	Title string
	Body  string
	Badge int
	Sound bool
}

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

var retryDelay = constants.NotifyRetryDelay

// Multi fans a message out to every sender. Each sender is retried on its
// own; one failing sender does not stop the others.
type Multi []Sender

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := sendWithRetry(ctx, s, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func sendWithRetry(ctx context.Context, s Sender, msg Message) error {
	var err error
	for attempt := 0; attempt < constants.NotifyMaxRetries; attempt++ {
		if err = s.Send(ctx, msg); err == nil {
			return nil
		}
		if attempt == constants.NotifyMaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay * time.Duration(attempt+1)):
		}
	}
	return err
}
