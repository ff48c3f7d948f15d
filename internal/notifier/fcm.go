package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type multicaster interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCM pushes banners to registered devices through Firebase Cloud Messaging.
type FCM struct {
	client multicaster
	tokens []string
}

// NewFCM initialises a Firebase app from a service account file. An empty
// path falls back to application default credentials.
func NewFCM(ctx context.Context, credentialsFile string, tokens []string) (*FCM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	return &FCM{client: client, tokens: tokens}, nil
}

func (f *FCM) Name() string { return "fcm" }

func (f *FCM) Send(ctx context.Context, msg Message) error {
	if len(f.tokens) == 0 {
		return nil
	}

	badge := msg.Badge
	aps := &messaging.Aps{Badge: &badge}
	if msg.Sound {
		aps.Sound = "default"
	}
	message := &messaging.MulticastMessage{
		Tokens: f.tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: map[string]string{"badge": strconv.Itoa(msg.Badge)},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: aps},
		},
	}

	resp, err := f.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM multicast message: %w", err)
	}
	if resp.FailureCount == 0 {
		return nil
	}
	var errs []error
	for i, r := range resp.Responses {
		if !r.Success {
			errs = append(errs, fmt.Errorf("token %d: %w", i, r.Error))
		}
	}
	return fmt.Errorf("%d of %d FCM deliveries failed: %w", resp.FailureCount, len(f.tokens), errors.Join(errs...))
}
