package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
)

type flakySender struct {
	name     string
	failures int
	calls    int
}

func (f *flakySender) Name() string { return f.name }

func (f *flakySender) Send(ctx context.Context, msg Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("temporarily unavailable")
	}
	return nil
}

func TestMulti_RetriesEachSender(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	recovers := &flakySender{name: "recovers", failures: 2}
	broken := &flakySender{name: "broken", failures: 100}
	healthy := &flakySender{name: "healthy"}

	err := Multi{recovers, broken, healthy}.Send(context.Background(), Message{Body: "water"})
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected error naming the broken sender, got %v", err)
	}
	if strings.Contains(err.Error(), "recovers") {
		t.Errorf("a sender that recovered should not be reported: %v", err)
	}
	if recovers.calls != 3 {
		t.Errorf("recovers called %d times, want 3", recovers.calls)
	}
	if healthy.calls != 1 {
		t.Errorf("healthy called %d times, want 1", healthy.calls)
	}
}

func TestTelegram_Send(t *testing.T) {
	var got telegramSendRequest
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Text == "waterme\nfail" {
			w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tg := NewTelegram("TOKEN", "42")
	tg.baseURL = server.URL

	if err := tg.Send(context.Background(), Message{Title: "waterme", Body: "‘Fern’ needs attention today."}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/botTOKEN/sendMessage" {
		t.Errorf("path = %s", path)
	}
	if got.ChatID != "42" || !got.DisableNotification {
		t.Errorf("request = %+v", got)
	}

	err := tg.Send(context.Background(), Message{Title: "waterme", Body: "fail", Sound: true})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API error, got %v", err)
	}
}

type fakeMulticaster struct {
	msg  *messaging.MulticastMessage
	resp *messaging.BatchResponse
}

func (f *fakeMulticaster) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.msg = msg
	return f.resp, nil
}

func TestFCM_Send(t *testing.T) {
	fake := &fakeMulticaster{resp: &messaging.BatchResponse{
		SuccessCount: 1,
		FailureCount: 1,
		Responses: []*messaging.SendResponse{
			{Success: true},
			{Success: false, Error: errors.New("unregistered")},
		},
	}}
	f := &FCM{client: fake, tokens: []string{"a", "b"}}

	err := f.Send(context.Background(), Message{Title: "waterme", Body: "water", Badge: 4, Sound: true})
	if err == nil || !strings.Contains(err.Error(), "unregistered") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if fake.msg.Data["badge"] != "4" {
		t.Errorf("badge data = %q", fake.msg.Data["badge"])
	}
	if *fake.msg.APNS.Payload.Aps.Badge != 4 || fake.msg.APNS.Payload.Aps.Sound != "default" {
		t.Errorf("aps = %+v", fake.msg.APNS.Payload.Aps)
	}

	empty := &FCM{client: fake}
	if err := empty.Send(context.Background(), Message{Body: "x"}); err != nil {
		t.Errorf("no tokens should be a no-op, got %v", err)
	}
}
