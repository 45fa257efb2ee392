package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisNotifier_PublishesJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, "test_channel")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n := NewRedisNotifier(rdb, "test_channel")
	if err := n.Notify(ctx, "user-1", "Withdrawal processed", "50000.00 credited", "withdrawal"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	var got Message
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("bad payload %q: %v", msg.Payload, err)
	}
	if got.UserID != "user-1" || got.Category != "withdrawal" || got.Title != "Withdrawal processed" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
}

func TestRedisNotifier_DefaultChannel(t *testing.T) {
	n := NewRedisNotifier(nil, "")
	if n.channel != DefaultChannel {
		t.Fatalf("channel = %q, want %q", n.channel, DefaultChannel)
	}
}

func TestRedisNotifier_PublishErrorSurfaces(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	n := NewRedisNotifier(rdb, "")
	if err := n.Notify(context.Background(), "u", "t", "m", "c"); err == nil {
		t.Fatalf("expected publish error with redis down")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("ops@fund.test", "admin@fund.test", "New withdrawal", "<p>hi</p>"))
	for _, want := range []string{
		"From: ops@fund.test\r\n",
		"To: admin@fund.test\r\n",
		"Subject: New withdrawal\r\n",
		"Content-Type: text/html; charset=\"utf-8\"\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildMessage_StripsLineBreaksFromHeaders(t *testing.T) {
	msg := string(buildMessage("ops@fund.test", "admin@fund.test\r\nBcc: x@evil.test",
		"Withdrawal\nBcc: y@evil.test", "<p>hi</p>"))
	head := msg[:strings.Index(msg, "\r\n\r\n")]
	if strings.Contains(head, "\r\nBcc:") {
		t.Fatalf("header injection survived:\n%s", msg)
	}
	if !strings.Contains(head, "To: admin@fund.test Bcc: x@evil.test\r\n") {
		t.Fatalf("recipient not flattened:\n%s", msg)
	}
	if !strings.Contains(head, "Subject: Withdrawal Bcc: y@evil.test\r\n") {
		t.Fatalf("subject not flattened:\n%s", msg)
	}
}

func TestSMTPMailer_RejectsRecipientWithLineBreak(t *testing.T) {
	m := NewSMTPMailer("127.0.0.1", "1", "u", "p")
	err := m.SendEmail(context.Background(), "a@fund.test\nRCPT TO:<b@evil.test>", "s", "b")
	if !errors.Is(err, errHeaderInjection) {
		t.Fatalf("want errHeaderInjection, got %v", err)
	}
}

func TestNopMailer(t *testing.T) {
	if err := (NopMailer{}).SendEmail(context.Background(), "a", "b", "c"); err != nil {
		t.Fatalf("NopMailer returned %v", err)
	}
}
