package notifymock

import (
	"context"
	"sync"

	"fund-ledger/internal/domain/notify"
)

var (
	_ notify.Notifier = (*Notifier)(nil)
	_ notify.Mailer   = (*Mailer)(nil)
)

type Notification struct {
	UserID, Title, Message, Category string
}

// Notifier records every call and returns Err.
type Notifier struct {
	Err error

	mu    sync.Mutex
	calls []Notification
}

func (n *Notifier) Notify(_ context.Context, userID, title, message, category string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Notification{UserID: userID, Title: title, Message: message, Category: category})
	return n.Err
}

func (n *Notifier) Calls() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.calls...)
}

type Email struct {
	To, Subject, Body string
}

// Mailer records every call and returns Err.
type Mailer struct {
	Err error

	mu    sync.Mutex
	calls []Email
}

func (m *Mailer) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Email{To: to, Subject: subject, Body: body})
	return m.Err
}

func (m *Mailer) Calls() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.calls...)
}
