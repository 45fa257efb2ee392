package notify

import "context"

// Notifier delivers an in-app notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, category string) error
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
