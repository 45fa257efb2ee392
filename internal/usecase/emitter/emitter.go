// Package emitter publishes the side effects of committed ledger changes:
// audit entries, investor notifications and operator emails. Every effect is
// best-effort; failures are logged and never reach the caller.
package emitter

import (
	"context"
	"fmt"
	"time"

	"fund-ledger/internal/domain/actor"
	"fund-ledger/internal/domain/audit"
	"fund-ledger/internal/domain/notify"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const effectTimeout = 5 * time.Second

type Notification struct {
	UserID   string
	Title    string
	Message  string
	Category string
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// Event describes one committed change.
type Event struct {
	Actor      actor.Actor
	Action     string
	EntityType string
	EntityID   string
	InvestorID string
	Amount     *decimal.Decimal
	Details    string

	Notify *Notification
	// sent to the ops mailbox when Email.To is empty
	Email *Email
}

type Emitter struct {
	audits   audit.Repository
	notifier notify.Notifier
	mailer   notify.Mailer
	opsEmail string
	log      *zap.Logger
}

// New accepts nil collaborators; the matching effect is skipped.
func New(audits audit.Repository, notifier notify.Notifier, mailer notify.Mailer, opsEmail string, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{audits: audits, notifier: notifier, mailer: mailer, opsEmail: opsEmail, log: log}
}

func Amount(d decimal.Decimal) *decimal.Decimal { return &d }

// Emit must only be called after the change committed and the wallet lock
// was released.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), effectTimeout)
	defer cancel()

	if e.audits != nil {
		entry := &audit.Entry{
			ActorID:    ev.Actor.ID,
			ActorRole:  string(ev.Actor.Role),
			Action:     ev.Action,
			EntityType: ev.EntityType,
			EntityID:   ev.EntityID,
			InvestorID: ev.InvestorID,
			Amount:     ev.Amount,
			Details:    ev.Details,
		}
		if err := e.audits.Create(ctx, entry); err != nil {
			e.log.Warn("audit write failed", zap.String("action", ev.Action),
				zap.String("entity_id", ev.EntityID), zap.Error(err))
		}
	}

	if n := ev.Notify; n != nil && e.notifier != nil {
		if err := e.notifier.Notify(ctx, n.UserID, n.Title, n.Message, n.Category); err != nil {
			e.log.Warn("notification failed", zap.String("action", ev.Action),
				zap.String("user_id", n.UserID), zap.Error(err))
		}
	}

	if m := ev.Email; m != nil {
		to := m.To
		if to == "" {
			to = e.opsEmail
		}
		e.sendEmail(ctx, to, m.Subject, m.Body, ev.Action)
	}
}

// Alert reports an invariant violation: error log flagged for alerting plus an
// ops email.
func (e *Emitter) Alert(ctx context.Context, op, investorID string, err error) {
	if e == nil {
		return
	}
	e.log.Error("ledger invariant violated",
		zap.Bool("alert", true),
		zap.String("op", op),
		zap.String("investor_id", investorID),
		zap.Error(err))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), effectTimeout)
	defer cancel()
	body := fmt.Sprintf("<p>Operation <b>%s</b> on investor <b>%s</b> was aborted.</p><p>%s</p>",
		op, investorID, err.Error())
	e.sendEmail(ctx, e.opsEmail, "[ALERT] ledger invariant violation", body, op)
}

func (e *Emitter) sendEmail(ctx context.Context, to, subject, body, action string) {
	if e.mailer == nil || to == "" {
		return
	}
	if err := e.mailer.SendEmail(ctx, to, subject, body); err != nil {
		e.log.Warn("email failed", zap.String("action", action), zap.String("to", to), zap.Error(err))
	}
}
