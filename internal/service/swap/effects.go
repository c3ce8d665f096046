package swap

import (
	"context"
	"fmt"

	"skillswap/internal/notify"
	"skillswap/pkg/logger"
)

// PubSub is the real-time capability the lifecycle needs: push a payload
// to every channel a user currently has open. Satisfied by signaling.Hub.
type PubSub interface {
	SendToUser(username string, payload any)
}

// NotificationPayload is the structured message pushed to the proposer's
// notification channels when a proposal is accepted.
type NotificationPayload struct {
	Type       string `json:"type"`
	ProposalID int64  `json:"proposal_id"`
	Message    string `json:"message"`
	URL        string `json:"url"`
}

// Effect is a side effect emitted by a state transition. Transitions
// return effects instead of performing I/O so the core stays testable;
// the Dispatcher executes them after the transition commits.
type Effect interface {
	effect()
}

type PushEffect struct {
	Username string
	Payload  NotificationPayload
}

type EmailEffect struct {
	To      string
	Subject string
	Body    string
}

func (PushEffect) effect()  {}
func (EmailEffect) effect() {}

// Dispatcher executes effects best-effort. A delivery failure is logged
// and swallowed; it never rolls back or blocks the transition that
// produced the effect.
type Dispatcher struct {
	pubsub   PubSub
	notifier notify.Notifier
	logger   logger.Logger
}

func NewDispatcher(pubsub PubSub, notifier notify.Notifier, logger logger.Logger) *Dispatcher {
	return &Dispatcher{
		pubsub:   pubsub,
		notifier: notifier,
		logger:   logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, effects []Effect) {
	for _, e := range effects {
		switch eff := e.(type) {
		case PushEffect:
			d.pubsub.SendToUser(eff.Username, eff.Payload)
		case EmailEffect:
			if err := d.notifier.Send(ctx, eff.To, eff.Subject, eff.Body); err != nil {
				d.logger.Warn(ctx, "email delivery failed",
					logger.Field{Key: "to", Value: eff.To},
					logger.Field{Key: "error", Value: err},
				)
			}
		default:
			d.logger.Warn(ctx, "unknown effect", logger.Field{Key: "effect", Value: fmt.Sprintf("%T", e)})
		}
	}
}
