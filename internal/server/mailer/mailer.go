// Package mailer composes and dispatches the verification and recovery
// emails. Composition (links, bodies) is separate from delivery so the
// transport can be SES in production and a log sink in development.
package mailer

import (
	"context"
	"fmt"
)

// Mailer sends account emails. Failures are reported to the caller and
// never retried here.
type Mailer interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendRecovery(ctx context.Context, email, name, token string) error
}

// Message is a fully rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers a rendered Message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher is the Mailer used by the services: it renders with a Composer
// and hands the result to a Transport.
type Dispatcher struct {
	composer  *Composer
	transport Transport
}

func NewDispatcher(composer *Composer, transport Transport) *Dispatcher {
	return &Dispatcher{composer: composer, transport: transport}
}

func (d *Dispatcher) SendVerification(ctx context.Context, email, name, token string) error {
	msg, err := d.composer.Verification(email, name, token)
	if err != nil {
		return fmt.Errorf("compose verification email: %w", err)
	}
	return d.send(ctx, msg)
}

func (d *Dispatcher) SendRecovery(ctx context.Context, email, name, token string) error {
	msg, err := d.composer.Recovery(email, name, token)
	if err != nil {
		return fmt.Errorf("compose recovery email: %w", err)
	}
	return d.send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	if err := d.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
