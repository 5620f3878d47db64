// Package notify defines the outbound notification capability. The engines
// only decide that a notification is due and to whom; transports live behind
// the Notifier interface.
package notify

import "github.com/evpark/evpark/core/logger"

// Kind labels a notification for metrics and routing.
type Kind string

const (
	KindMail    Kind = "mail"
	KindChannel Kind = "channel"
)

// Message is an outbound mail notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Event is the transport-neutral record of one notification.
type Event struct {
	Kind    Kind
	To      string
	Subject string
	Body    string
	Text    string
}

// Notifier delivers notifications decided by the engines.
type Notifier interface {
	SendMail(msg Message) error
	PostChannel(text string) error
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) SendMail(Message) error   { return nil }
func (Nop) PostChannel(string) error { return nil }

// LogNotifier writes notifications to the log. Default transport for the CLI.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) SendMail(msg Message) error {
	n.Log.Infof("mail to %s: %s", msg.To, msg.Subject)
	return nil
}

func (n LogNotifier) PostChannel(text string) error {
	n.Log.Infof("channel post: %s", text)
	return nil
}

// Multi fans one notification out to several transports, returning the
// first error.
type Multi []Notifier

func (m Multi) SendMail(msg Message) error {
	var first error
	for _, n := range m {
		if err := n.SendMail(msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) PostChannel(text string) error {
	var first error
	for _, n := range m {
		if err := n.PostChannel(text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
