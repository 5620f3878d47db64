package notify

import (
	"github.com/evpark/evpark/core/logger"
	"github.com/evpark/evpark/internal/eventbus"
)

// BusNotifier publishes notifications on a typed event bus so several
// transports (log, channel post, metrics) can subscribe at once.
type BusNotifier struct {
	Bus *eventbus.Bus[Event]
}

// NewBusNotifier creates a BusNotifier with a fresh bus.
func NewBusNotifier() *BusNotifier {
	return &BusNotifier{Bus: eventbus.New[Event]()}
}

func (n *BusNotifier) SendMail(msg Message) error {
	n.Bus.Publish(Event{Kind: KindMail, To: msg.To, Subject: msg.Subject, Body: msg.Body})
	return nil
}

func (n *BusNotifier) PostChannel(text string) error {
	n.Bus.Publish(Event{Kind: KindChannel, Text: text})
	return nil
}

// Forward drains events from the bus into the given notifier until the bus
// closes. Run it on its own goroutine.
func Forward(sub <-chan Event, dst Notifier, log logger.Logger) {
	for ev := range sub {
		var err error
		switch ev.Kind {
		case KindMail:
			err = dst.SendMail(Message{To: ev.To, Subject: ev.Subject, Body: ev.Body})
		case KindChannel:
			err = dst.PostChannel(ev.Text)
		}
		if err != nil && log != nil {
			log.Errorf("forward %s notification: %v", ev.Kind, err)
		}
	}
}
