package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// DummyNotifier only logs. It is used when no chat is configured.
type DummyNotifier struct {
	log *logrus.Entry
}

func New(log *logrus.Logger) *DummyNotifier {
	return &DummyNotifier{
		log: log.WithField("component", "notifier"),
	}
}

func (n *DummyNotifier) Notify(_ context.Context, message string, contact interface{}) error {
	n.log.Infof("notification for %v: %s", contact, message)
	return nil
}
