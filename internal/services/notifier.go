package services

import (
	"github.com/gen2brain/beeep"
)

// Notifier delivers desktop notifications and the flip sound.
type Notifier interface {
	Notify(title, body string) error
	Beep() error
}

type beeepNotifier struct{}

func (beeepNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

func (beeepNotifier) Beep() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// quietNotifier keeps the flip sound but drops desktop notifications.
type quietNotifier struct {
	beeepNotifier
}

func (quietNotifier) Notify(string, string) error { return nil }

func newNotifier(notifications bool) Notifier {
	if !notifications {
		return quietNotifier{}
	}
	return beeepNotifier{}
}
