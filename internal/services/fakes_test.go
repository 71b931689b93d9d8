package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

var errLookupDown = errors.New("lookup unavailable")

type recordedNotification struct {
	usernames []string
	event     Event
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (f *fakeNotifier) Notify(_ context.Context, usernames []string, event Event) {
	f.sent = append(f.sent, recordedNotification{usernames: usernames, event: event})
}
