package payment

import (
	"context"
	"errors"
	"log"
)

var ErrDispatchFailed = errors.New("failed to dispatch one-time code")

// Dispatcher delivers a one-time code to the payer's registered contact.
// There is no delivery confirmation beyond the returned error.
type Dispatcher interface {
	Send(ctx context.Context, destination, code string) error
}

// LogDispatcher simulates delivery by writing the code to the process log.
// Stands in for a real email/SMS gateway.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, destination, code string) error {
	log.Printf("one-time code for %s: %s", destination, code)
	return nil
}
