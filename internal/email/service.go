package email

import (
	"context"
)

type Service interface {
	SendWelcome(ctx context.Context, email string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// Noop satisfies Service when email delivery is disabled.
type Noop struct{}

func (Noop) SendWelcome(context.Context, string, string) error  { return nil }
func (Noop) SendCustom(context.Context, string, string, string) error { return nil }
