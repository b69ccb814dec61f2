package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestPollerStartRequiresToken(t *testing.T) {
	p := NewPoller(nil, &captured{}, nil)
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil, want missing token error")
	}
}

func TestPollerUpdateOutlivesShutdown(t *testing.T) {
	c := &captured{}
	p := NewPoller(nil, c, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.dispatch(ctx, tgbotapi.Update{UpdateID: 1})

	if len(c.updates) != 1 {
		t.Fatalf("updates = %d", len(c.updates))
	}
	if c.ctxErr != nil {
		t.Fatalf("handler saw cancelled context: %v", c.ctxErr)
	}
}
