package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestCheck(t *testing.T) {
	if got := NewService(nil).Check(context.Background()); !got.OK || got.Database != "memory" {
		t.Fatalf("unexpected memory status %+v", got)
	}
	up := NewService(pingFunc(func(context.Context) error { return nil }))
	if got := up.Check(context.Background()); !got.OK || got.Database != "up" {
		t.Fatalf("unexpected up status %+v", got)
	}
	down := NewService(pingFunc(func(context.Context) error { return errors.New("refused") }))
	if got := down.Check(context.Background()); got.OK || got.Database != "down" {
		t.Fatalf("unexpected down status %+v", got)
	}
}
