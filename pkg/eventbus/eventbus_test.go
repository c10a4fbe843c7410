package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pinged struct{}

func (pinged) Name() string { return "pinged" }

func TestBus_PublishReachesEveryListener(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32

	bus.Subscribe("pinged", func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})
	bus.Subscribe("pinged", func(ctx context.Context, e Event) error {
		calls.Add(1)
		return errors.New("ignored")
	})
	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		calls.Add(100)
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
}

func TestBus_NilIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), pinged{})
		bus.Wait()
	})
}

func TestBus_ListenerOutlivesCancelledRequest(t *testing.T) {
	bus := New(zap.NewNop())
	var sawErr atomic.Bool

	bus.Subscribe("pinged", func(ctx context.Context, e Event) error {
		sawErr.Store(ctx.Err() != nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pinged{})
	bus.Wait()

	assert.False(t, sawErr.Load())
}
