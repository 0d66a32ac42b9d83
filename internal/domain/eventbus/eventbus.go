package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus wraps a synchronous event bus together with an async worker pool. Each
// application assembles its own instance; there is no package singleton.
type Bus struct {
	sync  evbus.Bus
	async *AsyncEventBus
}

func New(workers int) *Bus {
	async := NewAsyncEventBus(workers)
	async.Start()
	return &Bus{
		sync:  evbus.New(),
		async: async,
	}
}

// Publish delivers to subscribers on the calling goroutine.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.sync.Publish(topic, args...)
}

// PublishAsync hands the event to the worker pool and returns immediately.
func (b *Bus) PublishAsync(topic string, args ...interface{}) {
	b.async.PublishAsync(topic, args...)
}

func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.sync.Subscribe(topic, fn)
}

func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.async.SubscribeAsync(topic, fn)
}

func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.sync.Unsubscribe(topic, fn)
}

func (b *Bus) HasCallback(topic string) bool {
	return b.sync.HasCallback(topic) || b.async.HasCallback(topic)
}

// Shutdown stops the async workers. Pending queued events are dropped.
func (b *Bus) Shutdown() {
	b.async.Stop()
}
