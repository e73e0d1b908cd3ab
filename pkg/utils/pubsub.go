package utils

import (
	"github.com/sasha-s/go-deadlock"
)

// DefaultBacklog is how many values a subscriber may fall behind before the
// oldest ones are dropped.
const DefaultBacklog = 16

// Topic fans values out to every subscriber without ever blocking the
// publisher. Slow subscribers lose their oldest values first.
type Topic[T any] struct {
	subscribers map[chan T]struct{}
	mutex       deadlock.Mutex
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subscribers: make(map[chan T]struct{}),
	}
}

func offer[T any](channel chan T, value T) bool {
	select {
	case channel <- value:
		return true
	default:
		return false
	}
}

func (t *Topic[T]) Publish(value T) {
	t.mutex.Lock()
	for subscriber := range t.subscribers {
		if offer(subscriber, value) {
			continue
		}

		select {
		case <-subscriber:
		default:
		}
		offer(subscriber, value)
	}
	t.mutex.Unlock()
}

// Subscribers returns the number of live subscriptions.
func (t *Topic[T]) Subscribers() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.subscribers)
}

type Subscriber[T any] struct {
	channel chan T
	topic   *Topic[T]
}

func (t *Topic[T]) Subscribe() *Subscriber[T] {
	return t.SubscribeWithBacklog(DefaultBacklog)
}

func (t *Topic[T]) SubscribeWithBacklog(backlog int) *Subscriber[T] {
	if backlog < 1 {
		backlog = 1
	}

	channel := make(chan T, backlog)
	t.mutex.Lock()
	t.subscribers[channel] = struct{}{}
	t.mutex.Unlock()

	return &Subscriber[T]{channel, t}
}

func (t *Subscriber[T]) Recv() <-chan T {
	return t.channel
}

func (t *Subscriber[T]) Done() {
	topic := t.topic
	topic.mutex.Lock()
	delete(topic.subscribers, t.channel)
	topic.mutex.Unlock()
}
