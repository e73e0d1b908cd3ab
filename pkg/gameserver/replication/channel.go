package replication

import (
	"github.com/arbiterfps/arbiter/pkg/utils"
)

// Channel carries encoded snapshots from the authority to replicas. Delivery
// is best effort: the newest snapshot always supersedes older ones.
type Channel interface {
	Publish(data []byte)
}

// LocalChannel fans snapshots out to in-process subscribers, e.g. the
// websocket ingress.
type LocalChannel struct {
	topic *utils.Topic[[]byte]
}

var _ Channel = &LocalChannel{}

func NewLocalChannel() *LocalChannel {
	return &LocalChannel{
		topic: utils.NewTopic[[]byte](),
	}
}

func (c *LocalChannel) Publish(data []byte) {
	c.topic.Publish(data)
}

func (c *LocalChannel) Subscribe() *utils.Subscriber[[]byte] {
	return c.topic.Subscribe()
}

// Channels publishes on every channel in order.
type Channels []Channel

func (c Channels) Publish(data []byte) {
	for _, channel := range c {
		channel.Publish(data)
	}
}
