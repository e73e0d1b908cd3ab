package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/arbiterfps/arbiter/pkg/gameserver/replication"
	"github.com/arbiterfps/arbiter/pkg/utils"
)

const (
	KEY_SNAPSHOTS = "%s:snapshots"
	KEY_LATEST    = "%s:latest"
)

const Nil = redis.Nil

type Settings struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// Relay fans snapshots out through Redis: every snapshot is published on a
// channel and kept under a key for replicas that join late.
type Relay struct {
	client *redis.Client
	prefix string

	topic *utils.Topic[[]byte]
	queue *utils.Subscriber[[]byte]
}

var _ replication.Channel = &Relay{}

func New(settings Settings) *Relay {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     settings.Address,
		Password: settings.Password,
		DB:       settings.DB,
	}), settings.Prefix)
}

func NewWithClient(client *redis.Client, prefix string) *Relay {
	topic := utils.NewTopic[[]byte]()
	return &Relay{
		client: client,
		prefix: prefix,
		topic:  topic,
		// only the newest snapshot is worth sending
		queue: topic.SubscribeWithBacklog(1),
	}
}

func (r *Relay) SnapshotChannel() string {
	return fmt.Sprintf(KEY_SNAPSHOTS, r.prefix)
}

func (r *Relay) LatestKey() string {
	return fmt.Sprintf(KEY_LATEST, r.prefix)
}

// Publish queues a snapshot without blocking the caller. Run sends it.
func (r *Relay) Publish(data []byte) {
	r.topic.Publish(data)
}

func (r *Relay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Relay) send(ctx context.Context, data []byte) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.LatestKey(), data, 0)
	pipe.Publish(ctx, r.SnapshotChannel(), data)
	_, err := pipe.Exec(ctx)
	return err
}

// Run sends queued snapshots until ctx is done. Errors are logged and the
// snapshot dropped; the next one supersedes it anyway.
func (r *Relay) Run(ctx context.Context) {
	defer r.queue.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-r.queue.Recv():
			if err := r.send(ctx, data); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("could not relay snapshot")
			}
		}
	}
}

// Latest returns the most recent snapshot, or nil if there is none.
func (r *Relay) Latest(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.LatestKey()).Bytes()
	if err == Nil {
		return nil, nil
	}
	return data, err
}

// dedupe drops consecutive copies of the same snapshot, e.g. the latest key
// and the first published message after joining.
type dedupe struct {
	last uint64
	seen bool
}

func (d *dedupe) changed(data []byte) bool {
	hash := xxhash.Sum64(data)
	if d.seen && hash == d.last {
		return false
	}
	d.last, d.seen = hash, true
	return true
}

// Follow subscribes to the snapshot channel and applies everything it
// receives to the receiver until ctx is done.
func (r *Relay) Follow(ctx context.Context, receiver *replication.Receiver) error {
	sub := r.client.Subscribe(ctx, r.SnapshotChannel())
	defer sub.Close()

	// make sure the subscription is live before reading the latest key
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	seen := &dedupe{}
	latest, err := r.Latest(ctx)
	if err != nil {
		return err
	}
	if latest != nil && seen.changed(latest) {
		if err := receiver.Apply(latest); err != nil {
			log.Warn().Err(err).Msg("could not apply latest snapshot")
		}
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			data := []byte(msg.Payload)
			if !seen.changed(data) {
				continue
			}
			if err := receiver.Apply(data); err != nil {
				log.Warn().Err(err).Msg("could not apply snapshot")
			}
		}
	}
}

func (r *Relay) Close() error {
	return r.client.Close()
}
