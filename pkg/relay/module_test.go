package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	relay := New(Settings{Address: "localhost:6379", Prefix: "arena-1"})
	defer relay.Close()

	assert.Equal(t, "arena-1:snapshots", relay.SnapshotChannel())
	assert.Equal(t, "arena-1:latest", relay.LatestKey())
}

func TestPublishKeepsNewest(t *testing.T) {
	relay := New(Settings{Address: "localhost:6379", Prefix: "test"})
	defer relay.Close()

	relay.Publish([]byte{1})
	relay.Publish([]byte{2})
	relay.Publish([]byte{3})

	assert.Equal(t, []byte{3}, <-relay.queue.Recv())
	assert.Len(t, relay.queue.Recv(), 0)
}

func TestDedupe(t *testing.T) {
	seen := &dedupe{}
	assert.True(t, seen.changed([]byte{1, 2}))
	assert.False(t, seen.changed([]byte{1, 2}))
	assert.True(t, seen.changed([]byte{3}))
	assert.True(t, seen.changed([]byte{1, 2}))
}
