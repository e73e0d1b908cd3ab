package chanlock

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHealthyLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lock := NewWithTimeout(zerolog.Nop(), 5*time.Millisecond, time.Second)
	poll := lock.Poll(ctx)

	for i := 0; i < 3; i++ {
		<-poll
	}
	assert.Equal(t, int64(0), lock.Stalls())
}

func TestStalledLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lock := NewWithTimeout(zerolog.Nop(), 5*time.Millisecond, 10*time.Millisecond)
	lock.Mark("stuck")
	poll := lock.Poll(ctx)

	assert.Eventually(t, func() bool {
		return lock.Stalls() > 0
	}, time.Second, 5*time.Millisecond)

	<-poll
}
