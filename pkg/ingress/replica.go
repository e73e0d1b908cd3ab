package ingress

import (
	"context"
	"errors"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/arbiterfps/arbiter/pkg/gameserver/replication"
)

var ErrHashMismatch = errors.New("snapshot hash mismatch")

// Replica follows a server's websocket feed and applies every snapshot to a
// Receiver.
type Replica struct {
	conn     *websocket.Conn
	receiver *replication.Receiver
	lastSeq  uint64
}

func Dial(ctx context.Context, url string, receiver *replication.Receiver) (*Replica, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(1 << 20)

	return &Replica{
		conn:     conn,
		receiver: receiver,
	}, nil
}

func (r *Replica) Hello(ctx context.Context, name string) error {
	bytes, err := cbor.Marshal(HelloMessage{Op: HelloOp, Name: name})
	if err != nil {
		return err
	}
	return WriteTimeout(ctx, writeTimeout, r.conn, bytes)
}

// Apply handles one envelope. Stale and corrupt snapshots are dropped.
func (r *Replica) Apply(envelope Envelope) error {
	if envelope.Op != SnapshotOp {
		return nil
	}
	if envelope.Seq <= r.lastSeq {
		return nil
	}
	if xxhash.Sum64(envelope.Data) != envelope.Hash {
		return ErrHashMismatch
	}

	if err := r.receiver.Apply(envelope.Data); err != nil {
		return err
	}
	r.lastSeq = envelope.Seq
	return nil
}

// Watch reads the feed until ctx is done or the connection drops. onEvent,
// if set, sees every message that is not a snapshot.
func (r *Replica) Watch(ctx context.Context, onEvent func(op string, msg []byte)) error {
	for {
		typ, msg, err := r.conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageBinary {
			continue
		}

		var envelope Envelope
		if err := cbor.Unmarshal(msg, &envelope); err != nil {
			log.Warn().Err(err).Msg("could not decode message")
			continue
		}

		if envelope.Op != SnapshotOp {
			if onEvent != nil {
				onEvent(envelope.Op, msg)
			}
			continue
		}

		if err := r.Apply(envelope); err != nil {
			log.Warn().Err(err).Uint64("seq", envelope.Seq).Msg("dropped snapshot")
		}
	}
}

func (r *Replica) Close() error {
	return r.conn.Close(websocket.StatusNormalClosure, "")
}
