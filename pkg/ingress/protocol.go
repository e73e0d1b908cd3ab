package ingress

const (
	SnapshotOp = "snapshot"
	EventOp    = "event"
	HelloOp    = "hello"
	WelcomeOp  = "welcome"
)

// Envelope is the frame every websocket message is wrapped in. Hash is the
// xxhash64 of Data.
type Envelope struct {
	Op   string `cbor:"op"`
	Seq  uint64 `cbor:"seq,omitempty"`
	Hash uint64 `cbor:"hash,omitempty"`
	Data []byte `cbor:"data,omitempty"`
}

type HelloMessage struct {
	Op   string `cbor:"op"`
	Name string `cbor:"name,omitempty"`
}

type WelcomeMessage struct {
	Op          string `cbor:"op"`
	Description string `cbor:"description"`
	Replicas    int    `cbor:"replicas"`
}

type EventMessage struct {
	Op   string `cbor:"op"`
	Kind string `cbor:"kind"`
	// Event is the CBOR encoded payload, see the host's event types.
	Event []byte `cbor:"event"`
}
