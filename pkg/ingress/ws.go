package ingress

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"github.com/arbiterfps/arbiter/pkg/utils"
)

// CLIENT_MESSAGE_LIMIT is how many messages may queue up for a replica
// before it is considered too slow.
const CLIENT_MESSAGE_LIMIT = 64

const writeTimeout = 5 * time.Second

type WSClient struct {
	id        uint64
	host      string
	send      chan []byte
	limiter   *rate.Limiter
	closeSlow func()
}

func (c *WSClient) Reference() string {
	return fmt.Sprintf("ws:%d", c.id)
}

type Settings struct {
	Description string
	HelloRate   float64
	HelloBurst  int
}

// WSIngress streams snapshots and match events to replica peers.
type WSIngress struct {
	settings   Settings
	clients    map[*WSClient]struct{}
	mutex      deadlock.Mutex
	httpServer *http.Server

	nextID   atomic.Uint64
	seq      atomic.Uint64
	rejected atomic.Uint64
	latest   atomic.Pointer[[]byte]
}

func NewWSIngress(settings Settings) *WSIngress {
	if settings.HelloBurst < 1 {
		settings.HelloBurst = 1
	}
	return &WSIngress{
		settings: settings,
		clients:  make(map[*WSClient]struct{}),
	}
}

func WriteTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

func (server *WSIngress) AddClient(s *WSClient) {
	server.mutex.Lock()
	server.clients[s] = struct{}{}
	server.mutex.Unlock()
}

func (server *WSIngress) RemoveClient(client *WSClient) {
	server.mutex.Lock()
	delete(server.clients, client)
	server.mutex.Unlock()
}

func (server *WSIngress) Clients() int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return len(server.clients)
}

// Rejected returns how many hello messages were dropped by the rate limit.
func (server *WSIngress) Rejected() uint64 {
	return server.rejected.Load()
}

func (server *WSIngress) welcome(client *WSClient, logger zerolog.Logger, hello HelloMessage) {
	if !client.limiter.Allow() {
		server.rejected.Add(1)
		logger.Debug().Msg("hello rate limited")
		return
	}

	logger.Info().Str("name", hello.Name).Msg("replica said hello")

	bytes, err := cbor.Marshal(WelcomeMessage{
		Op:          WelcomeOp,
		Description: server.settings.Description,
		Replicas:    server.Clients(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not encode welcome")
		return
	}

	select {
	case client.send <- bytes:
	default:
		go client.closeSlow()
	}
}

func (server *WSIngress) HandleClient(ctx context.Context, c *websocket.Conn, host string, logger zerolog.Logger) error {
	client := &WSClient{
		id:      server.nextID.Add(1),
		host:    host,
		send:    make(chan []byte, CLIENT_MESSAGE_LIMIT),
		limiter: rate.NewLimiter(rate.Limit(server.settings.HelloRate), server.settings.HelloBurst),
		closeSlow: func() {
			c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}

	logger = logger.With().Str("client", client.Reference()).Logger()

	// Write the latest snapshot on connect so they don't have to wait for the
	// next frame
	if latest := server.latest.Load(); latest != nil {
		client.send <- *latest
	}

	server.AddClient(client)
	defer server.RemoveClient(client)

	logger.Info().Msg("replica joined")

	receive := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		for {
			typ, message, err := c.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			if typ != websocket.MessageBinary {
				continue
			}

			select {
			case receive <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case msg := <-receive:
			var hello HelloMessage
			if err := cbor.Unmarshal(msg, &hello); err == nil && hello.Op == HelloOp {
				server.welcome(client, logger, hello)
			}
		case msg := <-client.send:
			err := WriteTimeout(ctx, writeTimeout, c, msg)
			if err != nil {
				logger.Error().Msg("replica missed write timeout; disconnecting")
				return err
			}
		case err := <-readErr:
			logger.Info().Msg("replica left")
			return err
		case <-ctx.Done():
			logger.Info().Msg("replica left")
			return ctx.Err()
		}
	}
}

func (server *WSIngress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})

	if err != nil {
		log.Error().Err(err).Msg("error accepting replica connection")
		return
	}

	defer c.Close(websocket.StatusInternalError, "operational fault during relay")

	// We use nginx for ingress everywhere, so check this first
	hostname := r.RemoteAddr

	original, ok := r.Header["X-Forwarded-For"]
	if ok {
		hostname = original[0]
	}

	agent := useragent.Parse(r.UserAgent())
	logger := log.With().
		Str("host", hostname).
		Str("agent", agent.Name).
		Str("version", agent.Version).
		Str("os", agent.OS).
		Bool("bot", agent.Bot).
		Logger()

	err = server.HandleClient(r.Context(), c, hostname, logger)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("replica connection failed")
		return
	}
}

func (server *WSIngress) Broadcast(msg []byte) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	for client := range server.clients {
		select {
		case client.send <- msg:
		default:
			go client.closeSlow()
		}
	}
}

// BroadcastSnapshot wraps an encoded snapshot in an envelope and sends it to
// every replica.
func (server *WSIngress) BroadcastSnapshot(data []byte) error {
	bytes, err := cbor.Marshal(Envelope{
		Op:   SnapshotOp,
		Seq:  server.seq.Add(1),
		Hash: xxhash.Sum64(data),
		Data: data,
	})
	if err != nil {
		return err
	}

	server.latest.Store(&bytes)
	server.Broadcast(bytes)
	return nil
}

// BroadcastEvent sends a host event, e.g. a scene change, to every replica.
func (server *WSIngress) BroadcastEvent(kind string, event interface{}) error {
	payload, err := cbor.Marshal(event)
	if err != nil {
		return err
	}

	bytes, err := cbor.Marshal(EventMessage{
		Op:    EventOp,
		Kind:  kind,
		Event: payload,
	})
	if err != nil {
		return err
	}

	server.Broadcast(bytes)
	return nil
}

// Forward broadcasts every snapshot from the subscription until ctx is done.
func (server *WSIngress) Forward(ctx context.Context, snapshots *utils.Subscriber[[]byte]) {
	defer snapshots.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-snapshots.Recv():
			if err := server.BroadcastSnapshot(data); err != nil {
				log.Error().Err(err).Msg("could not broadcast snapshot")
			}
		}
	}
}

// ForwardEvents broadcasts every value from the subscription as an event of
// the given kind.
func ForwardEvents[T any](ctx context.Context, server *WSIngress, kind string, events *utils.Subscriber[T]) {
	defer events.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events.Recv():
			if err := server.BroadcastEvent(kind, event); err != nil {
				log.Error().Err(err).Str("kind", kind).Msg("could not broadcast event")
			}
		}
	}
}

func (server *WSIngress) Serve(ctx context.Context, port int, path string) error {
	listen, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		log.Error().Err(err).Msg("failed to bind WebSocket port")
		return err
	}

	log.Info().Msgf("listening on http://%v%s", listen.Addr(), path)

	mux := http.NewServeMux()
	mux.Handle(path, server)

	httpServer := &http.Server{
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	server.mutex.Lock()
	server.httpServer = httpServer
	server.mutex.Unlock()

	return httpServer.Serve(listen)
}

func (server *WSIngress) Shutdown(ctx context.Context) {
	server.mutex.Lock()
	httpServer := server.httpServer
	server.mutex.Unlock()

	if httpServer != nil {
		httpServer.Shutdown(ctx)
	}
}
