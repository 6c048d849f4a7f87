package socket

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

type listenerEntry struct {
	id       int
	callback Listener
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// Channel owns at most one WebSocket connection and the last message it
// received. Messages are opaque strings in both directions.
// There is no reconnection: when the transport drops, ReadyState reports
// closed and the caller is expected to Destroy and Create again.
type Channel struct {
	id       string
	resolver Resolver
	logger   *zap.Logger

	conn    *websocket.Conn
	state   State
	ready   ReadyState
	dialing bool
	last    string
	cancel  context.CancelFunc
	stateM  sync.RWMutex

	listeners []listenerEntry
	stateCbs  []stateCallbackEntry
	nextCbID  int
	cbM       sync.RWMutex

	// wg tracks the goroutines of the current connection only.
	wg *sync.WaitGroup

	pingInterval time.Duration
	dialTimeout  time.Duration
	writeTimeout time.Duration
	readLimit    int64

	headerProvider HeaderProvider
}

var _ Client = (*Channel)(nil)

func New(resolver Resolver, opts ...Option) *Channel {
	c := &Channel{
		id:           uuid.NewString(),
		resolver:     resolver,
		logger:       zap.NewNop(),
		state:        StateDisconnected,
		ready:        ReadyClosed,
		pingInterval: 30 * time.Second,
		dialTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("channel_id", c.id))
	return c
}

// ID identifies the channel in logs.
func (c *Channel) ID() string { return c.id }

// Create dials resolver.URL(path) and starts delivering incoming messages.
// It fails with ErrAlreadyConnected unless the channel is disconnected.
func (c *Channel) Create(ctx context.Context, path string) error {
	c.stateM.Lock()
	if c.state == StateConnected || c.dialing {
		c.stateM.Unlock()
		return ErrAlreadyConnected
	}
	c.dialing = true
	c.ready = ReadyConnecting
	c.stateM.Unlock()

	url := c.resolver.URL(path)
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      c.buildHeaders(),
	})
	if err != nil {
		c.stateM.Lock()
		c.dialing = false
		c.ready = ReadyClosed
		c.stateM.Unlock()
		c.logger.Warn("socket_dial_failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("socket dial %s: %w", url, err)
	}
	if c.readLimit > 0 {
		conn.SetReadLimit(c.readLimit)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	c.stateM.Lock()
	c.wg = wg
	c.conn = conn
	c.state = StateConnected
	c.ready = ReadyOpen
	c.dialing = false
	c.cancel = runCancel
	c.stateM.Unlock()

	wg.Add(1)
	go c.listen(runCtx, wg, conn)
	if c.pingInterval > 0 {
		wg.Add(1)
		go c.pingLoop(runCtx, wg, conn)
	}

	c.logger.Info("socket_create", zap.String("url", url))
	c.notifyState(StateConnected)
	return nil
}

// Send hands message to the transport. Before Create it returns
// ErrNotConnected; once the transport is closing or closed it drops the
// message and returns nil.
func (c *Channel) Send(ctx context.Context, message string) error {
	c.stateM.RLock()
	conn, state, ready := c.conn, c.state, c.ready
	c.stateM.RUnlock()

	if state != StateConnected || conn == nil {
		return ErrNotConnected
	}
	if !ready.writable() {
		c.logger.Debug("socket_send_dropped", zap.String("ready_state", ready.String()))
		return nil
	}

	wctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	if err := conn.Write(wctx, websocket.MessageText, []byte(message)); err != nil {
		return fmt.Errorf("socket write: %w", err)
	}
	return nil
}

// Destroy closes the transport, returns to disconnected and clears the last
// message. Subscribers observe the empty value. If ctx ends before the
// read loop exits, Destroy returns ctx.Err(), but teardown has already
// happened and the loop finishes on its own.
func (c *Channel) Destroy(ctx context.Context) error {
	c.stateM.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.stateM.Unlock()
		return ErrNotConnected
	}
	conn, cancel, wg := c.conn, c.cancel, c.wg
	c.ready = ReadyClosing
	c.stateM.Unlock()

	if err := conn.Close(websocket.StatusNormalClosure, "destroy"); err != nil {
		// the peer may already be gone; the handle is released either way
		c.logger.Debug("socket_close", zap.Error(err))
	}
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	var waitErr error
	select {
	case <-ctx.Done():
		waitErr = ctx.Err()
	case <-done:
	}

	c.stateM.Lock()
	c.conn = nil
	c.cancel = nil
	c.wg = nil
	c.state = StateDisconnected
	c.ready = ReadyClosed
	c.stateM.Unlock()

	c.publish("")
	c.logger.Info("socket_destroy")
	c.notifyState(StateDisconnected)
	return waitErr
}

func (c *Channel) State() State {
	c.stateM.RLock()
	defer c.stateM.RUnlock()
	return c.state
}

func (c *Channel) ReadyState() ReadyState {
	c.stateM.RLock()
	defer c.stateM.RUnlock()
	return c.ready
}

func (c *Channel) LastMessage() string {
	c.stateM.RLock()
	defer c.stateM.RUnlock()
	return c.last
}

// Subscribe registers fn and immediately replays the current value to it.
func (c *Channel) Subscribe(fn Listener) int {
	if fn == nil {
		return 0
	}
	c.cbM.Lock()
	c.nextCbID++
	id := c.nextCbID
	c.listeners = append(c.listeners, listenerEntry{id: id, callback: fn})
	current := c.LastMessage()
	c.cbM.Unlock()

	fn(current)
	return id
}

func (c *Channel) Unsubscribe(id int) {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			break
		}
	}
}

func (c *Channel) OnStateChange(cb StateCallback) int {
	if cb == nil {
		return 0
	}
	c.cbM.Lock()
	defer c.cbM.Unlock()
	c.nextCbID++
	id := c.nextCbID
	c.stateCbs = append(c.stateCbs, stateCallbackEntry{id: id, callback: cb})
	return id
}

func (c *Channel) RemoveStateCallback(id int) {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	for i, cb := range c.stateCbs {
		if cb.id == id {
			c.stateCbs = append(c.stateCbs[:i], c.stateCbs[i+1:]...)
			break
		}
	}
}

// publish stores message as the current value and delivers it to a
// snapshot of the listeners outside of any lock.
func (c *Channel) publish(message string) {
	c.cbM.RLock()
	c.stateM.Lock()
	c.last = message
	c.stateM.Unlock()
	listeners := make([]listenerEntry, len(c.listeners))
	copy(listeners, c.listeners)
	c.cbM.RUnlock()

	for _, entry := range listeners {
		entry.callback(message)
	}
}

func (c *Channel) notifyState(state State) {
	c.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(c.stateCbs))
	copy(callbacks, c.stateCbs)
	c.cbM.RUnlock()
	for _, entry := range callbacks {
		entry.callback(state)
	}
}

func (c *Channel) listen(ctx context.Context, wg *sync.WaitGroup, conn *websocket.Conn) {
	defer wg.Done()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.transportLost(conn, "read", err)
			return
		}
		c.publish(string(data))
	}
}

func (c *Channel) pingLoop(ctx context.Context, wg *sync.WaitGroup, conn *websocket.Conn) {
	defer wg.Done()
	t := time.NewTicker(c.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			if ctx.Err() != nil {
				return
			}
			failures++
			if failures >= 2 {
				c.transportLost(conn, "ping", err)
				_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

// transportLost marks the transport closed without leaving the connected
// state. Errors caused by Destroy itself are ignored.
func (c *Channel) transportLost(conn *websocket.Conn, op string, err error) {
	c.stateM.Lock()
	if c.conn != conn || c.ready == ReadyClosing || c.ready == ReadyClosed {
		c.stateM.Unlock()
		return
	}
	c.ready = ReadyClosed
	c.stateM.Unlock()

	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		c.logger.Info("socket_closed_by_peer", zap.String("op", op), zap.Int("status", int(status)))
		return
	}
	c.logger.Warn("socket_transport_lost", zap.String("op", op), zap.Error(err))
}

func (c *Channel) buildHeaders() http.Header {
	hdr := http.Header{}
	if c.headerProvider == nil {
		return hdr
	}
	for k, v := range c.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
