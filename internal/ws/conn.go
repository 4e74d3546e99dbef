package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/logging"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/kitprompt/internal/transport/wire"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxFrame     = 4 * 1024 * 1024
	writeTimeout = 10 * time.Second
)

// Conn adapts a WebSocket to prompt.EventSource and wire.SendFunc. A single
// goroutine reads frames into the inbox; writes are serialized.
type Conn struct {
	id      string
	ws      *websocket.Conn
	inbox   *wire.Inbox
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu        sync.Mutex
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, logger *zap.Logger, metrics *monitoring.Metrics) *Conn {
	ws.SetReadLimit(maxFrame)
	c := &Conn{
		id:      uuid.NewString(),
		ws:      ws,
		inbox:   wire.NewInbox(64),
		logger:  logger,
		metrics: metrics,
	}
	metrics.IncConnections()
	go c.read()
	return c
}

// ID identifies the connection in logs.
func (c *Conn) ID() string { return c.id }

func (c *Conn) read() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("WebSocket read error", logging.Conn(c.id), zap.Error(err))
			}
			c.inbox.Close(wire.ErrClosed)
			return
		}

		ev, err := wire.Decode(data)
		if err != nil {
			c.logger.Warn("Invalid frame", logging.Conn(c.id), zap.Error(err))
			c.inbox.Close(err)
			return
		}
		c.metrics.RecordMessage("in", string(ev.Channel))
		if !c.inbox.Push(ev) {
			return
		}
	}
}

// Next implements prompt.EventSource.
func (c *Conn) Next(ctx context.Context) (prompt.Event, error) {
	return c.inbox.Next(ctx)
}

// Requeue implements prompt.Requeuer.
func (c *Conn) Requeue(ev prompt.Event) {
	c.inbox.Requeue(ev)
}

// Send writes one text frame.
func (c *Conn) Send(msg wire.Message) error {
	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", msg.Channel(), err)
	}
	c.metrics.RecordMessage("out", msg.Channel())
	return nil
}

// Renderer returns a renderer writing to this connection.
func (c *Conn) Renderer() *wire.Renderer {
	return wire.NewRenderer(c.Send, c.logger)
}

// Close sends a normal close frame and releases the socket.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.mu.Unlock()
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.logger.Debug("Failed to send close frame", logging.Conn(c.id), zap.Error(err))
		}

		c.inbox.Close(wire.ErrClosed)
		_ = c.ws.Close()
		c.metrics.DecConnections()
	})
}
