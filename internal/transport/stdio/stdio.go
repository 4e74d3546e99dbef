// Package stdio connects a prompt controller to a parent process over
// newline-delimited JSON: events arrive on stdin, render frames leave on
// stdout.
package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/kitprompt/internal/transport/wire"
	"go.uber.org/zap"
)

// maxFrame bounds one inbound line.
const maxFrame = 4 * 1024 * 1024

// Conn is a host connection over a reader/writer pair.
type Conn struct {
	inbox   *wire.Inbox
	out     io.Writer
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu sync.Mutex
}

// New starts reading frames from r. Call Close to stop accepting writes;
// the reader ends when r reaches EOF.
func New(r io.Reader, w io.Writer, logger *zap.Logger, metrics *monitoring.Metrics) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Conn{
		inbox:   wire.NewInbox(64),
		out:     w,
		logger:  logger,
		metrics: metrics,
	}
	go c.read(r)
	return c
}

func (c *Conn) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrame)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := wire.Decode(line)
		if err != nil {
			c.logger.Warn("Invalid frame", zap.Error(err))
			c.inbox.Close(err)
			return
		}
		c.metrics.RecordMessage("in", string(ev.Channel))
		if !c.inbox.Push(ev) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.inbox.Close(fmt.Errorf("stdin: %w", err))
		return
	}
	c.inbox.Close(wire.ErrClosed)
}

// Next implements prompt.EventSource.
func (c *Conn) Next(ctx context.Context) (prompt.Event, error) {
	return c.inbox.Next(ctx)
}

// Requeue implements prompt.Requeuer.
func (c *Conn) Requeue(ev prompt.Event) {
	c.inbox.Requeue(ev)
}

// Send writes one frame followed by a newline.
func (c *Conn) Send(msg wire.Message) error {
	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", msg.Channel(), err)
	}
	c.metrics.RecordMessage("out", msg.Channel())
	return nil
}

// Renderer returns a renderer writing to this connection.
func (c *Conn) Renderer() *wire.Renderer {
	return wire.NewRenderer(c.Send, c.logger)
}

// Close ends the event stream.
func (c *Conn) Close() {
	c.inbox.Close(wire.ErrClosed)
}
