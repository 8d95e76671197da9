package server

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/atsika/speedtrap/internal/detect"
	"github.com/atsika/speedtrap/internal/dispatch"
	"github.com/atsika/speedtrap/internal/model"
	"github.com/atsika/speedtrap/internal/protocol"
)

// role tracks a connection's position in the per-connection state machine.
type role int

const (
	roleUnregistered role = iota
	roleCamera
	roleDispatcher
)

// outboundBuffer bounds how many frames (tickets, heartbeats, the eventual
// Error) the writer goroutine may lag behind by before a slow client's
// reads start to backpressure the connection's handle* calls.
const outboundBuffer = 16

// connection runs the per-connection state machine for one accepted
// socket: a reader goroutine (run) that decodes frames and mutates shared
// state, a writer goroutine (writeLoop) that owns the socket's write side
// and drains out in FIFO order, and an on-demand heartbeat goroutine. The
// three communicate only through out and done, never by touching each
// other's state, so each may run concurrently with the others.
type connection struct {
	id   string
	conn net.Conn
	core *Core
	log  *slog.Logger

	out        chan protocol.Outbound
	done       chan struct{}
	writerDone chan struct{}
	once       sync.Once

	role            role
	camera          protocol.IAmCameraMsg
	dispatcherRoads []model.Road
	heartbeatSet    bool
}

func newConnection(id string, c net.Conn, core *Core) *connection {
	return &connection{
		id:         id,
		conn:       c,
		core:       core,
		log:        core.Log.With("conn", id, "remote", c.RemoteAddr().String()),
		out:        make(chan protocol.Outbound, outboundBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// run drives the connection until it disconnects or is rejected by the
// protocol state machine. It never returns an error: every failure mode
// ends the connection on its own, isolated from every other connection.
func (c *connection) run() {
	defer c.shutdown("")
	go c.writeLoop()

	decoder := protocol.NewDecoder()
	readBuf := make([]byte, 4096)

	for {
		msg, err := decoder.Next()
		switch {
		case err == nil:
			if herr := c.handle(msg); herr != nil {
				c.core.Metrics.IncrementProtocolErrors()
				c.shutdown(herr.Error())
				return
			}
			continue
		case errors.Is(err, protocol.ErrIncomplete):
			// Need more bytes; fall through to read.
		default:
			c.core.Metrics.IncrementProtocolErrors()
			c.shutdown(err.Error())
			return
		}

		n, rerr := c.conn.Read(readBuf)
		if n > 0 {
			c.core.Metrics.IncrementBytesReceived(int64(n))
			decoder.Feed(readBuf[:n])
		}
		if rerr != nil {
			// Transport failure or EOF: the client is gone, no Error frame.
			return
		}
	}
}

// handle applies one decoded inbound message to the connection's state,
// per the permitted-inbound rules for its current role. A non-nil error
// is always a protocol-misuse error that closes the connection with an
// Error frame.
func (c *connection) handle(msg protocol.Inbound) error {
	switch m := msg.(type) {
	case protocol.WantHeartbeatMsg:
		return c.handleWantHeartbeat(m)
	case protocol.IAmCameraMsg:
		return c.handleIAmCamera(m)
	case protocol.IAmDispatcherMsg:
		return c.handleIAmDispatcher(m)
	case protocol.PlateMsg:
		return c.handlePlate(m)
	default:
		return errors.New("unrecognized inbound message")
	}
}

func (c *connection) handleWantHeartbeat(m protocol.WantHeartbeatMsg) error {
	if c.heartbeatSet {
		return errors.New("heartbeat already requested")
	}
	c.heartbeatSet = true
	if m.Interval > 0 {
		go c.heartbeatLoop(time.Duration(m.Interval) * 100 * time.Millisecond)
	}
	return nil
}

func (c *connection) handleIAmCamera(m protocol.IAmCameraMsg) error {
	if c.role != roleUnregistered {
		return errors.New("connection already registered a role")
	}
	c.role = roleCamera
	c.camera = m
	c.core.Metrics.IncrementCamerasRegistered()
	return nil
}

func (c *connection) handleIAmDispatcher(m protocol.IAmDispatcherMsg) error {
	if c.role != roleUnregistered {
		return errors.New("connection already registered a role")
	}
	c.role = roleDispatcher
	c.dispatcherRoads = m.Roads
	c.core.Metrics.IncrementDispatchersRegistered()

	handle := dispatch.Handle{ConnID: c.id, Out: c.out, Done: c.done}
	c.core.Registry.Register(handle, m.Roads)
	c.core.Router.OnRegistered(m.Roads)
	return nil
}

func (c *connection) handlePlate(m protocol.PlateMsg) error {
	if c.role != roleCamera {
		return errors.New("plate reported by a connection that is not a camera")
	}

	obs, index, added := c.core.Store.Record(m.Plate, c.camera.Road, c.camera.Mile, c.camera.Limit, m.Timestamp)
	if !added {
		return nil
	}
	c.core.Metrics.IncrementObservationsRecorded()

	for _, ticket := range detect.Scan(obs, index) {
		ticket.Plate = m.Plate
		ticket.Road = c.camera.Road

		start, end := ticket.DayRange()
		if !c.core.Suppression.TryAccept(m.Plate, start, end) {
			c.core.Metrics.IncrementTicketsSuppressed()
			continue
		}

		c.core.Metrics.IncrementTicketsIssued()
		c.core.Router.Submit(ticket)
	}
	return nil
}

// heartbeatLoop sends a Heartbeat frame every interval until the connection
// ends. Heartbeats are advisory: if out is full the beat is dropped rather
// than blocking the timer.
func (c *connection) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case c.out <- protocol.HeartbeatMsg{}:
			case <-c.done:
				return
			default:
				// Backpressure: drop this beat, the client will get the next one.
			}
		case <-c.done:
			return
		}
	}
}

// writeLoop is the connection's single writer task: every frame sent to
// this client, whether queued by handle*, the heartbeat timer, or a ticket
// delivered asynchronously through the router, passes through out and is
// written here in FIFO order.
//
// On shutdown it drains whatever is already buffered in out before
// honouring done, so an Error frame enqueued just before close is never
// lost to a race against the close signal — the same drain-before-close
// discipline Atsika-aznet's Conn.Close applies by flushing its write
// buffer both before and after appending its Fin frame.
func (c *connection) writeLoop() {
	defer close(c.writerDone)
	buf := &protocol.Buffer{}
	for {
		select {
		case msg := <-c.out:
			c.writeMsg(buf, msg)
			continue
		default:
		}

		select {
		case msg := <-c.out:
			c.writeMsg(buf, msg)
		case <-c.done:
			return
		}
	}
}

func (c *connection) writeMsg(buf *protocol.Buffer, msg protocol.Outbound) {
	buf.Reset()
	msg.Encode(buf)
	b := buf.Bytes()
	if _, err := c.conn.Write(b); err != nil {
		return
	}
	c.core.Metrics.IncrementBytesSent(int64(len(b)))
}

// shutdown ends the connection exactly once: if errMsg is non-empty it is
// queued as an Error frame ahead of close, the dispatcher registry is
// cleaned up, and the socket is closed. Pending tickets already queued for
// this connection's roads are left in the router for the next dispatcher.
func (c *connection) shutdown(errMsg string) {
	c.once.Do(func() {
		if errMsg != "" {
			c.out <- protocol.ErrorMsg{Message: errMsg}
		}
		close(c.done)
		if c.role == roleDispatcher {
			c.core.Registry.Unregister(c.id, c.dispatcherRoads)
		}
		<-c.writerDone
		c.conn.Close()
	})
}
