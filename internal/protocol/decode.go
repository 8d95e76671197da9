package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/atsika/speedtrap/internal/model"
)

// ErrIncomplete is returned when the buffered bytes do not yet contain a
// full frame. It carries no information about how many more bytes are
// needed; the caller just waits for more input and retries. No bytes are
// consumed when this is returned.
var ErrIncomplete = errors.New("protocol: incomplete frame")

// ErrMalformed wraps every other decode failure: an unknown message id, or
// a field whose value violates the grammar (e.g. a zero-length plate or a
// dispatcher with no roads). Malformed frames are fatal to the connection.
var ErrMalformed = errors.New("protocol: malformed frame")

// cursor reads fixed-width fields from a byte slice, reporting ok=false
// (never panicking or erroring) when the slice runs out — the caller turns
// that into ErrIncomplete.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) u8() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	v := c.data[c.pos]
	c.pos++
	return v, true
}

func (c *cursor) u16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cursor) u32() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, true
}

func (c *cursor) str() (string, bool) {
	n, ok := c.u8()
	if !ok {
		return "", false
	}
	if c.remaining() < int(n) {
		return "", false
	}
	s := string(c.data[c.pos : c.pos+int(n)])
	c.pos += int(n)
	return s, true
}

// Decode attempts to parse a single inbound message from the front of data.
// It returns the message and the number of bytes it consumed, or
// ErrIncomplete if data does not yet hold a full frame, or an error
// wrapping ErrMalformed if it never could regardless of how many more
// bytes arrive. Decode never mutates or retains data — safe to call again
// on the same (possibly grown) buffer once more bytes are available.
func Decode(data []byte) (Inbound, int, error) {
	if len(data) < 1 {
		return nil, 0, ErrIncomplete
	}

	id := data[0]
	c := &cursor{data: data, pos: 1}

	switch id {
	case idPlate:
		plate, ok := c.str()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		if len(plate) == 0 {
			return nil, 0, fmt.Errorf("%w: empty plate", ErrMalformed)
		}
		ts, ok := c.u32()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		return PlateMsg{Plate: plate, Timestamp: ts}, c.pos, nil

	case idWantHeartbeat:
		interval, ok := c.u32()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		return WantHeartbeatMsg{Interval: interval}, c.pos, nil

	case idIAmCamera:
		road, ok := c.u16()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		mile, ok := c.u16()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		limit, ok := c.u16()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		return IAmCameraMsg{Road: road, Mile: mile, Limit: limit}, c.pos, nil

	case idIAmDispatcher:
		n, ok := c.u8()
		if !ok {
			return nil, 0, ErrIncomplete
		}
		roads := make([]model.Road, 0, n)
		for i := 0; i < int(n); i++ {
			r, ok := c.u16()
			if !ok {
				return nil, 0, ErrIncomplete
			}
			roads = append(roads, r)
		}
		if len(roads) == 0 {
			return nil, 0, fmt.Errorf("%w: dispatcher declared no roads", ErrMalformed)
		}
		return IAmDispatcherMsg{Roads: roads}, c.pos, nil

	default:
		return nil, 0, fmt.Errorf("%w: unknown message id 0x%02x", ErrMalformed, id)
	}
}

// Decoder turns a stream of arbitrarily-chunked bytes into a sequence of
// Inbound messages. It buffers everything it's Fed and only ever consumes
// bytes that Decode confirmed form a complete frame — the same
// peek-before-consume discipline Atsika-aznet's Conn.Read uses on its
// frame header.
type Decoder struct {
	buf []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends newly-read bytes to the decode buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next attempts to decode one message from the buffered bytes. It returns
// ErrIncomplete when more input is needed.
func (d *Decoder) Next() (Inbound, error) {
	msg, n, err := Decode(d.buf)
	if err != nil {
		return nil, err
	}
	// Drop the consumed prefix. The remainder is small for this protocol
	// (a handful of fields at a time), so a copy is simpler and cheap
	// enough to prefer over a ring buffer.
	remaining := len(d.buf) - n
	copy(d.buf, d.buf[n:])
	d.buf = d.buf[:remaining]
	return msg, nil
}
