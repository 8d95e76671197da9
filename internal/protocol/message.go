// Package protocol implements the speed-enforcement wire codec: a
// field-by-field binary framing with no outer length prefix — unlike
// Atsika-aznet's length+type frame header (frame.go) — specialized to the
// fixed set of inbound and outbound message shapes this protocol defines.
//
// All multi-byte integers are big-endian. Strings are a one-byte length
// followed by that many raw bytes (no terminator).
package protocol

import "github.com/atsika/speedtrap/internal/model"

// Message ids, as they appear on the wire.
const (
	idError         = 0x10
	idPlate         = 0x20
	idTicket        = 0x21
	idWantHeartbeat = 0x40
	idHeartbeat     = 0x41
	idIAmCamera     = 0x80
	idIAmDispatcher = 0x81
)

// Inbound is implemented by every message a client may send to the server.
type Inbound interface{ inbound() }

// PlateMsg (0x20): a camera reporting a plate sighting.
type PlateMsg struct {
	Plate     string
	Timestamp model.Timestamp
}

// WantHeartbeatMsg (0x40): request for periodic Heartbeat frames.
// Interval is in deciseconds (100ms units); zero disables heartbeats.
type WantHeartbeatMsg struct {
	Interval uint32
}

// IAmCameraMsg (0x80): registers the connection as a camera.
type IAmCameraMsg struct {
	Road  model.Road
	Mile  model.Mile
	Limit model.Limit
}

// IAmDispatcherMsg (0x81): registers the connection as a dispatcher for
// the given, non-empty set of roads.
type IAmDispatcherMsg struct {
	Roads []model.Road
}

func (PlateMsg) inbound()         {}
func (WantHeartbeatMsg) inbound() {}
func (IAmCameraMsg) inbound()     {}
func (IAmDispatcherMsg) inbound() {}

// Outbound is implemented by every message the server may send to a client.
type Outbound interface {
	// Encode appends this message's wire representation to buf.
	Encode(buf *Buffer)
}

// ErrorMsg (0x10): a human-readable protocol error, always followed by the
// connection closing.
type ErrorMsg struct {
	Message string
}

// TicketMsg (0x21): a speeding ticket delivered to a dispatcher.
type TicketMsg struct {
	Plate string
	Road  model.Road
	Mile1 model.Mile
	T1    model.Timestamp
	Mile2 model.Mile
	T2    model.Timestamp
	Speed model.Speed
}

// HeartbeatMsg (0x41): a periodic, fieldless keep-alive frame.
type HeartbeatMsg struct{}

// TicketFromModel converts a model.Ticket into its wire representation.
func TicketFromModel(t model.Ticket) TicketMsg {
	return TicketMsg{
		Plate: t.Plate,
		Road:  t.Road,
		Mile1: t.Mile1,
		T1:    t.T1,
		Mile2: t.Mile2,
		T2:    t.T2,
		Speed: t.Speed,
	}
}

func (m ErrorMsg) Encode(buf *Buffer) {
	buf.writeU8(idError)
	buf.writeStr(m.Message)
}

func (m TicketMsg) Encode(buf *Buffer) {
	buf.writeU8(idTicket)
	buf.writeStr(m.Plate)
	buf.writeU16(m.Road)
	buf.writeU16(m.Mile1)
	buf.writeU32(m.T1)
	buf.writeU16(m.Mile2)
	buf.writeU32(m.T2)
	buf.writeU16(m.Speed)
}

func (HeartbeatMsg) Encode(buf *Buffer) {
	buf.writeU8(idHeartbeat)
}
