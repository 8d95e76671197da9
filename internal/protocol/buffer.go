package protocol

import (
	"bytes"
	"encoding/binary"
)

// Buffer accumulates an encoded outbound frame. It is a thin wrapper over
// bytes.Buffer, kept as a distinct type so Outbound.Encode implementations
// cannot reach for anything but the grammar's primitives (u8/u16/u32/str) —
// the same discipline Atsika-aznet's BuildFrame applies to frame.go.
type Buffer struct {
	bytes.Buffer
}

func (b *Buffer) writeU8(v byte) { b.WriteByte(v) }

func (b *Buffer) writeU16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func (b *Buffer) writeU32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

// writeStr writes a u8-length-prefixed string. Callers are responsible for
// ensuring s fits in 255 bytes; every string this server emits either comes
// from a previously-decoded (and therefore already length-checked) inbound
// string, or is a short, fixed, implementation-chosen error message.
func (b *Buffer) writeStr(s string) {
	b.writeU8(byte(len(s)))
	b.WriteString(s)
}
