package server

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestMultiDayTicketCoversBothDaysEndToEnd drives a pair of observations
// that straddle a day boundary through real connections and verifies the
// resulting ticket suppresses further tickets on either day it covers.
func TestMultiDayTicketCoversBothDaysEndToEnd(t *testing.T) {
	core := testCore()

	dispatcherSrv, dispatcherClient := net.Pipe()
	go newConnection("conn-dispatcher", dispatcherSrv, core).run()
	writeIAmDispatcher(t, dispatcherClient, 123)

	camASrv, camAClient := net.Pipe()
	go newConnection("conn-a", camASrv, core).run()
	writeIAmCamera(t, camAClient, 123, 8, 60)

	camBSrv, camBClient := net.Pipe()
	go newConnection("conn-b", camBSrv, core).run()
	writeIAmCamera(t, camBClient, 123, 11, 60)

	// t=86340 is day 0 (86340/86400=0); t=86460 is day 1 (86460/86400=1).
	// dt=120, dm=3 -> 90mph, over the 60mph limit, and the pair spans both
	// days.
	writePlate(t, camAClient, "X", 86340)
	writePlate(t, camBClient, "X", 86460)

	id := readByte(t, dispatcherClient)
	require.Equal(t, byte(0x21), id)
	_ = readString(t, dispatcherClient)
	rest := readN(t, dispatcherClient, 2+2+4+2+4+2)
	require.Equal(t, uint32(86340), binary.BigEndian.Uint32(rest[4:]))
	require.Equal(t, uint32(86460), binary.BigEndian.Uint32(rest[10:]))

	// A further speeding pair entirely within day 0 must be suppressed,
	// since the first ticket already covers day 0 (and day 1).
	camCSrv, camCClient := net.Pipe()
	go newConnection("conn-c", camCSrv, core).run()
	writeIAmCamera(t, camCClient, 123, 20, 60)
	writePlate(t, camCClient, "X", 200)

	camDSrv, camDClient := net.Pipe()
	go newConnection("conn-d", camDSrv, core).run()
	writeIAmCamera(t, camDClient, 123, 23, 60)
	writePlate(t, camDClient, "X", 260) // dt=60, dm=3 -> 180mph, would ticket but for suppression

	buf := make([]byte, 1)
	done := make(chan struct{})
	go func() {
		_, _ = dispatcherClient.Read(buf)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("a second ticket was delivered when day 0 was already suppressed")
	case <-time.After(100 * time.Millisecond):
	}

	camAClient.Close()
	camBClient.Close()
	camCClient.Close()
	camDClient.Close()
	dispatcherClient.Close()
}

// TestOutOfOrderArrivalProducesCorrectlyOrderedTicketEndToEnd drives three
// observations for the same plate arriving out of timestamp order through
// real connections and verifies the resulting ticket orders the earlier and
// later observations correctly regardless of arrival order.
func TestOutOfOrderArrivalProducesCorrectlyOrderedTicketEndToEnd(t *testing.T) {
	core := testCore()

	dispatcherSrv, dispatcherClient := net.Pipe()
	go newConnection("conn-dispatcher", dispatcherSrv, core).run()
	writeIAmDispatcher(t, dispatcherClient, 7)

	camASrv, camAClient := net.Pipe()
	go newConnection("conn-a", camASrv, core).run()
	writeIAmCamera(t, camAClient, 7, 10, 60)

	camBSrv, camBClient := net.Pipe()
	go newConnection("conn-b", camBSrv, core).run()
	writeIAmCamera(t, camBClient, 7, 11, 60)

	camCSrv, camCClient := net.Pipe()
	go newConnection("conn-c", camCSrv, core).run()
	writeIAmCamera(t, camCClient, 7, 10, 60) // same mile as camA: the (100,200) and (50,200) pairs never speed

	// Arrival order is t=100, then t=50, then t=200 — out of order. The
	// store must keep them sorted ascending so the detector pairs mile 11
	// (t=50) with mile 10 (t=100) as earlier/later, not the arrival order.
	// Only that pair exceeds the limit, so the test is deterministic
	// regardless of which connection's goroutine the runtime schedules first.
	writePlate(t, camAClient, "Y", 100)
	writePlate(t, camBClient, "Y", 50)
	writePlate(t, camCClient, "Y", 200)

	id := readByte(t, dispatcherClient)
	require.Equal(t, byte(0x21), id)
	plate := readString(t, dispatcherClient)
	rest := readN(t, dispatcherClient, 2+2+4+2+4+2)

	require.Equal(t, "Y", plate)
	require.Equal(t, uint16(11), binary.BigEndian.Uint16(rest[2:]))
	require.Equal(t, uint32(50), binary.BigEndian.Uint32(rest[4:]))
	require.Equal(t, uint16(10), binary.BigEndian.Uint16(rest[8:]))
	require.Equal(t, uint32(100), binary.BigEndian.Uint32(rest[10:]))
	require.Equal(t, uint16(7200), binary.BigEndian.Uint16(rest[14:]))

	camAClient.Close()
	camBClient.Close()
	camCClient.Close()
	dispatcherClient.Close()
}
