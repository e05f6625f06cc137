package bno08x

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePacket(index uint8, yaw int16) []byte {
	buf := make([]byte, PacketLen)
	buf[0], buf[1] = 0xaa, 0xaa
	buf[2] = index
	binary.LittleEndian.PutUint16(buf[3:], uint16(yaw))
	pitch := int16(-150)
	binary.LittleEndian.PutUint16(buf[5:], uint16(pitch))
	var checksum uint8
	for _, b := range buf[2 : PacketLen-1] {
		checksum += b
	}
	buf[PacketLen-1] = checksum
	return buf
}

func TestDecodePacket(t *testing.T) {
	r, err := DecodePacket(makePacket(7, -9050))
	require.NoError(t, err)
	assert.Equal(t, uint8(7), r.Index)
	assert.Equal(t, int16(-9050), r.Yaw)
	assert.Equal(t, int16(-150), r.Pitch)
	assert.Equal(t, -90.5, r.YawDegrees())

	bad := makePacket(7, 100)
	bad[PacketLen-1]++
	_, err = DecodePacket(bad)
	assert.ErrorIs(t, err, ErrBadChecksum)

	bad = makePacket(7, 100)
	bad[1] = 0
	_, err = DecodePacket(bad)
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = DecodePacket(bad[:5])
	assert.Error(t, err)
}

func TestReadPacketsResyncs(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0x01, 0xaa, 0x02})
	stream.Write(makePacket(1, 1000))
	corrupt := makePacket(2, 2000)
	corrupt[10] ^= 0xff
	stream.Write(corrupt)
	stream.Write(makePacket(3, 17950))

	r := New(DefaultDevice, DefaultBaud)
	err := r.readPackets(context.Background(), &stream)
	assert.Error(t, err, "stream ends with EOF")

	rep := r.CurrentReport()
	assert.Equal(t, uint8(3), rep.Index)
	assert.False(t, rep.Time.IsZero())
	assert.Equal(t, 179.5, r.HeadingDegrees())

	r.Zero()
	assert.Equal(t, 0.0, r.HeadingDegrees())
	r.setReport(Report{Yaw: -17950})
	assert.InDelta(t, 1.0, r.HeadingDegrees(), 1e-9, "heading wraps through ±180")
}

func TestFixed(t *testing.T) {
	assert.Equal(t, 12.5, Fixed(12.5).HeadingDegrees())
}

type closer struct {
	closed chan struct{}
}

func (c *closer) Close() error {
	close(c.closed)
	return nil
}

func TestCloseOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &closer{closed: make(chan struct{})}
	stop := closeOnCancel(ctx, c)
	defer stop()

	cancel()
	select {
	case <-c.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("port not closed after cancel")
	}
}

func TestCloseOnCancelStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &closer{closed: make(chan struct{})}
	stop := closeOnCancel(ctx, c)
	stop()
	cancel()

	select {
	case <-c.closed:
		t.Fatal("port closed after stop")
	case <-time.After(50 * time.Millisecond):
	}
}
