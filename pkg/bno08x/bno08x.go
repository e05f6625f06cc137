// Package bno08x reads yaw from a BNO08x IMU running in UART-RVC mode and
// provides it as the chassis heading.
package bno08x

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/angle"
)

const (
	DefaultDevice = "/dev/ttyAMA0"
	DefaultBaud   = 115200

	PacketLen = 19
)

var (
	header = []byte{0xaa, 0xaa}

	ErrBadHeader   = errors.New("bad packet header")
	ErrBadChecksum = errors.New("bad packet checksum")
)

type Report struct {
	Time   time.Time
	Index  uint8
	Yaw    int16 // hundredths of a degree
	Pitch  int16
	Roll   int16
	XAccel int16
	YAccel int16
	ZAccel int16
}

func (r Report) YawDegrees() float64 {
	return float64(r.Yaw) / 100.0
}

func (r Report) String() string {
	return fmt.Sprintf("[%02x] Y:%7.2f P:%7.2f R:%7.2f X:%7.2f Y:%7.2f Z:%7.2f",
		r.Index, float64(r.Yaw)/100.0, float64(r.Pitch)/100.0, float64(r.Roll)/100.0,
		float64(r.XAccel)/100.0, float64(r.YAccel)/100.0, float64(r.ZAccel)/100.0)
}

// DecodePacket decodes one 19-byte RVC packet: header, index, six
// little-endian int16 fields, three reserved bytes and an additive checksum
// over everything after the header.
func DecodePacket(buf []byte) (Report, error) {
	if len(buf) < PacketLen {
		return Report{}, errors.Errorf("short packet: %d bytes", len(buf))
	}
	if !bytes.Equal(buf[:2], header) {
		return Report{}, ErrBadHeader
	}
	var checksum uint8
	for _, b := range buf[2 : PacketLen-1] {
		checksum += b
	}
	if buf[PacketLen-1] != checksum {
		return Report{}, errors.Wrapf(ErrBadChecksum, "%#02x != %#02x", buf[PacketLen-1], checksum)
	}
	field := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(buf[3+2*i:]))
	}
	return Report{
		Index:  buf[2],
		Yaw:    field(0),
		Pitch:  field(1),
		Roll:   field(2),
		XAccel: field(3),
		YAccel: field(4),
		ZAccel: field(5),
	}, nil
}

// Reader keeps the latest report from the IMU.  Loop owns the serial port;
// the accessors may be called from any goroutine.
type Reader struct {
	Device string
	Baud   int

	lock       sync.Mutex
	lastReport Report
	offset     float64
}

func New(device string, baud int) *Reader {
	return &Reader{Device: device, Baud: baud}
}

func (r *Reader) CurrentReport() Report {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.lastReport
}

// HeadingDegrees returns the yaw relative to the last Zero, in (-180, 180].
func (r *Reader) HeadingDegrees() float64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return angle.FromFloat(r.lastReport.YawDegrees()).Sub(angle.FromFloat(r.offset)).Float()
}

// Zero makes the current yaw read as heading 0.
func (r *Reader) Zero() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.offset = r.lastReport.YawDegrees()
}

// Loop reads reports until ctx is done, reopening the port after failures.
func (r *Reader) Loop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer fmt.Println("BNO08X: loop exited")
	for ctx.Err() == nil {
		err := r.openAndRead(ctx)
		if ctx.Err() != nil {
			return
		}
		fmt.Println("BNO08X: loop stopped; will retry:", err)
		time.Sleep(100 * time.Millisecond)
	}
}

func (r *Reader) openAndRead(ctx context.Context) error {
	s, err := serial.Open(r.Device, &serial.Mode{BaudRate: r.Baud})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", r.Device)
	}
	defer s.Close()
	// A blocked read only returns once the port is closed.
	stop := closeOnCancel(ctx, s)
	defer stop()
	return r.readPackets(ctx, s)
}

// closeOnCancel closes c when ctx is done, unless stop is called first.
func closeOnCancel(ctx context.Context, c io.Closer) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func (r *Reader) readPackets(ctx context.Context, in io.Reader) error {
	br := bufio.NewReader(in)
	buf := make([]byte, PacketLen)
	for ctx.Err() == nil {
		if err := resync(br); err != nil {
			return err
		}
		for ctx.Err() == nil {
			if _, err := io.ReadFull(br, buf); err != nil {
				return errors.Wrap(err, "failed to read from serial")
			}
			report, err := DecodePacket(buf)
			if err != nil {
				fmt.Println("BNO08X: lost sync:", err)
				break
			}
			report.Time = time.Now()
			r.setReport(report)
		}
	}
	return ctx.Err()
}

// resync discards bytes until the reader is positioned at a packet header.
func resync(br *bufio.Reader) error {
	for {
		buf, err := br.Peek(2)
		if err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
		if bytes.Equal(buf, header) {
			return nil
		}
		if _, err := br.Discard(1); err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
	}
}

func (r *Reader) setReport(report Report) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.lastReport = report
}

// Fixed is a heading source that never moves, for benches without an IMU.
type Fixed float64

func (f Fixed) HeadingDegrees() float64 { return float64(f) }
