package encoders

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

const DefaultAddr = 0x42

type Register byte

const (
	RegStatus Register = iota
	RegSteer0
	RegSteer1
	RegSteer2
	RegSteer3
	RegDrive0
	RegDrive1
	RegDrive2
	RegDrive3
)

type StatusFlag uint16

const (
	StatusFault StatusFlag = 1 << iota
	StatusReady
)

var ErrNotReady = errors.New("encoder board not ready")

// port is the subset of *i2c.Dev that the board needs.
type port interface {
	Tx(w, r []byte) error
}

// I2CBoard is the encoder counter board on the I2C bus.  Counter registers
// are 16-bit big-endian and auto-increment, so all eight are read in one
// transaction starting at RegSteer0.
type I2CBoard struct {
	dev    port
	closer interface{ Close() error }

	acc Accumulator
	now func() time.Time
}

var _ Interface = (*I2CBoard)(nil)

// OpenI2C opens the board on the named bus ("" for the first bus found).
func OpenI2C(bus string, addr uint16) (*I2CBoard, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph host")
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open I2C bus %q", bus)
	}
	board := newI2CBoard(&i2c.Dev{Addr: addr, Bus: b})
	board.closer = b
	return board, nil
}

func newI2CBoard(dev port) *I2CBoard {
	return &I2CBoard{dev: dev, now: time.Now}
}

func (b *I2CBoard) Status() (StatusFlag, error) {
	var buf [2]byte
	if err := b.txWithRetries([]byte{byte(RegStatus)}, buf[:]); err != nil {
		return 0, err
	}
	return StatusFlag(binary.BigEndian.Uint16(buf[:])), nil
}

func (b *I2CBoard) ReadCounts() (Reading, error) {
	status, err := b.Status()
	if err != nil {
		return Reading{}, err
	}
	if status&StatusFault != 0 || status&StatusReady == 0 {
		return Reading{}, errors.Wrapf(ErrNotReady, "status=%#04x", uint16(status))
	}

	var buf [2 * NumChannels]byte
	if err := b.txWithRetries([]byte{byte(RegSteer0)}, buf[:]); err != nil {
		return Reading{}, err
	}
	var raw [NumChannels]int16
	for ch := range raw {
		raw[ch] = int16(binary.BigEndian.Uint16(buf[2*ch:]))
	}
	b.acc.Add(raw)
	return b.acc.Reading(b.now()), nil
}

// Zero restarts all counts from 0 at the next reading.
func (b *I2CBoard) Zero() {
	b.acc.Zero()
}

func (b *I2CBoard) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

const maxTries = 5

func (b *I2CBoard) txWithRetries(w, r []byte) error {
	var err error
	for tries := 0; tries < maxTries; tries++ {
		err = b.dev.Tx(w, r)
		if err == nil {
			if tries > 0 {
				fmt.Println("ENC: read succeeded after retries")
			}
			return nil
		}
		fmt.Println("ENC: failed to read encoder board:", err)
		time.Sleep(time.Millisecond)
	}
	return errors.Wrapf(err, "encoder board register %#02x failed after %d tries", w[0], maxTries)
}
