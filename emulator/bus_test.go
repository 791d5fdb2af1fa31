package emulator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestBus(t *testing.T) *Bus {
	data := make([]byte, BIOS_SIZE)
	data[0], data[1], data[2], data[3] = 0x13, 0x00, 0x00, 0x0b
	bios, err := LoadBios(bytes.NewReader(data))
	assert.NoError(t, err)

	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()
	cd := NewCdromRegisters(NewCdromDisk(nil), nil)
	return NewBus(bios, ram, dma, gpu, cd, nil)
}

// scenario 1: BIOS boot read
func TestBusBiosBootRead(t *testing.T) {
	bus := newTestBus(t)

	v, err := bus.Read32(0xbfc00000)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x0b000013), v)
}

// scenario 2: RAM wraparound through the KSEG0 mirror
func TestBusRamWraparound(t *testing.T) {
	bus := newTestBus(t)

	assert.NoError(t, bus.Write32(0x001ffffc, 0xdeadbeef))

	v, err := bus.Read32(0x001ffffc)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)

	v, err = bus.Read32(0x80000000 + 0x001ffffc)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)
}

func TestBusUnmappedReadErrors(t *testing.T) {
	bus := newTestBus(t)

	_, err := bus.Read32(0x00800000)
	assert.Error(t, err)
	var busErr *BusError
	assert.ErrorAs(t, err, &busErr)
	assert.Equal(t, "unmapped", busErr.Reason)
}

func TestBusGp0ShortcutWritesReachGpu(t *testing.T) {
	bus := newTestBus(t)

	// GP0(0xe3) sets the drawing area's left edge from its low 10 bits
	assert.NoError(t, bus.Write32(0x1f801810, uint32(0xe3)<<24|5))
	assert.Equal(t, uint16(5), bus.Gpu.DrawingAreaLeft)
	assert.NoError(t, bus.Write32(0x1f801028, uint32(0xe3)<<24|7))
	assert.Equal(t, uint16(7), bus.Gpu.DrawingAreaLeft)
}
