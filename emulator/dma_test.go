package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scenario 3: OTC DMA clear
func TestDmaOtcClear(t *testing.T) {
	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()

	ch := dma.Channels[PORT_OTC]
	ch.SetBase(0x00100000)
	ch.SetBlockControl(4) // manual word count, block size = 4
	ch.Step = STEP_DECREMENT
	ch.Direction = DIRECTION_FROM_RAM
	ch.Sync = SYNC_MANUAL
	ch.Enable = true
	ch.Trigger = true

	err := dma.doTransfer(PORT_OTC, ram, gpu)
	assert.NoError(t, err)

	v, _ := ram.Read32(0x0ffffc)
	assert.Equal(t, uint32(0x00ffffff), v)
	v, _ = ram.Read32(0x0ffff8)
	assert.Equal(t, uint32(0x0ffffc), v)
	v, _ = ram.Read32(0x0ffff4)
	assert.Equal(t, uint32(0x0ffff8), v)
	v, _ = ram.Read32(0x0ffff0)
	assert.Equal(t, uint32(0x0ffff4), v)

	assert.False(t, ch.Enable)
	assert.False(t, ch.Trigger)
}

// scenario 6: GPU linked-list DMA
func TestDmaLinkedListGpu(t *testing.T) {
	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()

	const next = 0x2000
	ram.Write32(0x1000, 0x01000000|next)
	ram.Write32(0x1004, 0xaabbccdd)
	ram.Write32(next, 0x00ffffff)

	ch := dma.Channels[PORT_GPU]
	ch.SetBase(0x1000)
	ch.Direction = DIRECTION_FROM_RAM
	ch.Sync = SYNC_LINKED_LIST
	ch.Enable = true
	ch.Trigger = true

	err := dma.doTransfer(PORT_GPU, ram, gpu)
	assert.NoError(t, err)

	// opcode 0xaa is unrecognized and consumed as a bare NOP; what
	// matters here is that it reached the GP0 ingress at all and the
	// linked list still walked to its terminator afterward
	assert.Equal(t, uint32(0xaabbccdd), gpu.GP0Command.Get(0))
}

func TestDmaLinkedListWrongDirection(t *testing.T) {
	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()

	ch := dma.Channels[PORT_GPU]
	ch.Direction = DIRECTION_TO_RAM
	ch.Sync = SYNC_LINKED_LIST

	err := dma.doLinkedListTransfer(PORT_GPU, ram, gpu)
	assert.Error(t, err)
	var dmaErr *DmaError
	assert.ErrorAs(t, err, &dmaErr)
}

func TestDmaLinkedListRunawayCap(t *testing.T) {
	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()

	// a self-referencing header never sets the terminator bit
	ram.Write32(0x1000, 0x00000000)

	ch := dma.Channels[PORT_GPU]
	ch.SetBase(0x1000)
	ch.Direction = DIRECTION_FROM_RAM
	ch.Sync = SYNC_LINKED_LIST

	err := dma.doLinkedListTransfer(PORT_GPU, ram, gpu)
	assert.Error(t, err)
	var dmaErr *DmaError
	assert.ErrorAs(t, err, &dmaErr)
	assert.True(t, dmaErr.Runaway)
}

// DMA IRQ master bit invariant
func TestDmaIrqMasterBit(t *testing.T) {
	dma := NewDma()

	dma.ForceIrq = true
	assert.True(t, dma.irq())
	dma.ForceIrq = false
	assert.False(t, dma.irq())

	dma.IrqEn = true
	dma.ChannelIrqEn = 1 << uint(PORT_GPU)
	dma.ChannelIrqFlags = 1 << uint(PORT_GPU)
	assert.True(t, dma.irq())

	dma.ChannelIrqEn = 0
	assert.False(t, dma.irq())
}

func TestDmaInterruptWriteOneClearsStickyFlag(t *testing.T) {
	dma := NewDma()
	dma.ChannelIrqFlags = 0x7f

	// writing a 1 to a sticky flag bit clears it; writing 0 preserves it
	dma.SetInterrupt(1 << 24) // ack channel 0 only
	assert.Equal(t, uint8(0x7e), dma.ChannelIrqFlags)

	before := dma.ChannelIrqFlags
	dma.SetInterrupt(0)
	assert.Equal(t, before, dma.ChannelIrqFlags)
}

// invariant: Manual transfer, FromRam, Forward reads exactly the
// words [base, base+4, ..., base+4(N-1)] mod 2MiB
func TestDmaManualBlockTransferWordOrder(t *testing.T) {
	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()

	for i := uint32(0); i < 4; i++ {
		ram.Write32(0x2000+4*i, 0x10000000+i)
	}

	ch := dma.Channels[PORT_GPU]
	ch.SetBase(0x2000)
	ch.SetBlockControl(4)
	ch.Direction = DIRECTION_FROM_RAM
	ch.Step = STEP_INCREMENT
	ch.Sync = SYNC_MANUAL
	ch.Enable = true
	ch.Trigger = true

	err := dma.doTransfer(PORT_GPU, ram, gpu)
	assert.NoError(t, err)
	// the first word (0x10000000) is consumed as the command header;
	// confirm it's the exact value that was latched
	assert.Equal(t, uint32(0x10000000), gpu.GP0Command.Get(0))
}
