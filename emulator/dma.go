package emulator

// Port identifies one of the seven DMA channels
type Port uint32

const (
	PORT_MDEC_IN  Port = 0
	PORT_MDEC_OUT Port = 1
	PORT_GPU      Port = 2
	PORT_CDROM    Port = 3
	PORT_SPU      Port = 4
	PORT_PIO      Port = 5
	PORT_OTC      Port = 6
)

func portFromIndex(index uint32) Port {
	if index > uint32(PORT_OTC) {
		panicFmt("dma: invalid port %d", index)
	}
	return Port(index)
}

// Dma is the seven-channel DMA engine and its interrupt register
type Dma struct {
	IrqEn           bool // Master IRQ enable (interrupt register bit 23)
	ChannelIrqEn    uint8
	ChannelIrqFlags uint8
	ForceIrq        bool  // Interrupt register bit 15
	IrqDummy        uint8 // Bits [5:0], meaning unknown, echoed back unchanged
	Channels        [7]*Channel
}

// NewDma returns a reset DMA instance
func NewDma() *Dma {
	dma := &Dma{}
	for i := range dma.Channels {
		dma.Channels[i] = NewChannel()
	}
	return dma
}

// master_flag = force | (master_enable & OR_i(flags_i & enable_i))
func (dma *Dma) irq() bool {
	channelIrq := dma.ChannelIrqFlags & dma.ChannelIrqEn
	return dma.ForceIrq || (dma.IrqEn && channelIrq != 0)
}

// Interrupt returns the raw value of the interrupt register (§3)
func (dma *Dma) Interrupt() uint32 {
	var r uint32
	r |= uint32(dma.IrqDummy)
	r |= oneIfTrue(dma.ForceIrq) << 15
	r |= uint32(dma.ChannelIrqEn) << 16
	r |= oneIfTrue(dma.IrqEn) << 23
	r |= uint32(dma.ChannelIrqFlags) << 24
	r |= oneIfTrue(dma.irq()) << 31
	return r
}

// SetInterrupt writes the interrupt register. Writing 1 to a sticky
// flag bit (24..30) clears it (W1C); writing 0 preserves it
func (dma *Dma) SetInterrupt(val uint32) {
	dma.IrqDummy = uint8(val & 0x3f)
	dma.ForceIrq = (val>>15)&1 != 0
	dma.ChannelIrqEn = uint8((val >> 16) & 0x7f)
	dma.IrqEn = (val>>23)&1 != 0

	ack := uint8((val >> 24) & 0x7f)
	dma.ChannelIrqFlags &= ^ack
}

// Control returns the raw DMA control register, a packed view of
// each channel's enable/priority nibble
func (dma *Dma) Control() uint32 {
	var r uint32
	for i, ch := range dma.Channels {
		r |= ch.controlNibble() << uint(4*i)
	}
	return r
}

func (ch *Channel) controlNibble() uint32 {
	var r uint32
	r |= uint32(ch.priority) & 7
	r |= oneIfTrue(ch.Enable) << 3
	return r
}

// ReadReg returns the register value at off, where off is relative
// to the DMA control register address (0x1F801070)
func (dma *Dma) ReadReg(off uint32) uint32 {
	switch {
	case off == 0:
		return dma.Control()
	case off == 4:
		return dma.Interrupt()
	case off >= 0x10:
		chOff := off - 0x10
		ch := dma.Channels[chOff/16]
		switch chOff % 16 {
		case 0:
			return ch.Base
		case 4:
			return ch.BlockControl()
		case 8:
			return ch.Control()
		}
	}
	return 0
}

// WriteReg writes the register value at off, triggering a transfer
// if the write leaves the affected channel active
func (dma *Dma) WriteReg(off, val uint32, ram *Ram, gpu *Gpu) error {
	switch {
	case off == 0:
		for i, ch := range dma.Channels {
			nibble := (val >> uint(4*i)) & 0xf
			ch.priority = uint8(nibble & 7)
		}
		return nil
	case off == 4:
		dma.SetInterrupt(val)
		return nil
	case off >= 0x10:
		chOff := off - 0x10
		port := portFromIndex(chOff / 16)
		ch := dma.Channels[port]
		switch chOff % 16 {
		case 0:
			ch.SetBase(val)
		case 4:
			ch.SetBlockControl(val)
		case 8:
			ch.SetControl(val)
		}
		if ch.Active() {
			return dma.doTransfer(port, ram, gpu)
		}
		return nil
	}
	return nil
}

// Recommended runaway cap to guard against a malformed linked list
const dmaRunawayCap = 1 << 20

// doTransfer dispatches to the block or linked-list transfer, then
// marks the channel done and raises its IRQ flag if enabled
func (dma *Dma) doTransfer(port Port, ram *Ram, gpu *Gpu) error {
	ch := dma.Channels[port]

	var err error
	if ch.Sync == SYNC_LINKED_LIST {
		err = dma.doLinkedListTransfer(port, ram, gpu)
	} else {
		err = dma.doBlockTransfer(port, ram, gpu)
	}

	ch.Done()
	if (dma.ChannelIrqEn>>uint(port))&1 != 0 {
		dma.ChannelIrqFlags |= 1 << uint(port)
	}
	return err
}

// doBlockTransfer implements the Manual/Request transfer
func (dma *Dma) doBlockTransfer(port Port, ram *Ram, gpu *Gpu) error {
	ch := dma.Channels[port]

	step := int32(4)
	if ch.Step == STEP_DECREMENT {
		step = -4
	}

	valid, words := ch.TransferSize()
	if !valid {
		return &DmaError{Port: port, Reason: "block transfer requested in linked-list sync mode"}
	}

	addr := ch.Base & 0x1ffffc

	// Otc builds its ordering table in place: each entry holds the
	// address of the entry above it, and the entry nearest Base (the
	// table's last slot, visited first when Step is Backward) holds
	// the list terminator rather than a pointer
	if port == PORT_OTC {
		for i := uint32(0); i < words; i++ {
			addr = uint32(int64(addr)+int64(step)) & 0x1ffffc
			var srcWord uint32
			if i == 0 {
				srcWord = 0x00ffffff
			} else {
				srcWord = uint32(int64(addr)-int64(step)) & 0x1fffff
			}
			if err := ram.Write32(addr, srcWord); err != nil {
				return err
			}
		}
		return nil
	}

	for i := uint32(0); i < words; i++ {
		curAddr := addr & 0x1ffffc

		switch ch.Direction {
		case DIRECTION_FROM_RAM:
			w, err := ram.Read32(curAddr)
			if err != nil {
				return err
			}
			if err := dma.sendToDevice(port, w, gpu); err != nil {
				return err
			}
		case DIRECTION_TO_RAM:
			w, err := dma.receiveFromDevice(port, gpu)
			if err != nil {
				return err
			}
			if err := ram.Write32(curAddr, w); err != nil {
				return err
			}
		}

		addr = uint32(int64(addr) + int64(step))
	}
	return nil
}

// doLinkedListTransfer implements the linked-list transfer,
// valid only for the GPU channel with direction FromRam
func (dma *Dma) doLinkedListTransfer(port Port, ram *Ram, gpu *Gpu) error {
	ch := dma.Channels[port]

	if port != PORT_GPU {
		return &DmaError{Port: port, Reason: "linked-list sync mode is only valid for the GPU channel"}
	}
	if ch.Direction != DIRECTION_FROM_RAM {
		return &DmaError{Port: port, Reason: "linked-list transfer requires FromRam direction"}
	}

	addr := ch.Base & 0x1ffffc

	for iter := 0; ; iter++ {
		if iter >= dmaRunawayCap {
			return &DmaError{Port: port, Reason: "linked-list iteration cap exceeded", Runaway: true}
		}

		header, err := ram.Read32(addr)
		if err != nil {
			return err
		}
		size := header >> 24
		next := header & 0xffffff

		for i := uint32(1); i <= size; i++ {
			wordAddr := (addr + 4*i) & 0x1ffffc
			w, err := ram.Read32(wordAddr)
			if err != nil {
				return err
			}
			if err := gpu.PushGP0(w); err != nil {
				return err
			}
		}

		if next&0x800000 != 0 {
			break
		}
		addr = next & 0x1ffffc
	}
	return nil
}

func (dma *Dma) sendToDevice(port Port, word uint32, gpu *Gpu) error {
	if port == PORT_GPU {
		return gpu.PushGP0(word)
	}
	// other device ingresses (MDEC, SPU, PIO, CD-ROM) are external
	// collaborators; accept and drop the word
	return nil
}

func (dma *Dma) receiveFromDevice(port Port, gpu *Gpu) (uint32, error) {
	if port == PORT_GPU {
		return gpu.Read(), nil
	}
	return 0, nil
}
