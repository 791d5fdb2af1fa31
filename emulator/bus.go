package emulator

import "log"

// regionMask mirrors KUSEG/KSEG0/KSEG1/KSEG2 onto the same underlying
// 512MB physical space, indexed by addr>>29
var regionMask = [8]uint32{
	0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, // KUSEG: 2048MB
	0x7fffffff, // KSEG0: 512MB, cached mirror of KUSEG[0:512MB]
	0x1fffffff, // KSEG1: 512MB, uncached mirror of KUSEG[0:512MB]
	0xffffffff, 0xffffffff, // KSEG2: 1024MB, I/O + cache control
}

func maskRegion(addr uint32) uint32 {
	return addr & regionMask[addr>>29]
}

// Bus decodes 32-bit physical addresses into region-specific
// reads/writes, and routes memory-mapped register accesses to the
// owning peripheral
type Bus struct {
	Bios *Bios
	Ram  *Ram
	Dma  *Dma
	Gpu  *Gpu
	Cd   *CdromRegisters
	Log  *log.Logger

	dbg *Debugger
}

// NewBus wires the peripherals into one decoder. logger may be nil,
// in which case log.Default() is used
func NewBus(bios *Bios, ram *Ram, dma *Dma, gpu *Gpu, cd *CdromRegisters, logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{Bios: bios, Ram: ram, Dma: dma, Gpu: gpu, Cd: cd, Log: logger}
}

// AttachDebugger installs Bus-level read/write watchpoints
func (bus *Bus) AttachDebugger(dbg *Debugger) {
	bus.dbg = dbg
}

func (bus *Bus) watchRead(addr uint32) {
	if bus.dbg != nil {
		bus.dbg.memoryRead(addr)
	}
}

func (bus *Bus) watchWrite(addr uint32) {
	if bus.dbg != nil {
		bus.dbg.memoryWrite(addr)
	}
}

// Read32 returns the little-endian word at the physical address addr
func (bus *Bus) Read32(addr uint32) (uint32, error) {
	bus.watchRead(addr)
	a := maskRegion(addr)

	switch {
	case RAM_RANGE.Contains(a):
		return bus.Ram.Read32(RAM_RANGE.Offset(a))
	case BIOS_RANGE.Contains(a):
		return bus.Bios.Load32(BIOS_RANGE.Offset(a))
	case IO_RANGE.Contains(a):
		return bus.readIO32(IO_RANGE.Offset(a))
	case EXPANSION1_RANGE.Contains(a):
		return 0xffffffff, nil
	case CACHE_CONTROL.Contains(a):
		return 0, nil
	default:
		return 0, &BusError{Addr: addr, Width: ACCESS_WORD, Op: BUS_OP_READ, Reason: "unmapped"}
	}
}

// Read16 returns the little-endian halfword at addr
func (bus *Bus) Read16(addr uint32) (uint16, error) {
	bus.watchRead(addr)
	a := maskRegion(addr)

	switch {
	case RAM_RANGE.Contains(a):
		return bus.Ram.Read16(RAM_RANGE.Offset(a))
	case IO_RANGE.Contains(a):
		v, err := bus.readIO32(IO_RANGE.Offset(a) &^ 3)
		return uint16(v), err
	case EXPANSION1_RANGE.Contains(a):
		return 0xffff, nil
	default:
		return 0, &BusError{Addr: addr, Width: ACCESS_HALFWORD, Op: BUS_OP_READ, Reason: "unmapped"}
	}
}

// Read8 returns the byte at addr
func (bus *Bus) Read8(addr uint32) (byte, error) {
	bus.watchRead(addr)
	a := maskRegion(addr)

	switch {
	case RAM_RANGE.Contains(a):
		return bus.Ram.Read8(RAM_RANGE.Offset(a))
	case BIOS_RANGE.Contains(a):
		return bus.Bios.Load8(BIOS_RANGE.Offset(a))
	case IO_RANGE.Contains(a):
		off := IO_RANGE.Offset(a)
		if cdromIoRange.Contains(off) {
			return bus.Cd.Load(ACCESS_BYTE, cdromIoRange.Offset(off)), nil
		}
		return 0xff, nil
	case EXPANSION1_RANGE.Contains(a):
		return 0xff, nil
	default:
		return 0, &BusError{Addr: addr, Width: ACCESS_BYTE, Op: BUS_OP_READ, Reason: "unmapped"}
	}
}

// Write32 stores val, little-endian, at the physical address addr
func (bus *Bus) Write32(addr, val uint32) error {
	bus.watchWrite(addr)
	a := maskRegion(addr)

	switch {
	case RAM_RANGE.Contains(a):
		return bus.Ram.Write32(RAM_RANGE.Offset(a), val)
	case IO_RANGE.Contains(a):
		return bus.writeIO32(IO_RANGE.Offset(a), val)
	case CACHE_CONTROL.Contains(a):
		return nil
	case EXPANSION1_RANGE.Contains(a):
		return nil
	default:
		return &BusError{Addr: addr, Width: ACCESS_WORD, Op: BUS_OP_WRITE, Reason: "unmapped"}
	}
}

// Write16 stores val, little-endian, at addr
func (bus *Bus) Write16(addr uint32, val uint16) error {
	bus.watchWrite(addr)
	a := maskRegion(addr)

	switch {
	case RAM_RANGE.Contains(a):
		return bus.Ram.Write16(RAM_RANGE.Offset(a), val)
	case IO_RANGE.Contains(a):
		return bus.writeIO32(IO_RANGE.Offset(a)&^3, uint32(val))
	default:
		return &BusError{Addr: addr, Width: ACCESS_HALFWORD, Op: BUS_OP_WRITE, Reason: "unmapped"}
	}
}

// Write8 stores val at addr
func (bus *Bus) Write8(addr uint32, val byte) error {
	bus.watchWrite(addr)
	a := maskRegion(addr)

	switch {
	case RAM_RANGE.Contains(a):
		return bus.Ram.Write8(RAM_RANGE.Offset(a), val)
	case IO_RANGE.Contains(a):
		off := IO_RANGE.Offset(a)
		if cdromIoRange.Contains(off) {
			bus.Cd.Store(cdromIoRange.Offset(off), ACCESS_BYTE, val)
			return nil
		}
		return nil
	default:
		return &BusError{Addr: addr, Width: ACCESS_BYTE, Op: BUS_OP_WRITE, Reason: "unmapped"}
	}
}

// Sub-ranges of IO_RANGE, offsets relative to 0x1f801000:
// DMA control(0x70)/interrupt(0x74)/per-channel(0x80-0xff) form one
// contiguous block; the GPU shortcut and GPU register pair sit
// elsewhere in the same 4KB window
var (
	dmaIoRange      = NewRange(0x70, 0x100-0x70)
	gpuShortcutAddr = uint32(0x28)
	gpuIoRange      = NewRange(0x810, 8)
	cdromIoRange    = NewRange(0x800, 4)
)

func (bus *Bus) readIO32(off uint32) (uint32, error) {
	switch {
	case dmaIoRange.Contains(off):
		return bus.Dma.ReadReg(dmaIoRange.Offset(off)), nil
	case gpuIoRange.Contains(off):
		switch gpuIoRange.Offset(off) {
		case 0:
			return bus.Gpu.Read(), nil
		case 4:
			return bus.Gpu.Status(), nil
		}
	}
	bus.Log.Printf("bus: unhandled 32-bit I/O read at offset 0x%x", off)
	return 0, nil
}

func (bus *Bus) writeIO32(off, val uint32) error {
	switch {
	case off == gpuShortcutAddr:
		return bus.Gpu.GP0(val)
	case dmaIoRange.Contains(off):
		return bus.Dma.WriteReg(dmaIoRange.Offset(off), val, bus.Ram, bus.Gpu)
	case gpuIoRange.Contains(off):
		switch gpuIoRange.Offset(off) {
		case 0:
			return bus.Gpu.GP0(val)
		case 4:
			return bus.Gpu.GP1(val)
		}
	}
	bus.Log.Printf("bus: unhandled 32-bit I/O write of 0x%x at offset 0x%x", val, off)
	return nil
}
