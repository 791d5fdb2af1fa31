package emulator

import (
	"fmt"
	"log"
)

// IrqCode is a CD-ROM controller interrupt cause code
type IrqCode uint8

const (
	IRQ_CODE_OK IrqCode = 3
)

// CdromRegisters is the CD-ROM controller's memory-mapped front: the
// index/command/parameter/response register file the Bus exposes at
// its cdrom I/O range, backed by a CdromDisk for the commands that
// actually touch disc data
type CdromRegisters struct {
	Index    uint8 // Some registers change meaning depending on the index
	Params   *FIFO // Command argument FIFO
	Response *FIFO // Command response FIFO
	IrqMask  uint8 // 5-bit interrupt mask
	IrqFlags uint8 // 5-bit interrupt flags

	Disk *CdromDisk
	Log  *log.Logger

	loc  CdromPosition
	data []byte // pending sector payload, drained a byte at a time
}

// NewCdromRegisters wires the register file to disk. logger may be
// nil, in which case log.Default() is used
func NewCdromRegisters(disk *CdromDisk, logger *log.Logger) *CdromRegisters {
	if logger == nil {
		logger = log.Default()
	}
	return &CdromRegisters{
		Params:   NewFIFO(),
		Response: NewFIFO(),
		Disk:     disk,
		Log:      logger,
	}
}

func (cdrom *CdromRegisters) Status() uint8 {
	r := cdrom.Index
	r |= oneIfTrueU8(len(cdrom.data) == 0) << 2 // TODO: distinguish XA-ADPCM FIFO from data FIFO
	r |= oneIfTrueU8(cdrom.Params.IsEmpty()) << 3
	r |= oneIfTrueU8(cdrom.Params.IsFull()) << 4
	r |= oneIfTrueU8(cdrom.Response.IsEmpty()) << 5
	r |= oneIfTrueU8(len(cdrom.data) > 0) << 6
	return r
}

func oneIfTrueU8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func (cdrom *CdromRegisters) Irq() bool {
	return cdrom.IrqFlags&cdrom.IrqMask != 0
}

func (cdrom *CdromRegisters) triggerIrq(irq IrqCode) {
	cdrom.IrqFlags = uint8(irq)
}

func (cdrom *CdromRegisters) SetIndex(index uint8) {
	cdrom.Index = index & 3
}

func (cdrom *CdromRegisters) AcknowledgeIrq(val uint8) {
	cdrom.IrqFlags &= ^val
}

func (cdrom *CdromRegisters) SetIrqMask(val uint8) {
	cdrom.IrqMask = val & 0x1f
}

func (cdrom *CdromRegisters) PushParam(param uint8) {
	if cdrom.Params.IsFull() {
		cdrom.Log.Printf("cdrom: dropped param 0x%02x, FIFO full", param)
		return
	}
	cdrom.Params.Push(param)
}

func (cdrom *CdromRegisters) Command(cmd uint8) {
	cdrom.Response.Clear()

	switch cmd {
	case 0x01:
		cdrom.commandGetStat()
	case 0x02:
		cdrom.commandSetLoc()
	case 0x06:
		cdrom.commandReadN()
	case 0x19:
		cdrom.commandTest()
	default:
		cdrom.Log.Printf("cdrom: unhandled command 0x%02x", cmd)
	}

	cdrom.Params.Clear()
}

func (cdrom *CdromRegisters) commandGetStat() {
	cdrom.Response.Push(0x00)
	cdrom.triggerIrq(IRQ_CODE_OK)
}

func (cdrom *CdromRegisters) commandSetLoc() {
	if cdrom.Params.Length() != 3 {
		cdrom.Log.Printf("cdrom: SetLoc expected 3 params, got %d", cdrom.Params.Length())
		return
	}
	cdrom.loc = CdromPositionFromBcd(cdrom.Params.Pop(), cdrom.Params.Pop(), cdrom.Params.Pop())
	cdrom.Response.Push(0x00)
	cdrom.triggerIrq(IRQ_CODE_OK)
}

// commandReadN reads the sector at the most recent SetLoc position
// and queues its payload for byte-wise drain through the data port
func (cdrom *CdromRegisters) commandReadN() {
	sector, err := cdrom.Disk.Read(cdrom.loc)
	if err != nil {
		cdrom.Log.Printf("cdrom: ReadN at %s: %v", cdrom.loc, err)
		cdrom.Response.Push(0x01) // error bit
		return
	}
	cdrom.data = append([]byte(nil), sector.Bytes()...)
	cdrom.loc = cdrom.loc.Next()
	cdrom.Response.Push(0x00)
	cdrom.triggerIrq(IRQ_CODE_OK)
}

func (cdrom *CdromRegisters) commandTest() {
	if cdrom.Params.Length() != 1 {
		cdrom.Log.Printf("cdrom: invalid number of parameters for Test (expected 1, got %d)", cdrom.Params.Length())
		return
	}
	cmd := cdrom.Params.Pop()
	switch cmd {
	case 0x20:
		cdrom.testVersion()
	default:
		cdrom.Log.Printf("cdrom: unhandled Test subcommand 0x%02x", cmd)
	}
}

func (cdrom *CdromRegisters) testVersion() {
	cdrom.Response.Push(0x97) // year
	cdrom.Response.Push(0x01) // month
	cdrom.Response.Push(0x10) // day
	cdrom.Response.Push(0xc2) // version
	cdrom.triggerIrq(IRQ_CODE_OK)
}

// popData drains one byte of the pending sector payload, returning 0
// once it's exhausted
func (cdrom *CdromRegisters) popData() byte {
	if len(cdrom.data) == 0 {
		return 0
	}
	b := cdrom.data[0]
	cdrom.data = cdrom.data[1:]
	return b
}

func (cdrom *CdromRegisters) Load(size AccessSize, offset uint32) byte {
	if size != ACCESS_BYTE {
		panicFmt("cdrom: tried to load %d bytes (expected %d)", size, ACCESS_BYTE)
	}

	switch offset {
	case 0:
		return cdrom.Status()
	case 1:
		if cdrom.Response.IsEmpty() {
			cdrom.Log.Printf("cdrom: response FIFO read while empty")
		}
		return cdrom.Response.Pop()
	case 2:
		return cdrom.popData()
	case 3:
		switch cdrom.Index {
		case 1:
			return cdrom.IrqFlags
		default:
			return 0xe0 | cdrom.IrqFlags
		}
	}
	panic(fmt.Sprintf("cdrom: load at unhandled offset %d", offset))
}

func (cdrom *CdromRegisters) Store(offset uint32, size AccessSize, val byte) {
	if size != ACCESS_BYTE {
		panicFmt("cdrom: tried to store %d bytes (expected %d)", size, ACCESS_BYTE)
	}

	switch offset {
	case 0:
		cdrom.SetIndex(val)
	case 1:
		switch cdrom.Index {
		case 0:
			cdrom.Command(val)
		default:
			cdrom.Log.Printf("cdrom: unhandled store at offset 1, index %d", cdrom.Index)
		}
	case 2:
		switch cdrom.Index {
		case 0:
			cdrom.PushParam(val)
		case 1:
			cdrom.SetIrqMask(val)
		default:
			cdrom.Log.Printf("cdrom: unhandled store at offset 2, index %d", cdrom.Index)
		}
	case 3:
		switch cdrom.Index {
		case 1:
			cdrom.AcknowledgeIrq(val & 0x1f)
			if val&0x40 != 0 {
				cdrom.Params.Clear()
			}
		default:
			cdrom.Log.Printf("cdrom: unhandled store at offset 3, index %d", cdrom.Index)
		}
	default:
		cdrom.Log.Printf("cdrom: store at unhandled offset %d", offset)
	}
}
