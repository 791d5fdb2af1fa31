package emulator

import "log"

// Console owns every subsystem and lends them to each other through
// explicit method arguments (Bus, Dma) rather than storing
// back-references, so each subsystem stays independently testable
type Console struct {
	Bios *Bios
	Ram  *Ram
	Dma  *Dma
	Gpu  *Gpu
	Cd   *CdromRegisters
	Disk *CdromDisk
	Bus  *Bus
	Dbg  *Debugger

	Log *log.Logger
}

// NewConsole wires a fresh Console around an already-loaded Bios.
// disk may be nil, in which case CD-ROM reads behave as if no disc is
// inserted. logger may be nil, in which case log.Default() is used
func NewConsole(bios *Bios, disk *CdromDisk, logger *log.Logger) *Console {
	if logger == nil {
		logger = log.Default()
	}
	if disk == nil {
		disk = NewCdromDisk(logger)
	}

	ram := NewRam()
	dma := NewDma()
	gpu := NewGpu()
	cd := NewCdromRegisters(disk, logger)
	dbg := NewDebugger(logger)
	bus := NewBus(bios, ram, dma, gpu, cd, logger)
	bus.AttachDebugger(dbg)

	return &Console{
		Bios: bios,
		Ram:  ram,
		Dma:  dma,
		Gpu:  gpu,
		Cd:   cd,
		Disk: disk,
		Bus:  bus,
		Dbg:  dbg,
		Log:  logger,
	}
}

// Close releases the inserted disc's file handles, if any
func (c *Console) Close() error {
	return c.Disk.Close()
}
