package emulator

// Main PlayStation RAM: 2MB
const RAM_SIZE uint32 = 2 * 1024 * 1024

// Ram is the console's fixed, zero-initialized 2 MiB main memory
type Ram struct {
	data [RAM_SIZE]byte
}

// NewRam returns a freshly zeroed Ram
func NewRam() *Ram {
	return &Ram{}
}

func (ram *Ram) checkBounds(addr uint32, size AccessSize, op BusOp) error {
	if uint64(addr)+uint64(size) > uint64(RAM_SIZE) {
		return &BusError{Addr: addr, Width: size, Op: op, Reason: "unmapped"}
	}
	if size != ACCESS_BYTE && addr%uint32(size) != 0 {
		return &BusError{Addr: addr, Width: size, Op: op, Reason: "unaligned"}
	}
	return nil
}

// Read32 returns the little-endian word at addr
func (ram *Ram) Read32(addr uint32) (uint32, error) {
	if err := ram.checkBounds(addr, ACCESS_WORD, BUS_OP_READ); err != nil {
		return 0, err
	}
	return uint32(ram.data[addr]) |
		uint32(ram.data[addr+1])<<8 |
		uint32(ram.data[addr+2])<<16 |
		uint32(ram.data[addr+3])<<24, nil
}

// Read16 returns the little-endian halfword at addr
func (ram *Ram) Read16(addr uint32) (uint16, error) {
	if err := ram.checkBounds(addr, ACCESS_HALFWORD, BUS_OP_READ); err != nil {
		return 0, err
	}
	return uint16(ram.data[addr]) | uint16(ram.data[addr+1])<<8, nil
}

// Read8 returns the byte at addr
func (ram *Ram) Read8(addr uint32) (byte, error) {
	if err := ram.checkBounds(addr, ACCESS_BYTE, BUS_OP_READ); err != nil {
		return 0, err
	}
	return ram.data[addr], nil
}

// Write32 stores val, little-endian, at addr
func (ram *Ram) Write32(addr, val uint32) error {
	if err := ram.checkBounds(addr, ACCESS_WORD, BUS_OP_WRITE); err != nil {
		return err
	}
	ram.data[addr] = byte(val)
	ram.data[addr+1] = byte(val >> 8)
	ram.data[addr+2] = byte(val >> 16)
	ram.data[addr+3] = byte(val >> 24)
	return nil
}

// Write16 stores val, little-endian, at addr
func (ram *Ram) Write16(addr uint32, val uint16) error {
	if err := ram.checkBounds(addr, ACCESS_HALFWORD, BUS_OP_WRITE); err != nil {
		return err
	}
	ram.data[addr] = byte(val)
	ram.data[addr+1] = byte(val >> 8)
	return nil
}

// Write8 stores val at addr
func (ram *Ram) Write8(addr uint32, val byte) error {
	if err := ram.checkBounds(addr, ACCESS_BYTE, BUS_OP_WRITE); err != nil {
		return err
	}
	ram.data[addr] = val
	return nil
}
