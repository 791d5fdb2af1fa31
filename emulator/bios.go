package emulator

import (
	"fmt"
	"io"
)

// BIOS images are always 512KB in length
const BIOS_SIZE uint32 = 512 * 1024

// Bios is a fixed, immutable 512 KiB image, loaded once and never
// written to afterwards
type Bios struct {
	data []byte
}

// LoadBios reads a BIOS image from r. The image must be exactly
// BIOS_SIZE bytes; anything else is an IoError
func LoadBios(r io.Reader) (*Bios, error) {
	data := make([]byte, BIOS_SIZE)
	n, err := io.ReadFull(r, data)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, &IoError{Op: "read", Err: err}
	}
	if uint32(n) != BIOS_SIZE {
		return nil, &IoError{
			Op:  "size",
			Err: fmt.Errorf("invalid BIOS size (expected %d, got %d bytes)", BIOS_SIZE, n),
		}
	}
	// an image with trailing data past BIOS_SIZE is just as malformed
	var extra [1]byte
	if m, _ := io.ReadFull(r, extra[:]); m != 0 {
		return nil, &IoError{
			Op:  "size",
			Err: fmt.Errorf("invalid BIOS size (expected %d, got more)", BIOS_SIZE),
		}
	}
	return &Bios{data: data}, nil
}

// Load32 returns the little-endian word at offset. offset must be in
// [0, BIOS_SIZE-4]; out of range is a BusError with Reason "unmapped"
func (bios *Bios) Load32(offset uint32) (uint32, error) {
	if offset > BIOS_SIZE-4 {
		return 0, &BusError{Addr: offset, Width: ACCESS_WORD, Reason: "unmapped"}
	}
	b0 := uint32(bios.data[offset+0])
	b1 := uint32(bios.data[offset+1])
	b2 := uint32(bios.data[offset+2])
	b3 := uint32(bios.data[offset+3])
	return b0 | (b1 << 8) | (b2 << 16) | (b3 << 24), nil
}

// Load8 returns the byte at offset. offset must be in [0, BIOS_SIZE)
func (bios *Bios) Load8(offset uint32) (byte, error) {
	if offset >= BIOS_SIZE {
		return 0, &BusError{Addr: offset, Width: ACCESS_BYTE, Reason: "unmapped"}
	}
	return bios.data[offset], nil
}
