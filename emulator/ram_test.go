package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// invariant: read8 decomposes the last write32 in little-endian order
func TestRamLittleEndianAliasing(t *testing.T) {
	ram := NewRam()
	assert.NoError(t, ram.Write32(0x100, 0xaabbccdd))

	b0, _ := ram.Read8(0x100)
	b1, _ := ram.Read8(0x101)
	b2, _ := ram.Read8(0x102)
	b3, _ := ram.Read8(0x103)
	assert.Equal(t, byte(0xdd), b0)
	assert.Equal(t, byte(0xcc), b1)
	assert.Equal(t, byte(0xbb), b2)
	assert.Equal(t, byte(0xaa), b3)

	v, err := ram.Read32(0x100)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xaabbccdd), v)
}

func TestRamUnmappedAccess(t *testing.T) {
	ram := NewRam()
	_, err := ram.Read32(RAM_SIZE - 2)
	assert.Error(t, err)
	var busErr *BusError
	assert.ErrorAs(t, err, &busErr)
	assert.Equal(t, "unmapped", busErr.Reason)
}

func TestRamUnalignedAccess(t *testing.T) {
	ram := NewRam()
	_, err := ram.Read32(1)
	assert.Error(t, err)
	var busErr *BusError
	assert.ErrorAs(t, err, &busErr)
	assert.Equal(t, "unaligned", busErr.Reason)

	// byte access never requires alignment
	_, err = ram.Read8(1)
	assert.NoError(t, err)
}
